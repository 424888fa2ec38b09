package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
)

// GetSettings returns the caller's settings, or the defaults when nothing
// has been saved yet.
func (s *Service) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		defaults := domain.DefaultUserSettings(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user.GetSettings: %w", err)
	}
	return settings, nil
}

// UpdateSettings stores the caller's preferences. Mailbox credentials are
// not affected.
func (s *Service) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*domain.UserSettings, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	userID, err := guard.Caller(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.settings.UpsertPreferences(ctx, domain.UserSettings{
		UserID:    userID,
		WorkEmail: strings.TrimSpace(input.WorkEmail),
		AutoAI:    input.AutoAI,
		AutoOCR:   input.AutoOCR,
	})
	if err != nil {
		return nil, fmt.Errorf("user.UpdateSettings: %w", err)
	}

	s.log.InfoContext(ctx, "settings updated",
		slog.String("user_id", userID.String()),
		slog.Bool("auto_ai", updated.AutoAI),
		slog.Bool("auto_ocr", updated.AutoOCR),
	)
	return updated, nil
}
