// Package user manages per-user preferences and the Gmail mailbox connection.
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// settingsRepo defines the settings repository interface needed by user service.
type settingsRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)
	UpsertPreferences(ctx context.Context, s domain.UserSettings) (*domain.UserSettings, error)
	StoreGoogleTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error
	ClearGoogleTokens(ctx context.Context, userID uuid.UUID) error
}

// oauthFlow defines the Google authorization code flow needed by user service.
type oauthFlow interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*google.Token, error)
}

// Service implements settings and mailbox connection operations.
type Service struct {
	log      *slog.Logger
	settings settingsRepo
	oauth    oauthFlow
}

// NewService creates a new user service instance.
func NewService(logger *slog.Logger, settings settingsRepo, oauth oauthFlow) *Service {
	return &Service{
		log:      logger.With("service", "user"),
		settings: settings,
		oauth:    oauth,
	}
}
