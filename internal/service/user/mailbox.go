package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
)

// GoogleAuthURL returns the consent URL for connecting the caller's mailbox.
// The caller's id is the OAuth state.
func (s *Service) GoogleAuthURL(ctx context.Context) (string, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return "", err
	}
	return s.oauth.AuthURL(userID.String()), nil
}

// ConnectGoogle completes the OAuth flow: the state must be the caller's id.
// A refresh token omitted by Google keeps the stored one.
func (s *Service) ConnectGoogle(ctx context.Context, input ConnectGoogleInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	userID, err := guard.Caller(ctx)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(input.State), userID.String()) {
		s.log.WarnContext(ctx, "oauth state mismatch", slog.String("user_id", userID.String()))
		return fmt.Errorf("oauth state does not match caller: %w", domain.ErrForbidden)
	}

	tok, err := s.oauth.ExchangeCode(ctx, strings.TrimSpace(input.Code))
	if err != nil {
		if errors.Is(err, google.ErrInvalidGrant) {
			return domain.NewValidationError("code", "invalid or expired authorization code")
		}
		return fmt.Errorf("user.ConnectGoogle: %w", err)
	}

	if err := s.settings.StoreGoogleTokens(ctx, userID, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt); err != nil {
		return fmt.Errorf("user.ConnectGoogle: %w", err)
	}

	s.log.InfoContext(ctx, "mailbox connected",
		slog.String("user_id", userID.String()),
		slog.Bool("new_refresh_token", tok.RefreshToken != ""),
	)
	return nil
}

// DisconnectGoogle removes the caller's mailbox credentials.
func (s *Service) DisconnectGoogle(ctx context.Context) error {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return err
	}
	if err := s.settings.ClearGoogleTokens(ctx, userID); err != nil {
		return fmt.Errorf("user.DisconnectGoogle: %w", err)
	}
	s.log.InfoContext(ctx, "mailbox disconnected", slog.String("user_id", userID.String()))
	return nil
}
