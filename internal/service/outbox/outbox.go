package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/gmail"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// Create queues an email for a matter the caller owns.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.OutboxItem, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.guard.Matter(ctx, input.MatterID); err != nil {
		return nil, err
	}

	it, err := s.outbox.Create(ctx, &domain.OutboxItem{
		ID:        uuid.New(),
		UserID:    userID,
		MatterID:  input.MatterID,
		To:        strings.TrimSpace(input.To),
		Subject:   strings.TrimSpace(input.Subject),
		Body:      input.Body,
		Status:    domain.OutboxStatusQueued,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("outbox.Create: %w", err)
	}

	s.log.InfoContext(ctx, "email queued",
		slog.String("outbox_id", it.ID.String()),
		slog.String("matter_id", it.MatterID.String()),
	)
	return it, nil
}

// List returns the caller's outbox, newest first. Anonymous callers get an
// empty list.
func (s *Service) List(ctx context.Context) ([]domain.OutboxItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return []domain.OutboxItem{}, nil
	}

	items, err := s.outbox.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("outbox.List: %w", err)
	}
	return items, nil
}

// Send delivers a queued or previously failed item through the caller's
// mailbox. A delivery failure is not an error: the item comes back with the
// failed status and its reason. Errors are returned for authorization, a
// missing mailbox connection (domain.ErrMailboxDisconnected) and token
// refresh failures; in those cases the item is left untouched.
func (s *Service) Send(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return nil, err
	}

	it, err := s.outbox.GetByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("outbox.Send: %w", err)
	}
	if !guard.OwnsOutboxItem(userID, it) {
		return nil, domain.ErrForbidden
	}
	if it.Status == domain.OutboxStatusSent {
		return nil, fmt.Errorf("outbox item %s already sent: %w", it.ID, domain.ErrConflict)
	}

	token, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	log := s.log.With(slog.String("outbox_id", it.ID.String()))

	messageID, sendErr := s.sender.Send(ctx, token, gmail.Message{
		To:      it.To,
		Subject: it.Subject,
		Body:    it.Body,
	})
	if sendErr != nil {
		log.WarnContext(ctx, "email delivery failed", slog.String("error", sendErr.Error()))
		failed, err := s.outbox.MarkFailed(ctxutil.Detach(ctx), it.ID, sendErr.Error())
		if err != nil {
			return nil, fmt.Errorf("outbox.Send: record failure: %w", err)
		}
		return failed, nil
	}

	sent, err := s.outbox.MarkSent(ctxutil.Detach(ctx), it.ID, messageID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("outbox.Send: record delivery: %w", err)
	}
	log.InfoContext(ctx, "email sent", slog.String("provider_message_id", messageID))
	return sent, nil
}

// accessToken returns a usable Gmail access token for userID, refreshing and
// persisting it when it is about to expire.
func (s *Service) accessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	st, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrMailboxDisconnected
		}
		return "", fmt.Errorf("outbox.Send: load settings: %w", err)
	}

	creds := st.Google
	if !creds.Connected() {
		return "", domain.ErrMailboxDisconnected
	}
	if !creds.ExpiresWithin(s.now(), refreshMargin) {
		return creds.AccessToken, nil
	}

	tok, err := s.oauth.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		if errors.Is(err, google.ErrInvalidGrant) {
			s.log.WarnContext(ctx, "mailbox refresh token rejected", slog.String("user_id", userID.String()))
			return "", fmt.Errorf("refresh rejected: %w", domain.ErrMailboxDisconnected)
		}
		return "", fmt.Errorf("outbox.Send: refresh mailbox token: %w", err)
	}

	if err := s.settings.StoreGoogleTokens(ctx, userID, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt); err != nil {
		return "", fmt.Errorf("outbox.Send: store refreshed token: %w", err)
	}
	return tok.AccessToken, nil
}
