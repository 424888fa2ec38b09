package matter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// Create creates a matter owned by the caller.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Matter, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m, err := s.matters.Create(ctx, &domain.Matter{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         strings.TrimSpace(input.Title),
		Type:          strings.TrimSpace(input.Type),
		Status:        input.Status,
		Priority:      input.Priority,
		Tags:          normalizeTags(input.Tags),
		Counterparty:  trimOrNil(input.Counterparty),
		InternalNotes: trimOrNil(input.InternalNotes),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("matter.Create: %w", err)
	}

	s.log.InfoContext(ctx, "matter created",
		slog.String("user_id", userID.String()),
		slog.String("matter_id", m.ID.String()),
	)
	return m, nil
}

// List returns the caller's matters, newest first. Anonymous callers get an
// empty list.
func (s *Service) List(ctx context.Context) ([]domain.Matter, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return []domain.Matter{}, nil
	}

	matters, err := s.matters.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("matter.List: %w", err)
	}
	return matters, nil
}

// Get returns the matter, or nil when it is missing or not the caller's.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Matter, error) {
	m, err := s.guard.Matter(ctx, id)
	if err != nil {
		if guard.Denied(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("matter.Get: %w", err)
	}
	return m, nil
}

// Remove deletes a matter with its events, attachments and outbox items in
// one transaction. Blobs are removed after commit; a blob that cannot be
// removed is logged and left behind.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	m, err := s.guard.Matter(ctx, id)
	if err != nil {
		return err
	}

	var keys []string
	var events, outbox int
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if events, err = s.events.DeleteByMatter(txCtx, m.ID); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		if keys, err = s.attachments.DeleteByMatter(txCtx, m.ID); err != nil {
			return fmt.Errorf("delete attachments: %w", err)
		}
		if outbox, err = s.outbox.DeleteByMatter(txCtx, m.ID); err != nil {
			return fmt.Errorf("delete outbox items: %w", err)
		}
		if err = s.matters.Delete(txCtx, m.UserID, m.ID); err != nil {
			return fmt.Errorf("delete matter: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return fmt.Errorf("matter.Remove: %w", txErr)
	}

	orphaned := 0
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			orphaned++
			s.log.WarnContext(ctx, "blob not removed",
				slog.String("matter_id", m.ID.String()),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	s.log.InfoContext(ctx, "matter removed",
		slog.String("matter_id", m.ID.String()),
		slog.Int("events", events),
		slog.Int("attachments", len(keys)),
		slog.Int("outbox_items", outbox),
		slog.Int("orphaned_blobs", orphaned),
	)
	return nil
}
