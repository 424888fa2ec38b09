package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
)

// Create logs a new event in a matter owned by the caller. The event starts
// in the pending AI status.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Event, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return nil, err
	}
	input.Participants = normalizeParticipants(input.Participants)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.guard.Matter(ctx, input.MatterID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e, err := s.events.Create(ctx, &domain.Event{
		ID:           uuid.New(),
		UserID:       userID,
		MatterID:     input.MatterID,
		Type:         input.Type,
		Content:      input.Content,
		Participants: input.Participants,
		AIStatus:     domain.AIStatusPending,
		Timestamp:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("event.Create: %w", err)
	}

	s.log.InfoContext(ctx, "event created",
		slog.String("event_id", e.ID.String()),
		slog.String("matter_id", e.MatterID.String()),
		slog.String("type", string(e.Type)),
	)
	return e, nil
}

// ListByMatter returns the matter's events, newest first. Callers who do not
// own the matter get an empty list.
func (s *Service) ListByMatter(ctx context.Context, matterID uuid.UUID) ([]domain.Event, error) {
	m, err := s.guard.Matter(ctx, matterID)
	if err != nil {
		if guard.Denied(err) {
			return []domain.Event{}, nil
		}
		return nil, fmt.Errorf("event.ListByMatter: %w", err)
	}

	events, err := s.events.ListByMatter(ctx, m.UserID, m.ID)
	if err != nil {
		return nil, fmt.Errorf("event.ListByMatter: %w", err)
	}
	return events, nil
}

// Update replaces the event content and resets it to pending, clearing any
// previous results or failure reason.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Event, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	e, _, err := s.guard.Event(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.events.UpdateContent(ctx, e.UserID, e.ID, input.Content)
	if err != nil {
		return nil, fmt.Errorf("event.Update: %w", err)
	}

	s.log.InfoContext(ctx, "event content updated",
		slog.String("event_id", e.ID.String()),
		slog.String("previous_status", string(e.AIStatus)),
	)
	return updated, nil
}

// Remove deletes the event. Its attachments stay in the matter with the
// event reference cleared.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	e, _, err := s.guard.Event(ctx, id)
	if err != nil {
		return err
	}

	var detached int
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if detached, err = s.attachments.DetachEvent(txCtx, e.ID); err != nil {
			return fmt.Errorf("detach attachments: %w", err)
		}
		if err = s.events.Delete(txCtx, e.UserID, e.ID); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return fmt.Errorf("event.Remove: %w", txErr)
	}

	s.log.InfoContext(ctx, "event removed",
		slog.String("event_id", e.ID.String()),
		slog.Int("detached_attachments", detached),
	)
	return nil
}

// MarkEmailSent flags that the event's follow-up email went out.
func (s *Service) MarkEmailSent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e, _, err := s.guard.Event(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.events.MarkEmailSent(ctx, e.UserID, e.ID)
	if err != nil {
		return nil, fmt.Errorf("event.MarkEmailSent: %w", err)
	}
	return updated, nil
}
