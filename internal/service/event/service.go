// Package event manages the activities logged within a matter.
package event

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

type eventRepo interface {
	ListByMatter(ctx context.Context, userID, matterID uuid.UUID) ([]domain.Event, error)
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	UpdateContent(ctx context.Context, userID, id uuid.UUID, content string) (*domain.Event, error)
	MarkEmailSent(ctx context.Context, userID, id uuid.UUID) (*domain.Event, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type attachmentRepo interface {
	DetachEvent(ctx context.Context, eventID uuid.UUID) (int, error)
}

type accessGuard interface {
	Matter(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
	Event(ctx context.Context, id uuid.UUID) (*domain.Event, *domain.Matter, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides event operations.
type Service struct {
	log         *slog.Logger
	events      eventRepo
	attachments attachmentRepo
	guard       accessGuard
	tx          txManager
}

// NewService creates a new event service.
func NewService(
	log *slog.Logger,
	events eventRepo,
	attachments attachmentRepo,
	guard accessGuard,
	tx txManager,
) *Service {
	return &Service{
		log:         log.With("service", "event"),
		events:      events,
		attachments: attachments,
		guard:       guard,
		tx:          tx,
	}
}
