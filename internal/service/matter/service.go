// Package matter manages matters and their cascading removal.
package matter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

type matterRepo interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Matter, error)
	Create(ctx context.Context, m *domain.Matter) (*domain.Matter, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type eventRepo interface {
	DeleteByMatter(ctx context.Context, matterID uuid.UUID) (int, error)
}

type attachmentRepo interface {
	DeleteByMatter(ctx context.Context, matterID uuid.UUID) ([]string, error)
}

type outboxRepo interface {
	DeleteByMatter(ctx context.Context, matterID uuid.UUID) (int, error)
}

type blobStore interface {
	Delete(ctx context.Context, key string) error
}

type accessGuard interface {
	Matter(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides matter operations.
type Service struct {
	log         *slog.Logger
	matters     matterRepo
	events      eventRepo
	attachments attachmentRepo
	outbox      outboxRepo
	blobs       blobStore
	guard       accessGuard
	tx          txManager
}

// NewService creates a new matter service.
func NewService(
	log *slog.Logger,
	matters matterRepo,
	events eventRepo,
	attachments attachmentRepo,
	outbox outboxRepo,
	blobs blobStore,
	guard accessGuard,
	tx txManager,
) *Service {
	return &Service{
		log:         log.With("service", "matter"),
		matters:     matters,
		events:      events,
		attachments: attachments,
		outbox:      outbox,
		blobs:       blobs,
		guard:       guard,
		tx:          tx,
	}
}
