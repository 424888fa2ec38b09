// Package attachment stores uploaded files for matters and events.
package attachment

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

type attachmentRepo interface {
	ListByMatter(ctx context.Context, userID, matterID uuid.UUID) ([]domain.Attachment, error)
	Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error)
}

type blobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type accessGuard interface {
	Matter(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
	Event(ctx context.Context, id uuid.UUID) (*domain.Event, *domain.Matter, error)
	Attachment(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
}

// Service provides attachment operations.
type Service struct {
	log         *slog.Logger
	attachments attachmentRepo
	blobs       blobStore
	guard       accessGuard
}

// NewService creates a new attachment service.
func NewService(log *slog.Logger, attachments attachmentRepo, blobs blobStore, guard accessGuard) *Service {
	return &Service{
		log:         log.With("service", "attachment"),
		attachments: attachments,
		blobs:       blobs,
		guard:       guard,
	}
}
