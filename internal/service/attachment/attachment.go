package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// Upload stores the body as a new attachment of a matter the caller owns.
// When EventID is set the event must belong to the same matter. The blob is
// written first; it is removed again if the record cannot be inserted.
func (s *Service) Upload(ctx context.Context, input UploadInput) (*domain.Attachment, error) {
	userID, err := guard.Caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	m, err := s.guard.Matter(ctx, input.MatterID)
	if err != nil {
		return nil, err
	}
	if input.EventID != nil {
		e, _, err := s.guard.Event(ctx, *input.EventID)
		if err != nil {
			return nil, err
		}
		if e.MatterID != m.ID {
			return nil, fmt.Errorf("event %s is not in matter %s: %w", e.ID, m.ID, domain.ErrForbidden)
		}
	}

	id := uuid.New()
	key := id.String()
	size, err := s.blobs.Put(ctx, key, input.Body)
	if err != nil {
		return nil, fmt.Errorf("attachment.Upload: store blob: %w", err)
	}

	a, err := s.attachments.Create(ctx, &domain.Attachment{
		ID:         id,
		UserID:     userID,
		MatterID:   m.ID,
		EventID:    input.EventID,
		StorageKey: key,
		FileName:   cleanFileName(input.FileName),
		FileType:   strings.ToLower(strings.TrimSpace(input.FileType)),
		SizeBytes:  size,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctxutil.Detach(ctx), key); delErr != nil {
			s.log.WarnContext(ctx, "orphaned blob after failed insert",
				slog.String("key", key),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("attachment.Upload: %w", err)
	}

	s.log.InfoContext(ctx, "attachment stored",
		slog.String("attachment_id", a.ID.String()),
		slog.String("matter_id", a.MatterID.String()),
		slog.String("kind", string(a.Kind())),
		slog.Int64("size", a.SizeBytes),
	)
	return a, nil
}

// ListByMatter returns the matter's attachments. Callers who do not own the
// matter get an empty list.
func (s *Service) ListByMatter(ctx context.Context, matterID uuid.UUID) ([]domain.Attachment, error) {
	m, err := s.guard.Matter(ctx, matterID)
	if err != nil {
		if guard.Denied(err) {
			return []domain.Attachment{}, nil
		}
		return nil, fmt.Errorf("attachment.ListByMatter: %w", err)
	}

	list, err := s.attachments.ListByMatter(ctx, m.UserID, m.ID)
	if err != nil {
		return nil, fmt.Errorf("attachment.ListByMatter: %w", err)
	}
	return list, nil
}

// Open returns the attachment's metadata and content. It returns nil values
// when the caller may not see the attachment. The caller closes the reader.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	a, err := s.guard.Attachment(ctx, id)
	if err != nil {
		if guard.Denied(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("attachment.Open: %w", err)
	}

	rc, err := s.blobs.Open(ctx, a.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("attachment.Open: %w", err)
	}
	return a, rc, nil
}
