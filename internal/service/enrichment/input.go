package enrichment

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// MaxAttachmentsPerRun bounds the attachments merged into one run.
const MaxAttachmentsPerRun = 20

// ProcessInput holds the parameters for an enrichment run.
type ProcessInput struct {
	EventID       uuid.UUID
	Content       string
	AttachmentIDs []uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i ProcessInput) Validate() error {
	var errs []domain.FieldError
	if i.EventID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "eventId", Message: "required"})
	}
	if len(i.AttachmentIDs) > MaxAttachmentsPerRun {
		errs = append(errs, domain.FieldError{Field: "attachmentIds", Message: "too many attachments"})
	}
	for _, id := range i.AttachmentIDs {
		if id == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "attachmentIds", Message: "must not contain empty ids"})
			break
		}
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
