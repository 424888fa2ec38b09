package attachment

import (
	"io"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const (
	maxFileNameLength = 255
	maxFileTypeLength = 127
)

// UploadInput holds the parameters for storing an attachment.
type UploadInput struct {
	MatterID uuid.UUID
	EventID  *uuid.UUID
	FileName string
	FileType string
	Body     io.Reader
}

// Validate checks all fields and collects all errors.
func (i UploadInput) Validate() error {
	return domain.FromValidation(validation.Errors{
		"matterId": validation.Validate(i.MatterID, domain.RequiredID),
		"eventId":  validation.Validate(i.EventID, validation.When(i.EventID != nil, domain.RequiredID)),
		"fileName": validation.Validate(cleanFileName(i.FileName),
			validation.Required, validation.RuneLength(1, maxFileNameLength)),
		"fileType": validation.Validate(strings.TrimSpace(i.FileType),
			validation.Required, validation.RuneLength(1, maxFileTypeLength),
			validation.Match(mimePattern)),
		"body": validation.Validate(i.Body, validation.NotNil),
	}.Filter())
}

// cleanFileName strips any directory part a client may send.
func cleanFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
