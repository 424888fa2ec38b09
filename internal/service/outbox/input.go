package outbox

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const (
	maxSubjectLength = 200
	maxBodyLength    = 100_000
)

// CreateInput holds the parameters for queuing an email.
type CreateInput struct {
	MatterID uuid.UUID
	To       string
	Subject  string
	Body     string
}

// Validate checks all fields and collects all errors.
func (i CreateInput) Validate() error {
	return domain.FromValidation(validation.Errors{
		"matterId": validation.Validate(i.MatterID, domain.RequiredID),
		"to":       validation.Validate(strings.TrimSpace(i.To), validation.Required, is.EmailFormat),
		"subject": validation.Validate(strings.TrimSpace(i.Subject),
			validation.Required, validation.RuneLength(1, maxSubjectLength),
			validation.By(singleLine)),
		"body": validation.Validate(i.Body, validation.Required, validation.RuneLength(1, maxBodyLength)),
	}.Filter())
}

// singleLine rejects header values that would break out of their header.
func singleLine(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, "\r\n") {
		return validation.NewError("validation_single_line", "must be a single line")
	}
	return nil
}
