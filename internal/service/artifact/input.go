package artifact

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// MaxContentLength bounds ad-hoc content submitted for generation.
const MaxContentLength = 100_000

// ValidateContent checks ad-hoc content before generation.
func ValidateContent(content string) error {
	err := validation.Validate(strings.TrimSpace(content),
		validation.Required,
		validation.RuneLength(1, MaxContentLength),
	)
	if err != nil {
		return domain.NewValidationError("content", err.Error())
	}
	return nil
}

func validateActionItem(item string) error {
	err := validation.Validate(strings.TrimSpace(item),
		validation.Required,
		validation.RuneLength(1, 2000),
	)
	if err != nil {
		return domain.NewValidationError("actionItem", err.Error())
	}
	return nil
}
