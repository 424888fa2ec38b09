package user

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// UpdateSettingsInput holds the preferences a user can change.
type UpdateSettingsInput struct {
	WorkEmail string
	AutoAI    bool
	AutoOCR   bool
}

// Validate checks all fields and collects all errors.
func (i UpdateSettingsInput) Validate() error {
	return domain.FromValidation(validation.Errors{
		"workEmail": validation.Validate(strings.TrimSpace(i.WorkEmail),
			validation.RuneLength(0, 254), is.EmailFormat),
	}.Filter())
}

// ConnectGoogleInput holds the parameters of the OAuth callback.
type ConnectGoogleInput struct {
	Code  string
	State string
}

// Validate checks all fields and collects all errors.
func (i ConnectGoogleInput) Validate() error {
	return domain.FromValidation(validation.Errors{
		"code":  validation.Validate(strings.TrimSpace(i.Code), validation.Required),
		"state": validation.Validate(strings.TrimSpace(i.State), validation.Required, is.UUID),
	}.Filter())
}
