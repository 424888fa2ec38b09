package domain

import (
	"time"

	"github.com/google/uuid"
)

// GoogleCredentials is the mailbox OAuth bundle stored for a user.
type GoogleCredentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Connected reports whether a refresh token is available.
func (c *GoogleCredentials) Connected() bool {
	return c != nil && c.RefreshToken != ""
}

// ExpiresWithin reports whether the access token expires before now+d.
func (c *GoogleCredentials) ExpiresWithin(now time.Time, d time.Duration) bool {
	return c.AccessToken == "" || !now.Add(d).Before(c.ExpiresAt)
}

// UserSettings holds per-user preferences.
type UserSettings struct {
	UserID    uuid.UUID
	WorkEmail string
	AutoAI    bool
	AutoOCR   bool
	Google    *GoogleCredentials
	UpdatedAt time.Time
}

// DefaultUserSettings returns UserSettings with every automatic feature enabled.
func DefaultUserSettings(userID uuid.UUID) UserSettings {
	return UserSettings{
		UserID:  userID,
		AutoAI:  true,
		AutoOCR: true,
	}
}
