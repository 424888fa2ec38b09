package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Auth.validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.AI.validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if err := c.Google.validate(); err != nil {
		return fmt.Errorf("google: %w", err)
	}
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Enrichment.validate(); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (c *ServerConfig) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

func (c *AuthConfig) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.TokenEncryptionKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.AccessTokenTTL, validation.Required),
	)
}

func (c *AIConfig) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.ChatModel, validation.Required),
		validation.Field(&c.VisionModel, validation.Required),
		validation.Field(&c.TranscriptionModel, validation.Required),
		validation.Field(&c.Language, validation.Required, validation.Length(2, 5)),
		validation.Field(&c.RequestTimeout, validation.Required),
		validation.Field(&c.MaxRetries, validation.Min(0), validation.Max(5)),
	)
}

func (c *GoogleConfig) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SiteURL, validation.Required, is.URL),
		validation.Field(&c.ClientSecret, validation.When(c.ClientID != "", validation.Required)),
		validation.Field(&c.ClientID, validation.When(c.ClientSecret != "", validation.Required)),
	)
}

func (c *StorageConfig) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
	)
}

func (c *EnrichmentConfig) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxConcurrent, validation.Required, validation.Min(1)),
		validation.Field(&c.RunTimeout, validation.Required),
		validation.Field(&c.StaleAfter, validation.Required),
	)
}

func (c *LogConfig) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.In("json", "text")),
	)
}
