package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	AI         AIConfig         `yaml:"ai"`
	Google     GoogleConfig     `yaml:"google"`
	Storage    StorageConfig    `yaml:"storage"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Log        LogConfig        `yaml:"log"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"120s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds bearer token and at-rest encryption settings.
type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"           env:"AUTH_JWT_SECRET"           env-required:"true"`
	JWTIssuer          string        `yaml:"jwt_issuer"           env:"AUTH_JWT_ISSUER"           env-default:"matterdesk"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl"     env:"AUTH_ACCESS_TOKEN_TTL"     env-default:"15m"`
	TokenEncryptionKey string        `yaml:"token_encryption_key" env:"AUTH_TOKEN_ENCRYPTION_KEY" env-required:"true"`
}

// AIConfig holds settings for the transcription, vision and chat endpoints.
// An empty APIKey switches every AI component to its degraded offline mode.
type AIConfig struct {
	APIKey             string        `yaml:"api_key"             env:"OPENAI_API_KEY"`
	BaseURL            string        `yaml:"base_url"            env:"AI_BASE_URL"            env-default:"https://api.openai.com/v1"`
	ChatModel          string        `yaml:"chat_model"          env:"AI_CHAT_MODEL"          env-default:"gpt-4o"`
	VisionModel        string        `yaml:"vision_model"        env:"AI_VISION_MODEL"        env-default:"gpt-4o"`
	TranscriptionModel string        `yaml:"transcription_model" env:"AI_TRANSCRIPTION_MODEL" env-default:"whisper-1"`
	Language           string        `yaml:"language"            env:"AI_LANGUAGE"            env-default:"it"`
	RequestTimeout     time.Duration `yaml:"request_timeout"     env:"AI_REQUEST_TIMEOUT"     env-default:"90s"`
	MaxRetries         int           `yaml:"max_retries"         env:"AI_MAX_RETRIES"         env-default:"1"`
	RetryBackoff       time.Duration `yaml:"retry_backoff"       env:"AI_RETRY_BACKOFF"       env-default:"500ms"`
}

// Configured reports whether an API key is present.
func (c AIConfig) Configured() bool { return c.APIKey != "" }

// GoogleConfig holds the OAuth client used for mailbox delivery.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"     env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	SiteURL      string `yaml:"site_url"      env:"SITE_URL"             env-default:"http://localhost:3000"`
}

// Configured reports whether both client credentials are present.
func (c GoogleConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// RedirectURI returns the OAuth callback registered with Google.
func (c GoogleConfig) RedirectURI() string {
	return strings.TrimRight(c.SiteURL, "/") + "/oauth/callback"
}

// StorageConfig holds blob storage settings.
type StorageConfig struct {
	Path           string `yaml:"path"             env:"STORAGE_PATH"             env-default:"./data/blobs"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"STORAGE_MAX_UPLOAD_BYTES" env-default:"52428800"`
}

// EnrichmentConfig holds background pipeline settings.
type EnrichmentConfig struct {
	MaxConcurrent int           `yaml:"max_concurrent" env:"ENRICH_MAX_CONCURRENT" env-default:"16"`
	RunTimeout    time.Duration `yaml:"run_timeout"    env:"ENRICH_RUN_TIMEOUT"    env-default:"10m"`
	StaleAfter    time.Duration `yaml:"stale_after"    env:"ENRICH_STALE_AFTER"    env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig bounds requests per minute on the AI endpoints.
type RateLimitConfig struct {
	AIPerMinute     int           `yaml:"ai_per_minute"    env:"RATE_LIMIT_AI_PER_MINUTE"    env-default:"30"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}
