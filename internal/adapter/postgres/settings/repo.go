// Package settings implements the UserSettings repository using PostgreSQL.
// Mailbox OAuth tokens are sealed before they reach the database.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const table = "user_settings"

var columns = []string{
	"user_id", "work_email", "auto_ai", "auto_ocr",
	"google_access_token", "google_refresh_token", "google_expires_at", "updated_at",
}

type sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Repo provides settings persistence backed by PostgreSQL.
type Repo struct {
	pool   *pgxpool.Pool
	sealer sealer
	now    func() time.Time
}

// New creates a new settings repository.
func New(pool *pgxpool.Pool, s sealer) *Repo {
	return &Repo{pool: pool, sealer: s, now: time.Now}
}

// Get returns the stored settings for userID.
// Returns domain.ErrNotFound if the user never saved settings.
func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("settings.Get: build: %w", err)
	}

	var (
		s                     domain.UserSettings
		accessEnc, refreshEnc []byte
		expiresAt             *time.Time
	)
	err = postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(
		&s.UserID, &s.WorkEmail, &s.AutoAI, &s.AutoOCR,
		&accessEnc, &refreshEnc, &expiresAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "user_settings", userID)
	}

	if refreshEnc != nil || accessEnc != nil {
		creds, err := r.openCredentials(accessEnc, refreshEnc, expiresAt)
		if err != nil {
			return nil, fmt.Errorf("settings.Get: %w", err)
		}
		s.Google = creds
	}
	return &s, nil
}

// UpsertPreferences stores work email and automation flags, leaving any
// mailbox credentials untouched.
func (r *Repo) UpsertPreferences(ctx context.Context, s domain.UserSettings) (*domain.UserSettings, error) {
	now := r.now()
	query := postgres.Builder().
		Insert(table).
		Columns("user_id", "work_email", "auto_ai", "auto_ocr", "updated_at").
		Values(s.UserID, s.WorkEmail, s.AutoAI, s.AutoOCR, now).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			work_email = EXCLUDED.work_email,
			auto_ai    = EXCLUDED.auto_ai,
			auto_ocr   = EXCLUDED.auto_ocr,
			updated_at = EXCLUDED.updated_at`)

	if err := r.exec(ctx, "settings.UpsertPreferences", s.UserID, query); err != nil {
		return nil, err
	}
	return r.Get(ctx, s.UserID)
}

// StoreGoogleTokens saves a fresh credential bundle. An empty refreshToken
// keeps the previously stored one.
func (r *Repo) StoreGoogleTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	accessEnc, err := r.sealer.Seal([]byte(accessToken))
	if err != nil {
		return fmt.Errorf("settings.StoreGoogleTokens: seal access token: %w", err)
	}

	var refreshEnc []byte
	if refreshToken != "" {
		refreshEnc, err = r.sealer.Seal([]byte(refreshToken))
		if err != nil {
			return fmt.Errorf("settings.StoreGoogleTokens: seal refresh token: %w", err)
		}
	}

	defaults := domain.DefaultUserSettings(userID)
	query := postgres.Builder().
		Insert(table).
		Columns("user_id", "auto_ai", "auto_ocr",
			"google_access_token", "google_refresh_token", "google_expires_at", "updated_at").
		Values(userID, defaults.AutoAI, defaults.AutoOCR, accessEnc, refreshEnc, expiresAt, r.now()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			google_access_token  = EXCLUDED.google_access_token,
			google_refresh_token = COALESCE(EXCLUDED.google_refresh_token, user_settings.google_refresh_token),
			google_expires_at    = EXCLUDED.google_expires_at,
			updated_at           = EXCLUDED.updated_at`)

	return r.exec(ctx, "settings.StoreGoogleTokens", userID, query)
}

// ClearGoogleTokens removes the mailbox credential bundle.
func (r *Repo) ClearGoogleTokens(ctx context.Context, userID uuid.UUID) error {
	query := postgres.Builder().
		Update(table).
		Set("google_access_token", nil).
		Set("google_refresh_token", nil).
		Set("google_expires_at", nil).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"user_id": userID})

	return r.exec(ctx, "settings.ClearGoogleTokens", userID, query)
}

func (r *Repo) exec(ctx context.Context, op string, userID uuid.UUID, query squirrel.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("%s: build: %w", op, err)
	}
	if _, err := postgres.Conn(ctx, r.pool).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "user_settings", userID)
	}
	return nil
}

func (r *Repo) openCredentials(accessEnc, refreshEnc []byte, expiresAt *time.Time) (*domain.GoogleCredentials, error) {
	creds := &domain.GoogleCredentials{}
	if accessEnc != nil {
		plain, err := r.sealer.Open(accessEnc)
		if err != nil {
			return nil, fmt.Errorf("open access token: %w", err)
		}
		creds.AccessToken = string(plain)
	}
	if refreshEnc != nil {
		plain, err := r.sealer.Open(refreshEnc)
		if err != nil {
			return nil, fmt.Errorf("open refresh token: %w", err)
		}
		creds.RefreshToken = string(plain)
	}
	if expiresAt != nil {
		creds.ExpiresAt = *expiresAt
	}
	return creds, nil
}
