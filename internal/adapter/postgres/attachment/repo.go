// Package attachment implements the Attachment repository using PostgreSQL.
package attachment

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const table = "attachments"

var columns = []string{
	"id", "user_id", "matter_id", "event_id", "storage_key",
	"file_name", "file_type", "size_bytes", "created_at",
}

// Repo provides attachment metadata persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new attachment repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns attachment metadata regardless of owner.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("attachment.GetByID: build: %w", err)
	}

	a, err := scanAttachment(postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "attachment", id)
	}
	return a, nil
}

// ListByMatter returns the attachments of a matter owned by userID, newest first.
func (r *Repo) ListByMatter(ctx context.Context, userID, matterID uuid.UUID) ([]domain.Attachment, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"matter_id": matterID, "user_id": userID}).
		OrderBy("created_at DESC", "id")

	return r.list(ctx, "attachment.ListByMatter", query)
}

// ListByEvent returns the attachments linked to an event in upload order.
func (r *Repo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Attachment, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("created_at", "id")

	return r.list(ctx, "attachment.ListByEvent", query)
}

// Create inserts attachment metadata.
func (r *Repo) Create(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	query := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(a.ID, a.UserID, a.MatterID, a.EventID, a.StorageKey,
			a.FileName, a.FileType, a.SizeBytes, a.CreatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", "))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("attachment.Create: build: %w", err)
	}

	created, err := scanAttachment(postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "attachment", a.ID)
	}
	return created, nil
}

// DetachEvent clears the event reference of every attachment linked to eventID.
func (r *Repo) DetachEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := postgres.Builder().
		Update(table).
		Set("event_id", nil).
		Where(squirrel.Eq{"event_id": eventID})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("attachment.DetachEvent: build: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("attachment.DetachEvent: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteByMatter removes every attachment of a matter and returns the
// storage keys of the removed rows so the blobs can be deleted afterwards.
func (r *Repo) DeleteByMatter(ctx context.Context, matterID uuid.UUID) ([]string, error) {
	query := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"matter_id": matterID}).
		Suffix("RETURNING storage_key")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("attachment.DeleteByMatter: build: %w", err)
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("attachment.DeleteByMatter: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("attachment.DeleteByMatter: scan: %w", err)
	}
	return keys, nil
}

func (r *Repo) list(ctx context.Context, op string, query squirrel.SelectBuilder) ([]domain.Attachment, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Attachment, error) {
		a, err := scanAttachment(row)
		if err != nil {
			return domain.Attachment{}, err
		}
		return *a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return items, nil
}

func scanAttachment(row pgx.Row) (*domain.Attachment, error) {
	var a domain.Attachment
	err := row.Scan(
		&a.ID, &a.UserID, &a.MatterID, &a.EventID, &a.StorageKey,
		&a.FileName, &a.FileType, &a.SizeBytes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
