// Package matter implements the Matter repository using PostgreSQL.
package matter

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

const table = "matters"

var columns = []string{
	"id", "user_id", "title", "type", "status", "priority", "tags",
	"counterparty", "internal_notes", "created_at", "updated_at",
}

// Repo provides matter persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new matter repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns a matter by primary key regardless of owner.
// Ownership is decided by the caller.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Matter, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("matter.GetByID: build: %w", err)
	}

	m, err := scanMatter(postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "matter", id)
	}
	return m, nil
}

// ListByUser returns the user's matters, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Matter, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("matter.ListByUser: build: %w", err)
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("matter.ListByUser: %w", err)
	}

	matters, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Matter, error) {
		m, err := scanMatter(row)
		if err != nil {
			return domain.Matter{}, err
		}
		return *m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("matter.ListByUser: scan: %w", err)
	}
	return matters, nil
}

// Create inserts a new matter and returns the persisted row.
func (r *Repo) Create(ctx context.Context, m *domain.Matter) (*domain.Matter, error) {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}

	query := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(m.ID, m.UserID, m.Title, m.Type, string(m.Status), string(m.Priority), tags,
			m.Counterparty, m.InternalNotes, m.CreatedAt, m.UpdatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", "))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("matter.Create: build: %w", err)
	}

	created, err := scanMatter(postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "matter", m.ID)
	}
	return created, nil
}

// Delete removes a matter owned by userID.
// Returns domain.ErrNotFound if no such matter exists for that user.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"id": id, "user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("matter.Delete: build: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "matter", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("matter %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanMatter(row pgx.Row) (*domain.Matter, error) {
	var (
		m            domain.Matter
		status, prio string
	)
	err := row.Scan(
		&m.ID, &m.UserID, &m.Title, &m.Type, &status, &prio, &m.Tags,
		&m.Counterparty, &m.InternalNotes, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Status = domain.MatterStatus(status)
	m.Priority = domain.MatterPriority(prio)
	return &m, nil
}
