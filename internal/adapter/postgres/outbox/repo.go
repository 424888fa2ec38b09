// Package outbox implements the Outbox repository using PostgreSQL.
package outbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

const table = "outbox_items"

var columns = []string{
	"id", "user_id", "matter_id", "to_address", "subject", "body",
	"status", "error", "provider_message_id", "sent_at", "created_at",
}

var returning = "RETURNING " + strings.Join(columns, ", ")

// Repo provides outbox persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New creates a new outbox repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, now: time.Now}
}

// GetByID returns an outbox item regardless of owner.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	return r.queryOne(ctx, "outbox.GetByID", id, query)
}

// ListByUser returns the user's outbox, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.OutboxItem, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("outbox.ListByUser: build: %w", err)
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("outbox.ListByUser: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OutboxItem, error) {
		it, err := scanItem(row)
		if err != nil {
			return domain.OutboxItem{}, err
		}
		return *it, nil
	})
	if err != nil {
		return nil, fmt.Errorf("outbox.ListByUser: scan: %w", err)
	}
	return items, nil
}

// Create inserts a queued outbox item.
func (r *Repo) Create(ctx context.Context, it *domain.OutboxItem) (*domain.OutboxItem, error) {
	query := postgres.Builder().
		Insert(table).
		Columns("id", "user_id", "matter_id", "to_address", "subject", "body",
			"status", "created_at", "updated_at").
		Values(it.ID, it.UserID, it.MatterID, it.To, it.Subject, it.Body,
			string(domain.OutboxStatusQueued), it.CreatedAt, it.CreatedAt).
		Suffix(returning)

	return r.queryOne(ctx, "outbox.Create", it.ID, query)
}

// MarkSent records a successful delivery.
func (r *Repo) MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string, sentAt time.Time) (*domain.OutboxItem, error) {
	query := postgres.Builder().
		Update(table).
		Set("status", string(domain.OutboxStatusSent)).
		Set("provider_message_id", providerMessageID).
		Set("sent_at", sentAt).
		Set("error", nil).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning)

	return r.queryOne(ctx, "outbox.MarkSent", id, query)
}

// MarkFailed records a failed delivery with its error text.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*domain.OutboxItem, error) {
	query := postgres.Builder().
		Update(table).
		Set("status", string(domain.OutboxStatusFailed)).
		Set("error", reason).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning)

	return r.queryOne(ctx, "outbox.MarkFailed", id, query)
}

// DeleteByMatter removes every outbox item of a matter.
func (r *Repo) DeleteByMatter(ctx context.Context, matterID uuid.UUID) (int, error) {
	query := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"matter_id": matterID})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("outbox.DeleteByMatter: build: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("outbox.DeleteByMatter: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repo) queryOne(ctx context.Context, op string, id uuid.UUID, query squirrel.Sqlizer) (*domain.OutboxItem, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	it, err := scanItem(postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "outbox_item", id)
	}
	return it, nil
}

func scanItem(row pgx.Row) (*domain.OutboxItem, error) {
	var (
		it     domain.OutboxItem
		status string
	)
	err := row.Scan(
		&it.ID, &it.UserID, &it.MatterID, &it.To, &it.Subject, &it.Body,
		&status, &it.Error, &it.ProviderMessageID, &it.SentAt, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Status = domain.OutboxStatus(status)
	return &it, nil
}
