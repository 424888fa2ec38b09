// Package event implements the Event repository using PostgreSQL.
// Besides CRUD it is the status store of the enrichment pipeline: every
// ai_status change is a single compare-and-set UPDATE, so readers observe
// either the previous or the next state and never a mix of the two.
package event

import (
	"context"
	"errors"
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

const table = "events"

var columns = []string{
	"id", "user_id", "matter_id", "type", "content", "participants",
	"ai_status", "ai_results", "ai_error", "email_sent", "occurred_at", "updated_at",
}

var returning = "RETURNING " + strings.Join(columns, ", ")

// Repo provides event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// New creates a new event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, now: time.Now}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an event by primary key regardless of owner.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	return r.queryOne(ctx, "event.GetByID", id, query)
}

// ListByMatter returns the events of a matter owned by userID, newest first.
func (r *Repo) ListByMatter(ctx context.Context, userID, matterID uuid.UUID) ([]domain.Event, error) {
	query := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"matter_id": matterID, "user_id": userID}).
		OrderBy("occurred_at DESC", "id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("event.ListByMatter: build: %w", err)
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("event.ListByMatter: %w", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		e, err := scanEvent(row)
		if err != nil {
			return domain.Event{}, err
		}
		return *e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("event.ListByMatter: scan: %w", err)
	}
	return events, nil
}

// CountByStatus aggregates the user's events by ai_status.
func (r *Repo) CountByStatus(ctx context.Context, userID uuid.UUID) (domain.EnrichmentStats, error) {
	query := postgres.Builder().
		Select("ai_status", "count(*)").
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("ai_status")

	sql, args, err := query.ToSql()
	if err != nil {
		return domain.EnrichmentStats{}, fmt.Errorf("event.CountByStatus: build: %w", err)
	}

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return domain.EnrichmentStats{}, fmt.Errorf("event.CountByStatus: %w", err)
	}
	defer rows.Close()

	var stats domain.EnrichmentStats
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return domain.EnrichmentStats{}, fmt.Errorf("event.CountByStatus: scan: %w", err)
		}
		switch domain.AIStatus(status) {
		case domain.AIStatusPending:
			stats.Pending = n
		case domain.AIStatusProcessing:
			stats.Processing = n
		case domain.AIStatusDone:
			stats.Done = n
		case domain.AIStatusFailed:
			stats.Failed = n
		}
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return domain.EnrichmentStats{}, fmt.Errorf("event.CountByStatus: rows: %w", err)
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new event. The event always starts in pending.
func (r *Repo) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}

	query := postgres.Builder().
		Insert(table).
		Columns("id", "user_id", "matter_id", "type", "content", "participants",
			"ai_status", "email_sent", "occurred_at", "updated_at").
		Values(e.ID, e.UserID, e.MatterID, string(e.Type), e.Content, participants,
			string(domain.AIStatusPending), e.EmailSent, e.Timestamp, e.Timestamp).
		Suffix(returning)

	return r.queryOne(ctx, "event.Create", e.ID, query)
}

// UpdateContent replaces the event's content and resets it to pending,
// clearing results, failure reason and any in-flight run marker.
func (r *Repo) UpdateContent(ctx context.Context, userID, id uuid.UUID, content string) (*domain.Event, error) {
	query := postgres.Builder().
		Update(table).
		Set("content", content).
		Set("ai_status", string(domain.AIStatusPending)).
		Set("ai_results", nil).
		Set("ai_error", nil).
		Set("ai_run_id", nil).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix(returning)

	return r.queryOne(ctx, "event.UpdateContent", id, query)
}

// MarkEmailSent sets the email_sent flag.
func (r *Repo) MarkEmailSent(ctx context.Context, userID, id uuid.UUID) (*domain.Event, error) {
	query := postgres.Builder().
		Update(table).
		Set("email_sent", true).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Suffix(returning)

	return r.queryOne(ctx, "event.MarkEmailSent", id, query)
}

// Delete removes an event owned by userID.
func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"id": id, "user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("event.Delete: build: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "event", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteByMatter removes every event of a matter and returns how many were deleted.
func (r *Repo) DeleteByMatter(ctx context.Context, matterID uuid.UUID) (int, error) {
	query := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"matter_id": matterID})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("event.DeleteByMatter: build: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("event.DeleteByMatter: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Status store
// ---------------------------------------------------------------------------

// ResetTerminal moves a done or failed event back to pending so it can be
// run again. A pending or processing event is left alone and reported as
// domain.ErrInvalidTransition.
func (r *Repo) ResetTerminal(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	terminal := []domain.AIStatus{domain.AIStatusDone, domain.AIStatusFailed}
	return r.transitionFrom(ctx, id, terminal, domain.AIStatusPending, nil, map[string]any{
		"ai_results": nil,
		"ai_error":   nil,
		"ai_run_id":  nil,
	})
}

// StartRun moves a pending event to processing and tags it with runID.
// Only the run holding runID may later complete or fail it.
func (r *Repo) StartRun(ctx context.Context, id, runID uuid.UUID) (*domain.Event, error) {
	return r.transition(ctx, id, domain.AIStatusProcessing, nil, map[string]any{
		"ai_results": nil,
		"ai_error":   nil,
		"ai_run_id":  runID,
	})
}

// CompleteRun moves a processing event owned by runID to done, storing
// results (nil means done without artifacts) in the same statement.
func (r *Repo) CompleteRun(ctx context.Context, id, runID uuid.UUID, results *domain.AIResults) (*domain.Event, error) {
	raw, err := encodeResults(results)
	if err != nil {
		return nil, fmt.Errorf("event.CompleteRun: encode results: %w", err)
	}
	var resultsArg any
	if raw != nil {
		resultsArg = raw
	}
	return r.transition(ctx, id, domain.AIStatusDone, &runID, map[string]any{
		"ai_results": resultsArg,
		"ai_error":   nil,
		"ai_run_id":  nil,
	})
}

// FailRun moves a processing event owned by runID to failed with reason.
func (r *Repo) FailRun(ctx context.Context, id, runID uuid.UUID, reason string) (*domain.Event, error) {
	return r.transition(ctx, id, domain.AIStatusFailed, &runID, map[string]any{
		"ai_results": nil,
		"ai_error":   reason,
		"ai_run_id":  nil,
	})
}

// FailStale marks every event that has been processing since before
// cutoff as failed with reason. Returns the number of events reclaimed.
func (r *Repo) FailStale(ctx context.Context, cutoff time.Time, reason string) (int, error) {
	query := postgres.Builder().
		Update(table).
		Set("ai_status", string(domain.AIStatusFailed)).
		Set("ai_error", reason).
		Set("ai_run_id", nil).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"ai_status": string(domain.AIStatusProcessing)}).
		Where(squirrel.Lt{"updated_at": cutoff})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("event.FailStale: build: %w", err)
	}

	tag, err := postgres.Conn(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("event.FailStale: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// transition applies to together with set when the current status is a
// legal source for to (and, when runID is given, the run still owns the
// event). On a rejected transition it distinguishes a missing event
// (domain.ErrNotFound) from an illegal one (domain.ErrInvalidTransition).
func (r *Repo) transition(
	ctx context.Context,
	id uuid.UUID,
	to domain.AIStatus,
	runID *uuid.UUID,
	set map[string]any,
) (*domain.Event, error) {
	return r.transitionFrom(ctx, id, domain.SourcesFor(to), to, runID, set)
}

// transitionFrom is transition restricted to the given source statuses.
func (r *Repo) transitionFrom(
	ctx context.Context,
	id uuid.UUID,
	sources []domain.AIStatus,
	to domain.AIStatus,
	runID *uuid.UUID,
	set map[string]any,
) (*domain.Event, error) {
	from := make([]string, len(sources))
	for i, s := range sources {
		from[i] = string(s)
	}

	query := postgres.Builder().
		Update(table).
		Set("ai_status", string(to)).
		SetMap(set).
		Set("updated_at", r.now()).
		Where(squirrel.Eq{"id": id, "ai_status": from})
	if runID != nil {
		query = query.Where(squirrel.Eq{"ai_run_id": *runID})
	}
	query = query.Suffix(returning)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("event.transition: build: %w", err)
	}

	e, err := scanEvent(postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, postgres.MapError(err, "event", id)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("event %s: %s -> %s: %w", id, current.AIStatus, to, domain.ErrInvalidTransition)
}

func (r *Repo) queryOne(ctx context.Context, op string, id uuid.UUID, query squirrel.Sqlizer) (*domain.Event, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	e, err := scanEvent(postgres.Conn(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "event", id)
	}
	return e, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		e          domain.Event
		typ        string
		status     string
		rawResults []byte
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.MatterID, &typ, &e.Content, &e.Participants,
		&status, &rawResults, &e.AIError, &e.EmailSent, &e.Timestamp, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EventType(typ)
	e.AIStatus = domain.AIStatus(status)

	results, err := decodeResults(rawResults)
	if err != nil {
		return nil, fmt.Errorf("decode ai_results: %w", err)
	}
	e.AIResults = results
	return &e, nil
}
