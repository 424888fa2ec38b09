package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres/testhelper"
)

const insertMatterSQL = `INSERT INTO matters (id, user_id, title, status, priority)
	 VALUES ($1, $2, $3, 'active', 'medium')`

// matterExists checks whether a matter row with the given ID exists in the database.
func matterExists(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM matters WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("matterExists query: %v", err)
	}
	return exists
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		_, err := postgres.Conn(ctx, pool).Exec(ctx, insertMatterSQL, id, uuid.New(), "commit")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !matterExists(t, pool, id) {
		t.Fatal("expected matter to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if _, err := postgres.Conn(ctx, pool).Exec(ctx, insertMatterSQL, id, uuid.New(), "rollback"); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
	if matterExists(t, pool, id) {
		t.Fatal("expected matter NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}
		if matterExists(t, pool, id) {
			t.Fatal("expected matter NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if _, err := postgres.Conn(ctx, pool).Exec(ctx, insertMatterSQL, id, uuid.New(), "panic"); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInTx_ConnSeesUncommittedRows(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.Conn(ctx, pool)
		if _, err := q.Exec(ctx, insertMatterSQL, id, uuid.New(), "visibility"); err != nil {
			return err
		}

		// Visible inside the transaction, not yet outside.
		var inside bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM matters WHERE id = $1)`, id).Scan(&inside); err != nil {
			return err
		}
		if !inside {
			t.Fatal("expected matter to be visible within the transaction")
		}
		if matterExists(t, pool, id) {
			t.Fatal("expected matter NOT to be visible outside before commit")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !matterExists(t, pool, id) {
		t.Fatal("expected matter to exist after committed transaction")
	}
}

func TestRunInTx_NestedJoinsOuter(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()
	sentinel := errors.New("outer failure")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		innerErr := tm.RunInTx(ctx, func(ctx context.Context) error {
			_, err := postgres.Conn(ctx, pool).Exec(ctx, insertMatterSQL, id, uuid.New(), "nested")
			return err
		})
		if innerErr != nil {
			t.Fatalf("inner RunInTx: %v", innerErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
	if matterExists(t, pool, id) {
		t.Fatal("inner write should roll back with the outer transaction")
	}
}
