// Package testhelper provisions a migrated PostgreSQL database for
// integration tests and seeds matters, events, attachments and outbox rows.
package testhelper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
)

// DSNEnv points the suite at an existing database instead of a container.
// The database is migrated up before use.
const DSNEnv = "MATTERDESK_TEST_DSN"

const image = "postgres:17-alpine"

var (
	provision sync.Once
	dsn       string
	dsnErr    error
)

// SetupTestDB returns a pool on the shared, migrated test database. The
// database is provisioned once per test binary; each pool is closed when t
// ends. Tests are skipped under -short.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("database tests skipped in short mode")
	}

	provision.Do(func() { dsn, dsnErr = provisionDB() })
	if dsnErr != nil {
		t.Fatalf("testhelper: provision database: %v", dsnErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("testhelper: open pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func provisionDB() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	target := os.Getenv(DSNEnv)
	if target == "" {
		var err error
		if target, err = startContainer(ctx); err != nil {
			return "", err
		}
	}

	m, err := postgres.NewMigrator(ctx, target, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return "", err
	}
	defer m.Close()
	if err := m.Up(ctx); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	return target, nil
}

// startContainer runs a throwaway PostgreSQL that lives until the test
// process exits.
func startContainer(ctx context.Context) (string, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "matterdesk",
				"POSTGRES_PASSWORD": "matterdesk",
				"POSTGRES_DB":       "matterdesk_test",
			},
			// The server logs readiness twice: once for the init run, once for real.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start %s: %w", image, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("postgres://matterdesk:matterdesk@%s:%s/matterdesk_test?sslmode=disable", host, port.Port()), nil
}
