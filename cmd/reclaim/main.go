// Command reclaim fails events stuck in processing for longer than the
// configured staleness window, so they can be re-run. It is intended to be
// invoked by an external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres/event"
	"github.com/heartmarshall/matterdesk-backend/internal/app"
	"github.com/heartmarshall/matterdesk-backend/internal/config"
)

const reason = "stale processing reclaimed"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	cutoff := time.Now().Add(-cfg.Enrichment.StaleAfter)

	n, err := event.New(pool).FailStale(ctx, cutoff, reason)
	if err != nil {
		logger.Error("reclaim failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff),
		)
		os.Exit(1)
	}

	logger.Info("reclaim completed",
		slog.Int("reclaimed", n),
		slog.Time("cutoff", cutoff),
	)
}
