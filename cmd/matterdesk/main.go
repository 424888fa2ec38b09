// Command matterdesk runs the API server and its maintenance subcommands.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
	"github.com/heartmarshall/matterdesk-backend/internal/app"
	"github.com/heartmarshall/matterdesk-backend/internal/auth"
	"github.com/heartmarshall/matterdesk-backend/internal/config"
)

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.LoadFrom(cmd.String("config"), cmd.IsSet("config"))
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, cfg, app.NewLogger(cfg.Log))
}

func withMigrator(fn func(ctx context.Context, m *postgres.Migrator) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		m, err := postgres.NewMigrator(ctx, cfg.Database.DSN, app.NewLogger(cfg.Log))
		if err != nil {
			return err
		}
		defer m.Close() //nolint:errcheck

		return fn(ctx, m)
	}
}

func mintToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(cmd.String("user"))
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	var token string
	if ttl := cmd.Duration("ttl"); ttl > 0 {
		token, err = jwtManager.GenerateAccessTokenTTL(userID, ttl)
	} else {
		token, err = jwtManager.GenerateAccessToken(userID)
	}
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	fmt.Fprintln(cmd.Root().Writer, token)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "matterdesk",
		Usage:  "Matter and event tracking backend with AI enrichment",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "./config.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Apply or inspect database migrations",
				Commands: []*cli.Command{
					{
						Name:  "up",
						Usage: "Apply all pending migrations",
						Action: withMigrator(func(ctx context.Context, m *postgres.Migrator) error {
							return m.Up(ctx)
						}),
					},
					{
						Name:  "down",
						Usage: "Roll back the latest migration",
						Action: withMigrator(func(ctx context.Context, m *postgres.Migrator) error {
							return m.Down(ctx)
						}),
					},
					{
						Name:  "status",
						Usage: "Print migration status",
						Action: withMigrator(func(ctx context.Context, m *postgres.Migrator) error {
							return m.Status(ctx, os.Stdout)
						}),
					},
				},
			},
			{
				Name:   "token",
				Usage:  "Mint an access token for a user",
				Action: mintToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Usage:    "User id (UUID)",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime, defaults to AUTH_ACCESS_TOKEN_TTL",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
