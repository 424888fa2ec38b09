package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres"
	attachmentrepo "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres/attachment"
	eventrepo "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres/event"
	matterrepo "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres/matter"
	outboxrepo "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres/outbox"
	settingsrepo "github.com/heartmarshall/matterdesk-backend/internal/adapter/postgres/settings"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/gmail"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/openai"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/storage/blobfs"
	"github.com/heartmarshall/matterdesk-backend/internal/auth"
	"github.com/heartmarshall/matterdesk-backend/internal/config"
	"github.com/heartmarshall/matterdesk-backend/internal/service/artifact"
	"github.com/heartmarshall/matterdesk-backend/internal/service/attachment"
	"github.com/heartmarshall/matterdesk-backend/internal/service/enrichment"
	"github.com/heartmarshall/matterdesk-backend/internal/service/event"
	"github.com/heartmarshall/matterdesk-backend/internal/service/extract"
	"github.com/heartmarshall/matterdesk-backend/internal/service/guard"
	"github.com/heartmarshall/matterdesk-backend/internal/service/matter"
	"github.com/heartmarshall/matterdesk-backend/internal/service/outbox"
	"github.com/heartmarshall/matterdesk-backend/internal/service/user"
	"github.com/heartmarshall/matterdesk-backend/internal/transport/middleware"
	"github.com/heartmarshall/matterdesk-backend/internal/transport/rest"
	"github.com/heartmarshall/matterdesk-backend/internal/transport/sse"
	"github.com/heartmarshall/matterdesk-backend/pkg/background"
)

// Server is the wired HTTP handler plus the components that need an orderly
// shutdown.
type Server struct {
	Handler http.Handler

	runner  *background.Runner
	broker  *sse.Broker
	limiter *middleware.RateLimiter
}

// Wire builds repositories, providers, services and the router over pool.
func Wire(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Server, error) {
	sealer, err := auth.NewTokenSealer(cfg.Auth.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("token sealer: %w", err)
	}
	blobs, err := blobfs.New(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("blob storage: %w", err)
	}

	// Repositories.
	txm := postgres.NewTxManager(pool)
	matters := matterrepo.New(pool)
	events := eventrepo.New(pool)
	attachments := attachmentrepo.New(pool)
	outboxItems := outboxrepo.New(pool)
	settings := settingsrepo.New(pool, sealer)

	// External providers.
	ai := openai.NewClient(cfg.AI, logger)
	oauth := google.NewOAuth(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI(), logger)
	mailer := gmail.NewSender(logger)

	runner := background.New(logger, cfg.Enrichment.MaxConcurrent, cfg.Enrichment.RunTimeout)
	broker := sse.NewBroker(logger, 0)

	// Services.
	access := guard.New(matters, events, attachments)
	extractor := extract.NewService(logger, ai, blobs)
	artifacts := artifact.NewService(logger, ai)
	enrichSvc := enrichment.NewService(logger, events, access, settings, extractor, artifacts, runner, broker)
	matterSvc := matter.NewService(logger, matters, events, attachments, outboxItems, blobs, access, txm)
	eventSvc := event.NewService(logger, events, attachments, access, txm)
	attachmentSvc := attachment.NewService(logger, attachments, blobs, access)
	outboxSvc := outbox.NewService(logger, outboxItems, settings, oauth, mailer, access)
	userSvc := user.NewService(logger, settings, oauth)

	// Transport.
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)

	handler := rest.NewRouter(rest.Handlers{
		Health:     rest.NewHealthHandler(pool, broker, BuildVersion()),
		Matter:     rest.NewMatterHandler(matterSvc, logger),
		Event:      rest.NewEventHandler(eventSvc, enrichSvc, logger),
		Attachment: rest.NewAttachmentHandler(attachmentSvc, cfg.Storage.MaxUploadBytes, logger),
		AI:         rest.NewAIHandler(artifacts, enrichSvc, logger),
		Outbox:     rest.NewOutboxHandler(outboxSvc, logger),
		Settings:   rest.NewSettingsHandler(userSvc, logger),
		Stream:     broker,
	}, rest.Middlewares{
		CORS:    middleware.CORS(cfg.CORS),
		Auth:    middleware.Auth(jwtManager),
		AILimit: limiter.Limit(cfg.RateLimit.AIPerMinute),
	}, logger)

	return &Server{
		Handler: handler,
		runner:  runner,
		broker:  broker,
		limiter: limiter,
	}, nil
}

// CloseStreams ends every open status stream.
func (s *Server) CloseStreams() {
	s.broker.Close()
}

// Shutdown ends open streams and waits for background runs until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broker.Close()
	s.limiter.Stop()
	return s.runner.Shutdown(ctx)
}

// Run connects the database, wires every component and serves HTTP until
// ctx is canceled. Shutdown ends open streams, drains in-flight requests and
// then waits for background enrichment runs, all within ShutdownTimeout.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("ai_configured", cfg.AI.Configured()),
		slog.Bool("google_configured", cfg.Google.Configured()),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	app, err := Wire(cfg, pool, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      app.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	// Streams never finish on their own; end them as soon as Shutdown starts.
	srv.RegisterOnShutdown(app.CloseStreams)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := app.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("background shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application stopped")
	return nil
}
