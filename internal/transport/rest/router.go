package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/matterdesk-backend/internal/transport/middleware"
)

// Handlers groups every endpoint handler mounted by NewRouter.
type Handlers struct {
	Health     *HealthHandler
	Matter     *MatterHandler
	Event      *EventHandler
	Attachment *AttachmentHandler
	AI         *AIHandler
	Outbox     *OutboxHandler
	Settings   *SettingsHandler
	Stream     http.Handler
}

// Middlewares holds the configured cross-cutting middleware.
type Middlewares struct {
	CORS    middleware.Middleware
	Auth    middleware.Middleware
	AILimit middleware.Middleware
}

// NewRouter mounts probes at the root and the API under /api.
// Order: RequestID, Recovery, CORS, Auth, Logger.
func NewRouter(h Handlers, mw Middlewares, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recovery(logger),
		mw.CORS,
		mw.Auth,
		middleware.Logger(logger),
	)

	r.Get("/live", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Get("/health", h.Health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/matters", func(r chi.Router) {
			r.Get("/", h.Matter.List)
			r.Post("/", h.Matter.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Matter.Get)
				r.Delete("/", h.Matter.Delete)
				r.Get("/events", h.Event.ListByMatter)
				r.Post("/events", h.Event.Create)
				r.Get("/attachments", h.Attachment.ListByMatter)
				r.Post("/attachments", h.Attachment.Upload)
			})
		})

		r.Route("/events/{id}", func(r chi.Router) {
			r.Patch("/", h.Event.Update)
			r.Delete("/", h.Event.Delete)
			r.Post("/email-sent", h.Event.MarkEmailSent)
			r.With(mw.AILimit).Post("/enrich", h.Event.Enrich)
		})

		r.Get("/attachments/{id}/content", h.Attachment.Content)

		r.Route("/ai", func(r chi.Router) {
			r.Use(mw.AILimit)
			r.Post("/artifacts", h.AI.Artifacts)
			r.Post("/draft", h.AI.Draft)
		})
		r.Get("/enrichment/stats", h.AI.Stats)

		r.Get("/outbox", h.Outbox.List)
		r.Post("/outbox", h.Outbox.Create)
		r.Post("/outbox/{id}/send", h.Outbox.Send)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.Settings.Get)
			r.Put("/", h.Settings.Update)
			r.Get("/google/auth-url", h.Settings.GoogleAuthURL)
			r.Post("/google/callback", h.Settings.GoogleCallback)
			r.Delete("/google", h.Settings.DisconnectGoogle)
		})

		r.With(middleware.RequireUser).Get("/stream", h.Stream.ServeHTTP)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
