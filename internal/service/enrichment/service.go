// Package enrichment runs the AI pipeline for an event: it extracts text
// from attachments, merges it with the event content, optionally generates
// artifacts, and drives the event's status through the status store.
package enrichment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/extract"
	"github.com/heartmarshall/matterdesk-backend/pkg/background"
)

// StatusEvent is the name of the notification published after every
// persisted status transition.
const StatusEvent = "event.ai_status"

// failWriteTimeout bounds the final failed transition, which runs even when
// the run's own deadline has passed.
const failWriteTimeout = 10 * time.Second

type statusStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	ResetTerminal(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	StartRun(ctx context.Context, id, runID uuid.UUID) (*domain.Event, error)
	CompleteRun(ctx context.Context, id, runID uuid.UUID, results *domain.AIResults) (*domain.Event, error)
	FailRun(ctx context.Context, id, runID uuid.UUID, reason string) (*domain.Event, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (domain.EnrichmentStats, error)
}

type accessGuard interface {
	Event(ctx context.Context, id uuid.UUID) (*domain.Event, *domain.Matter, error)
	Attachment(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
}

type settingsRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)
}

type extractor interface {
	Segment(ctx context.Context, a domain.Attachment, opts extract.Options) (string, error)
}

type generator interface {
	Generate(ctx context.Context, content string) (*domain.AIResults, error)
}

type runner interface {
	Go(ctx context.Context, name string, job background.Job) error
}

type notifier interface {
	Publish(userID uuid.UUID, event string, payload any)
}

// StatusChange is the payload of StatusEvent.
type StatusChange struct {
	EventID uuid.UUID       `json:"eventId"`
	Status  domain.AIStatus `json:"status"`
	Error   *string         `json:"error,omitempty"`
}

// Service is the enrichment orchestrator.
type Service struct {
	log       *slog.Logger
	events    statusStore
	guard     accessGuard
	settings  settingsRepo
	extractor extractor
	generator generator
	runner    runner
	notifier  notifier
}

// NewService creates a new enrichment service.
func NewService(
	log *slog.Logger,
	events statusStore,
	guard accessGuard,
	settings settingsRepo,
	extractor extractor,
	generator generator,
	runner runner,
	notifier notifier,
) *Service {
	return &Service{
		log:       log.With("service", "enrichment"),
		events:    events,
		guard:     guard,
		settings:  settings,
		extractor: extractor,
		generator: generator,
		runner:    runner,
		notifier:  notifier,
	}
}

func (s *Service) publish(userID uuid.UUID, e *domain.Event) {
	if s.notifier == nil || e == nil {
		return
	}
	s.notifier.Publish(userID, StatusEvent, StatusChange{
		EventID: e.ID,
		Status:  e.AIStatus,
		Error:   e.AIError,
	})
}
