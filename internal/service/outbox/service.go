// Package outbox queues follow-up emails and delivers them through the
// user's connected Gmail mailbox.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/gmail"
	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// refreshMargin is how close to expiry an access token is refreshed before use.
const refreshMargin = 60 * time.Second

type outboxRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.OutboxItem, error)
	Create(ctx context.Context, it *domain.OutboxItem) (*domain.OutboxItem, error)
	MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string, sentAt time.Time) (*domain.OutboxItem, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (*domain.OutboxItem, error)
}

type settingsRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)
	StoreGoogleTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error
}

type tokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*google.Token, error)
}

type mailSender interface {
	Send(ctx context.Context, accessToken string, msg gmail.Message) (string, error)
}

type accessGuard interface {
	Matter(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
}

// Service provides outbox operations.
type Service struct {
	log      *slog.Logger
	outbox   outboxRepo
	settings settingsRepo
	oauth    tokenRefresher
	sender   mailSender
	guard    accessGuard
	now      func() time.Time
}

// NewService creates a new outbox service.
func NewService(
	log *slog.Logger,
	outbox outboxRepo,
	settings settingsRepo,
	oauth tokenRefresher,
	sender mailSender,
	guard accessGuard,
) *Service {
	return &Service{
		log:      log.With("service", "outbox"),
		outbox:   outbox,
		settings: settings,
		oauth:    oauth,
		sender:   sender,
		guard:    guard,
		now:      time.Now,
	}
}
