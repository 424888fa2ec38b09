package rest

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/attachment"
	"github.com/heartmarshall/matterdesk-backend/internal/service/enrichment"
	"github.com/heartmarshall/matterdesk-backend/internal/service/event"
	"github.com/heartmarshall/matterdesk-backend/internal/service/matter"
	"github.com/heartmarshall/matterdesk-backend/internal/service/outbox"
	"github.com/heartmarshall/matterdesk-backend/internal/service/user"
)

type matterServiceStub struct {
	CreateFunc func(ctx context.Context, input matter.CreateInput) (*domain.Matter, error)
	ListFunc   func(ctx context.Context) ([]domain.Matter, error)
	GetFunc    func(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
	RemoveFunc func(ctx context.Context, id uuid.UUID) error
}

func (s *matterServiceStub) Create(ctx context.Context, input matter.CreateInput) (*domain.Matter, error) {
	return s.CreateFunc(ctx, input)
}
func (s *matterServiceStub) List(ctx context.Context) ([]domain.Matter, error) { return s.ListFunc(ctx) }
func (s *matterServiceStub) Get(ctx context.Context, id uuid.UUID) (*domain.Matter, error) {
	return s.GetFunc(ctx, id)
}
func (s *matterServiceStub) Remove(ctx context.Context, id uuid.UUID) error { return s.RemoveFunc(ctx, id) }

type eventServiceStub struct {
	CreateFunc        func(ctx context.Context, input event.CreateInput) (*domain.Event, error)
	ListByMatterFunc  func(ctx context.Context, matterID uuid.UUID) ([]domain.Event, error)
	UpdateFunc        func(ctx context.Context, input event.UpdateInput) (*domain.Event, error)
	RemoveFunc        func(ctx context.Context, id uuid.UUID) error
	MarkEmailSentFunc func(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

func (s *eventServiceStub) Create(ctx context.Context, input event.CreateInput) (*domain.Event, error) {
	return s.CreateFunc(ctx, input)
}
func (s *eventServiceStub) ListByMatter(ctx context.Context, matterID uuid.UUID) ([]domain.Event, error) {
	return s.ListByMatterFunc(ctx, matterID)
}
func (s *eventServiceStub) Update(ctx context.Context, input event.UpdateInput) (*domain.Event, error) {
	return s.UpdateFunc(ctx, input)
}
func (s *eventServiceStub) Remove(ctx context.Context, id uuid.UUID) error { return s.RemoveFunc(ctx, id) }
func (s *eventServiceStub) MarkEmailSent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return s.MarkEmailSentFunc(ctx, id)
}

type enricherStub struct {
	ProcessEventAIFunc func(ctx context.Context, input enrichment.ProcessInput) error
}

func (s *enricherStub) ProcessEventAI(ctx context.Context, input enrichment.ProcessInput) error {
	return s.ProcessEventAIFunc(ctx, input)
}

type attachmentServiceStub struct {
	UploadFunc       func(ctx context.Context, input attachment.UploadInput) (*domain.Attachment, error)
	ListByMatterFunc func(ctx context.Context, matterID uuid.UUID) ([]domain.Attachment, error)
	OpenFunc         func(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error)
}

func (s *attachmentServiceStub) Upload(ctx context.Context, input attachment.UploadInput) (*domain.Attachment, error) {
	return s.UploadFunc(ctx, input)
}
func (s *attachmentServiceStub) ListByMatter(ctx context.Context, matterID uuid.UUID) ([]domain.Attachment, error) {
	return s.ListByMatterFunc(ctx, matterID)
}
func (s *attachmentServiceStub) Open(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	return s.OpenFunc(ctx, id)
}

type artifactServiceStub struct {
	GenerateFunc            func(ctx context.Context, content string) (*domain.AIResults, error)
	DraftFromActionItemFunc func(ctx context.Context, actionItem string) (*domain.EmailDraft, error)
}

func (s *artifactServiceStub) Generate(ctx context.Context, content string) (*domain.AIResults, error) {
	return s.GenerateFunc(ctx, content)
}
func (s *artifactServiceStub) DraftFromActionItem(ctx context.Context, actionItem string) (*domain.EmailDraft, error) {
	return s.DraftFromActionItemFunc(ctx, actionItem)
}

type statsProviderStub struct {
	StatsFunc func(ctx context.Context) (domain.EnrichmentStats, error)
}

func (s *statsProviderStub) Stats(ctx context.Context) (domain.EnrichmentStats, error) {
	return s.StatsFunc(ctx)
}

type outboxServiceStub struct {
	CreateFunc func(ctx context.Context, input outbox.CreateInput) (*domain.OutboxItem, error)
	ListFunc   func(ctx context.Context) ([]domain.OutboxItem, error)
	SendFunc   func(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error)
}

func (s *outboxServiceStub) Create(ctx context.Context, input outbox.CreateInput) (*domain.OutboxItem, error) {
	return s.CreateFunc(ctx, input)
}
func (s *outboxServiceStub) List(ctx context.Context) ([]domain.OutboxItem, error) { return s.ListFunc(ctx) }
func (s *outboxServiceStub) Send(ctx context.Context, id uuid.UUID) (*domain.OutboxItem, error) {
	return s.SendFunc(ctx, id)
}

type settingsServiceStub struct {
	GetSettingsFunc      func(ctx context.Context) (*domain.UserSettings, error)
	UpdateSettingsFunc   func(ctx context.Context, input user.UpdateSettingsInput) (*domain.UserSettings, error)
	GoogleAuthURLFunc    func(ctx context.Context) (string, error)
	ConnectGoogleFunc    func(ctx context.Context, input user.ConnectGoogleInput) error
	DisconnectGoogleFunc func(ctx context.Context) error
}

func (s *settingsServiceStub) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	return s.GetSettingsFunc(ctx)
}
func (s *settingsServiceStub) UpdateSettings(ctx context.Context, input user.UpdateSettingsInput) (*domain.UserSettings, error) {
	return s.UpdateSettingsFunc(ctx, input)
}
func (s *settingsServiceStub) GoogleAuthURL(ctx context.Context) (string, error) {
	return s.GoogleAuthURLFunc(ctx)
}
func (s *settingsServiceStub) ConnectGoogle(ctx context.Context, input user.ConnectGoogleInput) error {
	return s.ConnectGoogleFunc(ctx, input)
}
func (s *settingsServiceStub) DisconnectGoogle(ctx context.Context) error {
	return s.DisconnectGoogleFunc(ctx)
}
