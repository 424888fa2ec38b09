// Package artifact produces the summary, minutes, action items and email
// draft for a piece of content using a chat model, and guarantees the
// result fits the persisted schema whatever the model returns.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

type chatClient interface {
	Configured() bool
	CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error)
}

// Service generates artifacts.
type Service struct {
	chat chatClient
	log  *slog.Logger
}

// NewService creates a new artifact service.
func NewService(log *slog.Logger, chat chatClient) *Service {
	return &Service{
		chat: chat,
		log:  log.With("service", "artifact"),
	}
}

// Generate returns sanitized artifacts for content. Without a model
// credential it returns the deterministic offline fallback.
func (s *Service) Generate(ctx context.Context, content string) (*domain.AIResults, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}

	if !s.chat.Configured() {
		s.log.WarnContext(ctx, "ai key missing, using offline artifacts")
		return Fallback(content), nil
	}

	raw, err := s.chat.CompleteJSON(ctx, systemPrompt, artifactPrompt(content))
	if err != nil {
		return nil, fmt.Errorf("artifact.Generate: %w", err)
	}

	results, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("artifact.Generate: %w", err)
	}

	s.log.InfoContext(ctx, "artifacts generated",
		slog.Bool("summary", results.Summary != nil),
		slog.Int("action_items", len(results.ActionItems)),
		slog.Bool("email_draft", results.EmailDraft != nil))

	return results, nil
}

// DraftFromActionItem returns an email draft for a single action item.
func (s *Service) DraftFromActionItem(ctx context.Context, actionItem string) (*domain.EmailDraft, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := validateActionItem(actionItem); err != nil {
		return nil, err
	}

	if !s.chat.Configured() {
		return FallbackDraft(actionItem), nil
	}

	raw, err := s.chat.CompleteJSON(ctx, systemPrompt, draftPrompt(actionItem))
	if err != nil {
		return nil, fmt.Errorf("artifact.DraftFromActionItem: %w", err)
	}

	draft, err := DecodeDraft(raw)
	if err != nil {
		return nil, fmt.Errorf("artifact.DraftFromActionItem: %w", err)
	}
	return draft, nil
}
