// Package guard decides whether the caller may touch a matter, an event or
// an attachment. The predicates are pure; Guard loads the parent chain and
// applies them.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// Caller returns the authenticated user id or domain.ErrUnauthorized.
func Caller(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}

// OwnsMatter reports whether caller owns m.
func OwnsMatter(caller uuid.UUID, m *domain.Matter) bool {
	return caller != uuid.Nil && m != nil && m.UserID == caller
}

// OwnsEvent reports whether caller owns e and the matter it belongs to.
func OwnsEvent(caller uuid.UUID, e *domain.Event, m *domain.Matter) bool {
	if e == nil || !OwnsMatter(caller, m) {
		return false
	}
	return e.UserID == caller && e.MatterID == m.ID
}

// OwnsAttachment reports whether caller owns a through its whole chain. When
// a references an event, e must be that event and sit in the same matter as
// a; a mismatch denies even if the direct owner fields match.
func OwnsAttachment(caller uuid.UUID, a *domain.Attachment, e *domain.Event, m *domain.Matter) bool {
	if a == nil || !OwnsMatter(caller, m) {
		return false
	}
	if a.UserID != caller || a.MatterID != m.ID {
		return false
	}
	if a.EventID == nil {
		return true
	}
	return e != nil && e.ID == *a.EventID && OwnsEvent(caller, e, m)
}

// OwnsOutboxItem reports whether caller owns it.
func OwnsOutboxItem(caller uuid.UUID, it *domain.OutboxItem) bool {
	return caller != uuid.Nil && it != nil && it.UserID == caller
}

type matterGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Matter, error)
}

type eventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

type attachmentGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
}

// Guard loads entities with their parents and checks ownership.
// A missing entity and one owned by someone else both yield
// domain.ErrForbidden so callers cannot probe for other users' ids.
type Guard struct {
	matters     matterGetter
	events      eventGetter
	attachments attachmentGetter
}

// New creates a Guard.
func New(matters matterGetter, events eventGetter, attachments attachmentGetter) *Guard {
	return &Guard{matters: matters, events: events, attachments: attachments}
}

// Matter returns the matter if the caller owns it.
func (g *Guard) Matter(ctx context.Context, id uuid.UUID) (*domain.Matter, error) {
	caller, err := Caller(ctx)
	if err != nil {
		return nil, err
	}
	m, err := load(ctx, g.matters.GetByID, id)
	if err != nil {
		return nil, fmt.Errorf("guard.Matter: %w", err)
	}
	if !OwnsMatter(caller, m) {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// Event returns the event and its matter if the caller owns both.
func (g *Guard) Event(ctx context.Context, id uuid.UUID) (*domain.Event, *domain.Matter, error) {
	caller, err := Caller(ctx)
	if err != nil {
		return nil, nil, err
	}
	e, err := load(ctx, g.events.GetByID, id)
	if err != nil {
		return nil, nil, fmt.Errorf("guard.Event: %w", err)
	}
	if e == nil || e.UserID != caller {
		return nil, nil, domain.ErrForbidden
	}
	m, err := load(ctx, g.matters.GetByID, e.MatterID)
	if err != nil {
		return nil, nil, fmt.Errorf("guard.Event: %w", err)
	}
	if !OwnsEvent(caller, e, m) {
		return nil, nil, domain.ErrForbidden
	}
	return e, m, nil
}

// Attachment returns the attachment if the caller owns it and its chain.
func (g *Guard) Attachment(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	caller, err := Caller(ctx)
	if err != nil {
		return nil, err
	}
	a, err := load(ctx, g.attachments.GetByID, id)
	if err != nil {
		return nil, fmt.Errorf("guard.Attachment: %w", err)
	}
	if a == nil || a.UserID != caller {
		return nil, domain.ErrForbidden
	}
	m, err := load(ctx, g.matters.GetByID, a.MatterID)
	if err != nil {
		return nil, fmt.Errorf("guard.Attachment: %w", err)
	}
	var e *domain.Event
	if a.EventID != nil {
		e, err = load(ctx, g.events.GetByID, *a.EventID)
		if err != nil {
			return nil, fmt.Errorf("guard.Attachment: %w", err)
		}
	}
	if !OwnsAttachment(caller, a, e, m) {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

// load fetches by id, treating not-found as a nil entity.
func load[T any](ctx context.Context, get func(context.Context, uuid.UUID) (*T, error), id uuid.UUID) (*T, error) {
	v, err := get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// Denied reports whether err is an authorization failure that read paths
// turn into an empty result.
func Denied(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden)
}
