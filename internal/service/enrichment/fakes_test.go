package enrichment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/pkg/background"
	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

// memEvents is an in-memory status store applying the same transition
// rules as the postgres repository.
type memEvents struct {
	mu     sync.Mutex
	events map[uuid.UUID]*domain.Event
	runs   map[uuid.UUID]uuid.UUID
	// history records every persisted status per event.
	history map[uuid.UUID][]domain.AIStatus
	// beforeComplete runs inside CompleteRun, under the lock, before the
	// transition check.
	beforeComplete func(id uuid.UUID)
	// beforeReset runs inside ResetTerminal, under the lock, before the
	// status check.
	beforeReset func(id uuid.UUID)
}

func newMemEvents(events ...*domain.Event) *memEvents {
	m := &memEvents{
		events:  make(map[uuid.UUID]*domain.Event),
		runs:    make(map[uuid.UUID]uuid.UUID),
		history: make(map[uuid.UUID][]domain.AIStatus),
	}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *memEvents) get(id uuid.UUID) domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func (m *memEvents) statuses(id uuid.UUID) []domain.AIStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AIStatus(nil), m.history[id]...)
}

func (m *memEvents) GetByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEvents) move(id uuid.UUID, next domain.AIStatus, apply func(*domain.Event)) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !e.AIStatus.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}
	e.AIStatus = next
	if apply != nil {
		apply(e)
	}
	m.history[id] = append(m.history[id], next)
	cp := *e
	return &cp, nil
}

func (m *memEvents) ResetTerminal(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeReset != nil {
		m.beforeReset(id)
	}
	if e, ok := m.events[id]; ok && !e.AIStatus.IsTerminal() {
		return nil, domain.ErrInvalidTransition
	}
	delete(m.runs, id)
	return m.move(id, domain.AIStatusPending, func(e *domain.Event) {
		e.AIResults = nil
		e.AIError = nil
	})
}

func (m *memEvents) StartRun(_ context.Context, id, runID uuid.UUID) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.move(id, domain.AIStatusProcessing, nil)
	if err == nil {
		m.runs[id] = runID
	}
	return e, err
}

func (m *memEvents) CompleteRun(_ context.Context, id, runID uuid.UUID, results *domain.AIResults) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeComplete != nil {
		m.beforeComplete(id)
	}
	if m.runs[id] != runID {
		return nil, domain.ErrInvalidTransition
	}
	return m.move(id, domain.AIStatusDone, func(e *domain.Event) {
		e.AIResults = results
		e.AIError = nil
	})
}

func (m *memEvents) FailRun(_ context.Context, id, runID uuid.UUID, reason string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs[id] != runID {
		return nil, domain.ErrInvalidTransition
	}
	return m.move(id, domain.AIStatusFailed, func(e *domain.Event) {
		e.AIResults = nil
		e.AIError = &reason
	})
}

func (m *memEvents) CountByStatus(_ context.Context, userID uuid.UUID) (domain.EnrichmentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st domain.EnrichmentStats
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		st.Total++
		switch e.AIStatus {
		case domain.AIStatusPending:
			st.Pending++
		case domain.AIStatusProcessing:
			st.Processing++
		case domain.AIStatusDone:
			st.Done++
		case domain.AIStatusFailed:
			st.Failed++
		}
	}
	return st, nil
}

// syncRunner runs each job inline on a detached context.
type syncRunner struct {
	mu   sync.Mutex
	errs []error
	err  error
}

func (r *syncRunner) Go(ctx context.Context, _ string, job background.Job) error {
	if r.err != nil {
		return r.err
	}
	jobErr := job(ctxutil.Detach(ctx))
	r.mu.Lock()
	r.errs = append(r.errs, jobErr)
	r.mu.Unlock()
	return nil
}

type published struct {
	UserID uuid.UUID
	Name   string
	Change StatusChange
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(userID uuid.UUID, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{UserID: userID, Name: event, Change: payload.(StatusChange)})
}

func (n *recordingNotifier) statuses() []domain.AIStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.AIStatus, 0, len(n.events))
	for _, p := range n.events {
		out = append(out, p.Change.Status)
	}
	return out
}

func newEvent(userID, matterID uuid.UUID, status domain.AIStatus) *domain.Event {
	return &domain.Event{
		ID:        uuid.New(),
		UserID:    userID,
		MatterID:  matterID,
		Type:      domain.EventTypeNote,
		Content:   "Discuss contract renewal",
		AIStatus:  status,
		Timestamp: time.Now(),
	}
}
