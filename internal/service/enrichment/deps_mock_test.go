package enrichment

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
	"github.com/heartmarshall/matterdesk-backend/internal/service/extract"
)

var _ accessGuard = &accessGuardMock{}

type accessGuardMock struct {
	EventFunc      func(ctx context.Context, id uuid.UUID) (*domain.Event, *domain.Matter, error)
	AttachmentFunc func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)

	calls struct {
		Event []struct {
			ID uuid.UUID
		}
		Attachment []struct {
			ID uuid.UUID
		}
	}
	lockEvent      sync.RWMutex
	lockAttachment sync.RWMutex
}

func (mock *accessGuardMock) Event(ctx context.Context, id uuid.UUID) (*domain.Event, *domain.Matter, error) {
	if mock.EventFunc == nil {
		panic("accessGuardMock.EventFunc: method is nil but accessGuard.Event was just called")
	}
	mock.lockEvent.Lock()
	mock.calls.Event = append(mock.calls.Event, struct{ ID uuid.UUID }{ID: id})
	mock.lockEvent.Unlock()
	return mock.EventFunc(ctx, id)
}

func (mock *accessGuardMock) EventCalls() []struct{ ID uuid.UUID } {
	mock.lockEvent.RLock()
	defer mock.lockEvent.RUnlock()
	return mock.calls.Event
}

func (mock *accessGuardMock) Attachment(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	if mock.AttachmentFunc == nil {
		panic("accessGuardMock.AttachmentFunc: method is nil but accessGuard.Attachment was just called")
	}
	mock.lockAttachment.Lock()
	mock.calls.Attachment = append(mock.calls.Attachment, struct{ ID uuid.UUID }{ID: id})
	mock.lockAttachment.Unlock()
	return mock.AttachmentFunc(ctx, id)
}

func (mock *accessGuardMock) AttachmentCalls() []struct{ ID uuid.UUID } {
	mock.lockAttachment.RLock()
	defer mock.lockAttachment.RUnlock()
	return mock.calls.Attachment
}

var _ settingsRepo = &settingsRepoMock{}

type settingsRepoMock struct {
	GetFunc func(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)
}

func (mock *settingsRepoMock) Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	if mock.GetFunc == nil {
		panic("settingsRepoMock.GetFunc: method is nil but settingsRepo.Get was just called")
	}
	return mock.GetFunc(ctx, userID)
}

var _ extractor = &extractorMock{}

type extractorMock struct {
	SegmentFunc func(ctx context.Context, a domain.Attachment, opts extract.Options) (string, error)

	calls struct {
		Segment []struct {
			A    domain.Attachment
			Opts extract.Options
		}
	}
	lockSegment sync.RWMutex
}

func (mock *extractorMock) Segment(ctx context.Context, a domain.Attachment, opts extract.Options) (string, error) {
	if mock.SegmentFunc == nil {
		panic("extractorMock.SegmentFunc: method is nil but extractor.Segment was just called")
	}
	callInfo := struct {
		A    domain.Attachment
		Opts extract.Options
	}{A: a, Opts: opts}
	mock.lockSegment.Lock()
	mock.calls.Segment = append(mock.calls.Segment, callInfo)
	mock.lockSegment.Unlock()
	return mock.SegmentFunc(ctx, a, opts)
}

func (mock *extractorMock) SegmentCalls() []struct {
	A    domain.Attachment
	Opts extract.Options
} {
	mock.lockSegment.RLock()
	defer mock.lockSegment.RUnlock()
	return mock.calls.Segment
}

var _ generator = &generatorMock{}

type generatorMock struct {
	GenerateFunc func(ctx context.Context, content string) (*domain.AIResults, error)

	calls struct {
		Generate []struct {
			Content string
		}
	}
	lockGenerate sync.RWMutex
}

func (mock *generatorMock) Generate(ctx context.Context, content string) (*domain.AIResults, error) {
	if mock.GenerateFunc == nil {
		panic("generatorMock.GenerateFunc: method is nil but generator.Generate was just called")
	}
	mock.lockGenerate.Lock()
	mock.calls.Generate = append(mock.calls.Generate, struct{ Content string }{Content: content})
	mock.lockGenerate.Unlock()
	return mock.GenerateFunc(ctx, content)
}

func (mock *generatorMock) GenerateCalls() []struct{ Content string } {
	mock.lockGenerate.RLock()
	defer mock.lockGenerate.RUnlock()
	return mock.calls.Generate
}
