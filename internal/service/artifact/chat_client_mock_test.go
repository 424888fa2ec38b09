package artifact

import (
	"context"
	"encoding/json"
	"sync"
)

var _ chatClient = &chatClientMock{}

type chatClientMock struct {
	ConfiguredFunc   func() bool
	CompleteJSONFunc func(ctx context.Context, system string, user string) (json.RawMessage, error)

	calls struct {
		CompleteJSON []struct {
			System string
			User   string
		}
	}
	lockCompleteJSON sync.RWMutex
}

func (mock *chatClientMock) Configured() bool {
	if mock.ConfiguredFunc == nil {
		panic("chatClientMock.ConfiguredFunc: method is nil but chatClient.Configured was just called")
	}
	return mock.ConfiguredFunc()
}

func (mock *chatClientMock) CompleteJSON(ctx context.Context, system string, user string) (json.RawMessage, error) {
	if mock.CompleteJSONFunc == nil {
		panic("chatClientMock.CompleteJSONFunc: method is nil but chatClient.CompleteJSON was just called")
	}
	callInfo := struct {
		System string
		User   string
	}{System: system, User: user}
	mock.lockCompleteJSON.Lock()
	mock.calls.CompleteJSON = append(mock.calls.CompleteJSON, callInfo)
	mock.lockCompleteJSON.Unlock()
	return mock.CompleteJSONFunc(ctx, system, user)
}

func (mock *chatClientMock) CompleteJSONCalls() []struct {
	System string
	User   string
} {
	mock.lockCompleteJSON.RLock()
	calls := mock.calls.CompleteJSON
	mock.lockCompleteJSON.RUnlock()
	return calls
}
