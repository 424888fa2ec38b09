package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/matterdesk-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

var _ settingsRepo = &settingsRepoMock{}

type settingsRepoMock struct {
	GetFunc               func(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)
	UpsertPreferencesFunc func(ctx context.Context, s domain.UserSettings) (*domain.UserSettings, error)
	StoreGoogleTokensFunc func(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error
	ClearGoogleTokensFunc func(ctx context.Context, userID uuid.UUID) error

	calls struct {
		StoreGoogleTokens []struct {
			UserID       uuid.UUID
			AccessToken  string
			RefreshToken string
			ExpiresAt    time.Time
		}
		ClearGoogleTokens []struct {
			UserID uuid.UUID
		}
	}
	lockStoreGoogleTokens sync.RWMutex
	lockClearGoogleTokens sync.RWMutex
}

func (mock *settingsRepoMock) Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	if mock.GetFunc == nil {
		panic("settingsRepoMock.GetFunc: method is nil but settingsRepo.Get was just called")
	}
	return mock.GetFunc(ctx, userID)
}

func (mock *settingsRepoMock) UpsertPreferences(ctx context.Context, s domain.UserSettings) (*domain.UserSettings, error) {
	if mock.UpsertPreferencesFunc == nil {
		panic("settingsRepoMock.UpsertPreferencesFunc: method is nil but settingsRepo.UpsertPreferences was just called")
	}
	return mock.UpsertPreferencesFunc(ctx, s)
}

func (mock *settingsRepoMock) StoreGoogleTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiresAt time.Time) error {
	if mock.StoreGoogleTokensFunc == nil {
		panic("settingsRepoMock.StoreGoogleTokensFunc: method is nil but settingsRepo.StoreGoogleTokens was just called")
	}
	callInfo := struct {
		UserID       uuid.UUID
		AccessToken  string
		RefreshToken string
		ExpiresAt    time.Time
	}{UserID: userID, AccessToken: accessToken, RefreshToken: refreshToken, ExpiresAt: expiresAt}
	mock.lockStoreGoogleTokens.Lock()
	mock.calls.StoreGoogleTokens = append(mock.calls.StoreGoogleTokens, callInfo)
	mock.lockStoreGoogleTokens.Unlock()
	return mock.StoreGoogleTokensFunc(ctx, userID, accessToken, refreshToken, expiresAt)
}

func (mock *settingsRepoMock) StoreGoogleTokensCalls() []struct {
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
} {
	mock.lockStoreGoogleTokens.RLock()
	defer mock.lockStoreGoogleTokens.RUnlock()
	return mock.calls.StoreGoogleTokens
}

func (mock *settingsRepoMock) ClearGoogleTokens(ctx context.Context, userID uuid.UUID) error {
	if mock.ClearGoogleTokensFunc == nil {
		panic("settingsRepoMock.ClearGoogleTokensFunc: method is nil but settingsRepo.ClearGoogleTokens was just called")
	}
	mock.lockClearGoogleTokens.Lock()
	mock.calls.ClearGoogleTokens = append(mock.calls.ClearGoogleTokens, struct{ UserID uuid.UUID }{UserID: userID})
	mock.lockClearGoogleTokens.Unlock()
	return mock.ClearGoogleTokensFunc(ctx, userID)
}

func (mock *settingsRepoMock) ClearGoogleTokensCalls() []struct{ UserID uuid.UUID } {
	mock.lockClearGoogleTokens.RLock()
	defer mock.lockClearGoogleTokens.RUnlock()
	return mock.calls.ClearGoogleTokens
}

var _ oauthFlow = &oauthFlowMock{}

type oauthFlowMock struct {
	AuthURLFunc      func(state string) string
	ExchangeCodeFunc func(ctx context.Context, code string) (*google.Token, error)
}

func (mock *oauthFlowMock) AuthURL(state string) string {
	if mock.AuthURLFunc == nil {
		panic("oauthFlowMock.AuthURLFunc: method is nil but oauthFlow.AuthURL was just called")
	}
	return mock.AuthURLFunc(state)
}

func (mock *oauthFlowMock) ExchangeCode(ctx context.Context, code string) (*google.Token, error) {
	if mock.ExchangeCodeFunc == nil {
		panic("oauthFlowMock.ExchangeCodeFunc: method is nil but oauthFlow.ExchangeCode was just called")
	}
	return mock.ExchangeCodeFunc(ctx, code)
}
