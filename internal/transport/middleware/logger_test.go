package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/matterdesk-backend/pkg/ctxutil"
)

func serveLogged(t *testing.T, level slog.Level, req *http.Request, h http.HandlerFunc) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))

	Logger(logger)(h).ServeHTTP(httptest.NewRecorder(), req)

	if buf.Len() == 0 {
		return nil
	}
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		want   string
	}{
		{"list matters", http.MethodGet, "/api/matters", http.StatusOK, "INFO"},
		{"forbidden delete", http.MethodDelete, "/api/matters/x", http.StatusForbidden, "WARN"},
		{"gmail down", http.MethodPost, "/api/outbox/x/send", http.StatusBadGateway, "ERROR"},
		{"failing probe", http.MethodGet, "/ready", http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveLogged(t, slog.LevelInfo, httptest.NewRequest(tt.method, tt.path, nil),
				func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tt.status) })

			require.NotNil(t, rec)
			assert.Equal(t, "http.request", rec["msg"])
			assert.Equal(t, tt.want, rec["level"])
			assert.Equal(t, tt.method, rec["method"])
			assert.Equal(t, tt.path, rec["path"])
			assert.EqualValues(t, tt.status, rec["status"])
			assert.Contains(t, rec, "duration")
		})
	}
}

func TestLogger_HealthyProbeIsDebug(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) {}

	assert.Nil(t, serveLogged(t, slog.LevelInfo, httptest.NewRequest(http.MethodGet, "/live", nil), ok))

	rec := serveLogged(t, slog.LevelDebug, httptest.NewRequest(http.MethodGet, "/live", nil), ok)
	require.NotNil(t, rec)
	assert.Equal(t, "DEBUG", rec["level"])
}

func TestLogger_CountsBytesAndImplicitStatus(t *testing.T) {
	rec := serveLogged(t, slog.LevelInfo, httptest.NewRequest(http.MethodGet, "/api/outbox", nil),
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
			w.WriteHeader(http.StatusTeapot)
		})

	require.NotNil(t, rec)
	assert.EqualValues(t, http.StatusOK, rec["status"], "status is fixed by the first write")
	assert.EqualValues(t, 2, rec["bytes"])
}

func TestLogger_IncludesIdentity(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/matters", nil)
	ctx := ctxutil.WithRequestID(req.Context(), "req-123")
	req = req.WithContext(ctxutil.WithUserID(ctx, userID))

	rec := serveLogged(t, slog.LevelInfo, req, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	require.NotNil(t, rec)
	assert.Equal(t, "req-123", rec["request_id"])
	assert.Equal(t, userID.String(), rec["user_id"])
}

func TestStatusWriter_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	require.NoError(t, http.NewResponseController(sw).Flush())
	assert.True(t, rec.Flushed)
}
