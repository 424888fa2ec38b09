package rest

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 3 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

// streamCounter reports open status streams.
type streamCounter interface {
	ClientCount() int
}

// HealthHandler serves the liveness, readiness and detailed health probes.
type HealthHandler struct {
	db      dbPinger
	streams streamCounter
	version string
}

// NewHealthHandler creates a HealthHandler. streams may be nil.
func NewHealthHandler(db dbPinger, streams streamCounter, version string) *HealthHandler {
	return &HealthHandler{db: db, streams: streams, version: version}
}

// HealthResponse is the body of every probe.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is one component of /health.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Clients int    `json:"clients,omitempty"`
}

// Live answers 200 while the process serves requests.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, HealthResponse{Status: "ok"})
}

// Ready answers 503 until the database answers a ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.respond(w, HealthResponse{Status: h.pingDB(r.Context()).Status})
}

// Health reports the database with its ping latency, the number of open
// status streams and the build version. Only the database decides the
// overall status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	db := h.pingDB(r.Context())
	resp := HealthResponse{
		Status:     db.Status,
		Version:    h.version,
		Components: map[string]CompStatus{"database": db},
	}
	if h.streams != nil {
		resp.Components["streams"] = CompStatus{Status: "ok", Clients: h.streams.ClientCount()}
	}
	h.respond(w, resp)
}

func (h *HealthHandler) pingDB(ctx context.Context) CompStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CompStatus{Status: "down"}
	}
	return CompStatus{Status: "ok", Latency: time.Since(start).String()}
}

func (h *HealthHandler) respond(w http.ResponseWriter, resp HealthResponse) {
	resp.Timestamp = time.Now().UTC()
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, resp)
}
