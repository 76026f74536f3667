package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/onnwee/inquiry-desk/audit"
	"github.com/onnwee/inquiry-desk/inquiry"
)

var errNotConnected = errors.New("gateway not connected")

// Snapshotter lists the open inquiries.
type Snapshotter interface {
	Snapshot() []inquiry.Entry
}

// AuditReader reads back the audit trail.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers report on. Audit may be nil.
type Deps struct {
	Registry     Snapshotter
	GatewayReady func() bool
	Audit        AuditReader
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	deps Deps
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(deps Deps) *Handlers {
	if deps.GatewayReady == nil {
		deps.GatewayReady = func() bool { return false }
	}
	return &Handlers{deps: deps}
}

// HandleHealthz is the liveness probe: the process is up and serving.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz reports ready once the gateway session is connected and, when
// auditing is enabled, the database answers.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"gateway", func() error {
			if !h.deps.GatewayReady() {
				return errNotConnected
			}
			return nil
		}},
		{"audit_db", func() error {
			if h.deps.Audit == nil {
				return nil
			}
			return h.deps.Audit.Ping(r.Context())
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// HandleStatus returns the open inquiries.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var entries []inquiry.Entry
	if h.deps.Registry != nil {
		entries = h.deps.Registry.Snapshot()
	}
	if entries == nil {
		entries = []inquiry.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gateway_ready":  h.deps.GatewayReady(),
		"audit_enabled":  h.deps.Audit != nil,
		"open_inquiries": len(entries),
		"inquiries":      entries,
	})
}

// HandleAuditRecent lists the newest audit events (?limit=, default 50).
func (h *Handlers) HandleAuditRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.deps.Audit == nil {
		http.Error(w, "audit trail disabled", http.StatusNotFound)
		return
	}
	events, err := h.deps.Audit.Recent(r.Context(), parseIntQuery(r, "limit", 50))
	if err != nil {
		slog.Error("audit query failed", slog.Any("err", err), slog.String("component", "http"))
		http.Error(w, "audit query failed", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// parseIntQuery extracts an int parameter from query string with a default value.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.Any("err", err), slog.String("component", "http"))
	}
}
