package api

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/swarmreport/swarmreport/pkg/types"
	"github.com/swarmreport/swarmreport/server/internal/ingress"
	"github.com/swarmreport/swarmreport/server/internal/view"
)

//go:embed dashboard.html
var dashboardHTML []byte

// Snapshotter produces consistent snapshots. *view.View satisfies it.
type Snapshotter interface {
	Snapshot() view.Snapshot
}

// Publisher accepts reports for the aggregator. *ingress.Queue satisfies it.
type Publisher interface {
	Publish(ingress.Item)
}

// Handler is the HTTP handler for the dashboard and all /api/* endpoints.
type Handler struct {
	snap  Snapshotter
	queue Publisher
	mode  types.IdentityMode
	now   func() time.Time
	mux   *http.ServeMux
}

// New creates a Handler reading from snap and queueing demo reports on q,
// keyed with mode, and registers all routes.
func New(snap Snapshotter, q Publisher, mode types.IdentityMode) *Handler {
	h := &Handler{snap: snap, queue: q, mode: mode, now: time.Now, mux: http.NewServeMux()}

	h.mux.HandleFunc("/", h.dashboard)
	h.mux.HandleFunc("/api/clients", h.webClients)
	h.mux.HandleFunc("/api/test", h.addTestClient)
	h.mux.HandleFunc("/api/v1/clients", h.listClients)
	h.mux.HandleFunc("/api/v1/clients/", h.getClient) // subtree, extracts {index}
	h.mux.HandleFunc("/api/v1/summary", h.summary)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// dashboard serves GET / with the embedded page.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(dashboardHTML) //nolint:errcheck
}

// webClients returns GET /api/clients, the list the dashboard polls.
func (h *Handler) webClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, view.ExportAll(h.snap.Snapshot()))
}

// listClients returns GET /api/v1/clients.
func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, toClientResponses(h.snap.Snapshot()))
}

// getClient returns GET /api/v1/clients/{index}.
func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/clients/")
	if raw == "" {
		h.listClients(w, r)
		return
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	c, ok := h.snap.Snapshot().At(idx)
	if !ok {
		jsonErr(w, http.StatusNotFound, "client not found")
		return
	}
	jsonResp(w, http.StatusOK, toClientResponse(idx, c))
}

// summary returns GET /api/v1/summary.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s := h.snap.Snapshot()
	jsonResp(w, http.StatusOK, SummaryResponse{
		Summary:     s.Summary,
		GeneratedAt: s.GeneratedAt.UTC().Format(time.RFC3339),
	})
}

// snapshot returns GET /api/v1/snapshot.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.snap.Snapshot()))
}

// BuildSnapshot converts s to the payload of GET /api/v1/snapshot. The
// WebSocket stream sends the same payload.
func BuildSnapshot(s view.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Clients:     toClientResponses(s),
		Summary:     s.Summary,
		GeneratedAt: s.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// addTestClient handles POST /api/test by queueing the demo reporter.
func (h *Handler) addTestClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rep := DemoReport()
	id := types.Identity(rep, h.mode)
	h.queue.Publish(ingress.Item{Identity: id, Report: rep, ReceivedAt: h.now()})
	jsonResp(w, http.StatusOK, TestClientResponse{Queued: true, Identity: id})
}

// DemoReport is the reporter injected by POST /api/test.
func DemoReport() types.SystemReport {
	return types.SystemReport{
		NodeID:      "test-node-123",
		Hostname:    "test-host",
		IPAddress:   "192.168.1.100",
		CPUUsage:    "45.5%",
		MemoryUsage: "8.5/16 GB",
		DiskUsage:   "120.5 GB / 500.2 GB",
		Services: []types.Service{
			{Name: "nginx", Status: "running"},
			{Name: "postgres", Status: "stopped", NeedsUpdate: true},
		},
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

func toClientResponse(idx int, c view.Client) ClientResponse {
	return ClientResponse{
		WebClient:   view.Export(c),
		Index:       idx,
		Diagnostics: computeDiagnostics(c),
	}
}

func toClientResponses(s view.Snapshot) []ClientResponse {
	out := make([]ClientResponse, 0, len(s.Clients))
	for i, c := range s.Clients {
		out = append(out, toClientResponse(i, c))
	}
	return out
}
