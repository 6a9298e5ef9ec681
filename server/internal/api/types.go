package api

import "github.com/swarmreport/swarmreport/server/internal/view"

// ClientResponse is one reporter in GET /api/v1/clients and
// GET /api/v1/clients/{index}.
type ClientResponse struct {
	view.WebClient
	Index       int              `json:"index"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
}

// SummaryResponse is the payload for GET /api/v1/summary.
type SummaryResponse struct {
	view.Summary
	GeneratedAt string `json:"generated_at"` // RFC3339
}

// SnapshotResponse is the payload for GET /api/v1/snapshot.
type SnapshotResponse struct {
	Clients     []ClientResponse `json:"clients"`
	Summary     view.Summary     `json:"summary"`
	GeneratedAt string           `json:"generated_at"` // RFC3339
}

// TestClientResponse acknowledges POST /api/test.
type TestClientResponse struct {
	Queued   bool   `json:"queued"`
	Identity string `json:"identity"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
