// Package api implements the sentinel's HTTP REST API and dashboard.
//
// New(snap, queue, mode) returns an http.Handler that serves:
//
//	GET  /                        embedded HTML dashboard
//	GET  /api/clients             all reporters in the dashboard export format
//	GET  /api/v1/clients          same list, with per-client diagnostics
//	GET  /api/v1/clients/{index}  one reporter by position; 404 when out of range
//	GET  /api/v1/summary          freshness counts and payload aggregates
//	GET  /api/v1/snapshot         clients + summary + generated_at, from one read
//	POST /api/test                queues a demo reporter (test-host, 192.168.1.100)
//
// Every list, count and lookup in a single response comes from one
// view.Snapshot, so clients and summary always agree. The demo reporter goes
// through the ingress queue like any gRPC report; the handler never writes
// state itself.
//
// JSON endpoints respond with Content-Type: application/json and return 405
// for the wrong method. No external HTTP framework is used.
package api
