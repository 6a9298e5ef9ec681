// Package ws implements the sentinel's live WebSocket stream.
//
// Hub keeps the set of connected browsers and pushes the current swarm
// snapshot to each of them every interval (stream.interval, default 2s), and
// once immediately on connect so a new page renders without waiting a tick.
//
// Messages have the shape
//
//	{"event": "snapshot", "data": { /* GET /api/v1/snapshot payload */ }}
//
// A ?status=recent|normal|stale query narrows the client list for that
// connection; the summary always covers every reporter. A subscriber whose
// queue fills up is disconnected. The hub is mounted at /ws/stream.
package ws
