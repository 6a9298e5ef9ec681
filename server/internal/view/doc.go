// Package view projects the store into read-only snapshots for the TUI, the
// REST API and the WebSocket stream.
//
// Every projection starts from one Store.Ordered call, so a snapshot's list,
// lookup and summary come from a single consistent read. Freshness is
// computed against the clock at snapshot time, not at ingestion. The store
// lock is released before any classification or formatting happens.
package view
