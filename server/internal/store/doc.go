// Package store owns the sentinel's canonical in-memory state: the latest
// report per reporter identity plus the first-seen display order.
//
// Store guards the map and the order slice with one lock so readers always
// see them agree. Aggregator is the only writer: it drains the ingress queue
// on one timer and sweeps silent reporters on another. Nothing is persisted;
// state is rebuilt from the next round of reports after a restart.
package store
