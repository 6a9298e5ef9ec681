// Package tui is the sentinel's terminal display, a bubbletea program that
// redraws from a fresh snapshot on every tick.
//
// Layout: clients list (left, top), overview counts (left, bottom), details of
// the selected client with a CPU gauge (right, top), its services (right,
// bottom) and a status bar. Freshness colors come from the snapshot's
// classification: recent is green ●, normal is yellow ◐, stale is red ○.
//
// Keys: q/esc/ctrl+c quit, ↑↓/jk move the selection, r/f5 refresh now.
package tui
