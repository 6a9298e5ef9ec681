// Package config loads the sentinel configuration from the `sentinel:`
// section of config.yaml (the `reporter:` key is ignored by the sentinel).
//
// Config fields:
//   - Server.GRPCPort            : gRPC receiver port (default 50051)
//   - Server.HTTPPort            : REST API, dashboard, WebSocket and /metrics (default 6969)
//   - Ingress.Capacity           : ingress queue depth (default 100)
//   - Aggregator.DrainInterval   : how often queued reports are applied (default 100ms)
//   - Aggregator.SweepInterval   : how often silent reporters are evicted (default 5s)
//   - Aggregator.SilenceThreshold: silence after which a reporter is evicted (default 60s)
//   - Aggregator.Identity        : host_addr | node_id
//   - Stream.Interval            : WebSocket broadcast period (default 2s)
//   - TUI.Enabled, TUI.RefreshInterval: terminal display (default on, 1s)
//   - Log.Level, Log.File
//
// Load(path) applies defaults before unmarshalling, then validates. An empty
// path yields the defaults. Watch(ctx, path, onChange) reloads on change.
package config
