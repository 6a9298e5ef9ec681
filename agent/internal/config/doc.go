// Package config loads and watches the reporter configuration, the
// `reporter:` section of config.yaml.
//
// ReporterConfig fields: server_endpoint (default localhost:50051),
// report_interval (500ms), buffer_size (100), state_file (node token
// location, default under the user config dir), swarm_query_interval (10s,
// 0 disables) and log.level. The SWARM_SENTINEL_ADDR environment variable
// overrides server_endpoint; an http:// or https:// prefix is stripped.
//
// Load(path) applies defaults, then the file (if any), then the environment,
// then validates. Watch(ctx, path, onChange) reloads on change; the reporter
// applies a new report_interval without restarting.
package config
