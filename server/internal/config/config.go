package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/swarmreport/swarmreport/pkg/types"
)

// Default values for the sentinel configuration.
const (
	DefaultGRPCPort         = 50051
	DefaultHTTPPort         = 6969
	DefaultIngressCapacity  = 100
	DefaultDrainInterval    = 100 * time.Millisecond
	DefaultSweepInterval    = 5 * time.Second
	DefaultSilenceThreshold = 60 * time.Second
	DefaultStreamInterval   = 2 * time.Second
	DefaultTUIRefresh       = time.Second
)

// Config holds the sentinel-side configuration parsed from the `sentinel:`
// section of config.yaml.
type Config struct {
	Sentinel SentinelConfig `yaml:"sentinel"`
}

// SentinelConfig holds all sentinel settings.
type SentinelConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Ingress    IngressConfig    `yaml:"ingress"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Stream     StreamConfig     `yaml:"stream"`
	TUI        TUIConfig        `yaml:"tui"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds listener ports.
type ServerConfig struct {
	// GRPCPort is the port reporters send SystemReports to.
	GRPCPort int `yaml:"grpc_port"`

	// HTTPPort serves the dashboard, REST API, WebSocket stream and /metrics.
	HTTPPort int `yaml:"http_port"`
}

// IngressConfig controls the queue between the receiver and the aggregator.
type IngressConfig struct {
	// Capacity is the maximum number of buffered reports. When full, the
	// oldest buffered report is dropped.
	Capacity int `yaml:"capacity"`
}

// AggregatorConfig controls the aggregator's two cycles.
type AggregatorConfig struct {
	DrainInterval time.Duration `yaml:"drain_interval"`
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// SilenceThreshold is how long a reporter may stay silent before it is
	// evicted. Hot-reloadable.
	SilenceThreshold time.Duration `yaml:"silence_threshold"`

	// Identity selects how reporters are keyed: host_addr | node_id.
	Identity string `yaml:"identity"`
}

// IdentityMode returns the parsed identity mode. Validated by Load.
func (a AggregatorConfig) IdentityMode() types.IdentityMode {
	m, _ := types.ParseIdentityMode(a.Identity)
	return m
}

// StreamConfig controls the WebSocket hub.
type StreamConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// TUIConfig controls the terminal display.
type TUIConfig struct {
	Enabled         bool          `yaml:"enabled"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// File receives log output. When the TUI is enabled and File is empty,
	// logs are discarded so they do not corrupt the display.
	File string `yaml:"file"`
}

// SlogLevel returns the configured level. Validated by Load.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(l.Level))
	return lvl
}

// Load reads and parses the config file at path, returning the sentinel
// configuration. Missing fields are filled with defaults before validation.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sentinel config: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("sentinel config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("sentinel config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Sentinel: SentinelConfig{
			Server: ServerConfig{
				GRPCPort: DefaultGRPCPort,
				HTTPPort: DefaultHTTPPort,
			},
			Ingress: IngressConfig{Capacity: DefaultIngressCapacity},
			Aggregator: AggregatorConfig{
				DrainInterval:    DefaultDrainInterval,
				SweepInterval:    DefaultSweepInterval,
				SilenceThreshold: DefaultSilenceThreshold,
				Identity:         string(types.IdentityHostAddr),
			},
			Stream: StreamConfig{Interval: DefaultStreamInterval},
			TUI: TUIConfig{
				Enabled:         true,
				RefreshInterval: DefaultTUIRefresh,
			},
			Log: LogConfig{Level: "info"},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Sentinel
	if s.Server.GRPCPort <= 0 || s.Server.GRPCPort > 65535 {
		return fmt.Errorf("sentinel.server.grpc_port %d is out of range [1, 65535]", s.Server.GRPCPort)
	}
	if s.Server.HTTPPort <= 0 || s.Server.HTTPPort > 65535 {
		return fmt.Errorf("sentinel.server.http_port %d is out of range [1, 65535]", s.Server.HTTPPort)
	}
	if s.Server.GRPCPort == s.Server.HTTPPort {
		return fmt.Errorf("sentinel.server.grpc_port and http_port must differ (both %d)", s.Server.GRPCPort)
	}
	if s.Ingress.Capacity <= 0 {
		return fmt.Errorf("sentinel.ingress.capacity must be positive")
	}
	if s.Aggregator.DrainInterval <= 0 {
		return fmt.Errorf("sentinel.aggregator.drain_interval must be positive")
	}
	if s.Aggregator.SweepInterval <= 0 {
		return fmt.Errorf("sentinel.aggregator.sweep_interval must be positive")
	}
	if s.Aggregator.SilenceThreshold <= 0 {
		return fmt.Errorf("sentinel.aggregator.silence_threshold must be positive")
	}
	if _, err := types.ParseIdentityMode(s.Aggregator.Identity); err != nil {
		return fmt.Errorf("sentinel.aggregator.identity: %w", err)
	}
	if s.Stream.Interval <= 0 {
		return fmt.Errorf("sentinel.stream.interval must be positive")
	}
	if s.TUI.RefreshInterval <= 0 {
		return fmt.Errorf("sentinel.tui.refresh_interval must be positive")
	}
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("sentinel.log.level %q unknown: want debug|info|warn|error", s.Log.Level)
	}
	return nil
}
