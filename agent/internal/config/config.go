package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvSentinelAddr overrides reporter.server_endpoint when set.
const EnvSentinelAddr = "SWARM_SENTINEL_ADDR"

// Default values applied when fields are absent from the config file.
const (
	DefaultServerEndpoint     = "localhost:50051"
	DefaultReportInterval     = 500 * time.Millisecond
	DefaultBufferSize         = 100
	DefaultSwarmQueryInterval = 10 * time.Second
)

// Config is the reporter-side configuration parsed from config.yaml.
type Config struct {
	Reporter ReporterConfig `yaml:"reporter"`
}

// ReporterConfig holds all reporter settings.
type ReporterConfig struct {
	// ServerEndpoint is the gRPC address of the sentinel (host:port).
	ServerEndpoint string `yaml:"server_endpoint"`

	// ReportInterval controls how often a SystemReport is collected and sent.
	ReportInterval time.Duration `yaml:"report_interval"`

	// BufferSize is the maximum number of reports held in memory while the
	// sentinel is unreachable. The oldest is dropped when full.
	BufferSize int `yaml:"buffer_size"`

	// StateFile stores this node's persistent node_id token.
	StateFile string `yaml:"state_file"`

	// SwarmQueryInterval controls how often the reporter asks the sentinel
	// for the swarm view and logs it. Zero disables the query.
	SwarmQueryInterval time.Duration `yaml:"swarm_query_interval"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`
}

// SlogLevel returns the configured level. Validated by Load.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	_ = lvl.UnmarshalText([]byte(l.Level))
	return lvl
}

// Load reads the config file at path (optional), applies the environment
// override and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reporter config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("reporter config: parse yaml: %w", err)
		}
	}

	if v := os.Getenv(EnvSentinelAddr); v != "" {
		cfg.Reporter.ServerEndpoint = v
	}
	cfg.Reporter.ServerEndpoint = normalizeEndpoint(cfg.Reporter.ServerEndpoint)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("reporter config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Reporter: ReporterConfig{
			ServerEndpoint:     DefaultServerEndpoint,
			ReportInterval:     DefaultReportInterval,
			BufferSize:         DefaultBufferSize,
			StateFile:          defaultStateFile(),
			SwarmQueryInterval: DefaultSwarmQueryInterval,
			Log:                LogConfig{Level: "info"},
		},
	}
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "swarmreport", "node_id")
}

// normalizeEndpoint turns "http://host:port" into the "host:port" form
// gRPC dials.
func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	for _, p := range []string{"http://", "https://"} {
		ep = strings.TrimPrefix(ep, p)
	}
	return strings.TrimSuffix(ep, "/")
}

// validate checks required fields and ranges.
func validate(cfg *Config) error {
	r := cfg.Reporter
	if r.ServerEndpoint == "" {
		return fmt.Errorf("reporter.server_endpoint is required")
	}
	if r.ReportInterval <= 0 {
		return fmt.Errorf("reporter.report_interval must be positive")
	}
	if r.BufferSize <= 0 {
		return fmt.Errorf("reporter.buffer_size must be positive")
	}
	if r.SwarmQueryInterval < 0 {
		return fmt.Errorf("reporter.swarm_query_interval must not be negative")
	}
	switch strings.ToLower(r.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("reporter.log.level %q unknown: want debug|info|warn|error", r.Log.Level)
	}
	return nil
}
