package common

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the process bootstrap configuration for cmd/schedproxy: where
// to listen, where to fetch the hot scheduler Config from, and how the
// process logs. It is loaded once at startup and is distinct from the
// scheduler's own hot-reloaded Config (internal/scheduler.Config), which
// is re-fetched from ConfigURL on every reconciliation tick.
type Config struct {
	// ListenAddr is the address the HTTP frontend binds to (e.g. ":8080").
	ListenAddr string `json:"listen_addr,omitempty"`
	// ConfigURL is where the scheduler's hot Config document is fetched from.
	ConfigURL string `json:"config_url"`
	// ClusterAppend is a floor set of runtime addresses merged into
	// runtime_cluster on every reconciliation, regardless of what the
	// fetched Config says.
	ClusterAppend []string `json:"cluster_append,omitempty"`
	// ReconcileIntervalMs is the period between reconciliation ticks.
	ReconcileIntervalMs int `json:"reconcile_interval_ms,omitempty"`
	// Logging holds logging configuration.
	Logging LoggingConfig `json:"logging,omitempty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `json:"level,omitempty"`
}

// ApplyDefaults fills zero-valued fields with package defaults. Exported so
// a caller that never loads a config file (relying entirely on flags/env)
// can still start from a sane baseline.
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.ReconcileIntervalMs == 0 {
		c.ReconcileIntervalMs = int(DefaultReconcileInterval.Milliseconds())
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// ParseLogLevel maps a logging.Level string to a LogLevel, defaulting to
// InfoLevel for an empty or unrecognized value.
func ParseLogLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LoadConfig reads and decodes the bootstrap configuration from filename,
// applying defaults for anything left unset.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("common: read config %q: %w", filename, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("common: parse config %q: %w", filename, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}
