package common

import "time"

// Process bootstrap defaults. These govern cmd/schedproxy itself, not the
// hot scheduler Config fetched from config_url at runtime (see
// internal/scheduler.DefaultInstanceExpirationMs and friends for that).
const (
	// DefaultListenAddr is the address the HTTP frontend adapter binds to.
	DefaultListenAddr = ":8080"

	// DefaultReconcileInterval is how often the reconciler ticks.
	DefaultReconcileInterval = 15 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultConfigFetchTimeout bounds a single config/script HTTP GET.
	DefaultConfigFetchTimeout = 10 * time.Second
)
