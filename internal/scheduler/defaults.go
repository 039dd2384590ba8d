package scheduler

import "time"

const (
	// DefaultInstanceExpirationMs is how long a pooled instance stays
	// reusable before it is discarded on next dequeue rather than reused.
	DefaultInstanceExpirationMs = 540_000 // 9 minutes

	// DefaultRequestTimeoutMs bounds a single fetch RPC attempt.
	DefaultRequestTimeoutMs = 30_000

	// DefaultMaxRequestBodySizeBytes caps the inbound request body the
	// forwarder will drain before translating it to a wire request.
	DefaultMaxRequestBodySizeBytes = 2 * 1024 * 1024

	// maxForwardAttempts is how many runtime instances HandleRequest will
	// try before giving up on a single inbound request.
	maxForwardAttempts = 3

	// discoverTimeout bounds a single runtime's ID RPC during discovery.
	discoverTimeout = 5 * time.Second

	// probeTimeout bounds a single runtime's Load RPC during probing.
	probeTimeout = 5 * time.Second
)
