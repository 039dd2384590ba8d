package scheduler

import "context"

// RuntimeClient is the scheduler's view of a single runtime process: four
// RPCs used for discovery, load probing, worker spawn, and request dispatch.
// A transport-level failure (dial/timeout/connection reset) is returned as
// a plain error; an application-level failure from an RPC that did reach
// the runtime is returned as a *RuntimeAppError. The distinction drives the
// forwarder's retry behaviour, so implementations must preserve it rather
// than flattening everything into a plain error.
type RuntimeClient interface {
	// ID returns the runtime's stable identity.
	ID(ctx context.Context) (RuntimeId, error)

	// Load returns the runtime's current reported load, a dimensionless
	// figure compared only between runtimes of the same cluster.
	Load(ctx context.Context) (uint16, error)

	// SpawnWorker asks the runtime to instantiate app with the given
	// configuration and script, returning a handle to address it by.
	SpawnWorker(ctx context.Context, app AppId, cfg WorkerConfiguration, script []byte) (WorkerHandle, error)

	// Fetch dispatches req to the worker identified by handle and returns
	// its response.
	Fetch(ctx context.Context, handle WorkerHandle, req RequestObject) (ResponseObject, error)
}

// DialFunc constructs a RuntimeClient for a runtime's network address. It is
// injected by the binary that wires the scheduler together so this package
// never has to import a transport library directly.
type DialFunc func(addr string) RuntimeClient
