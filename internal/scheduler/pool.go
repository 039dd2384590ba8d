package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/cyw0ng95/schedproxy/pkg/common"
)

// ReadyInstance is a worker ready to accept another request: a handle on a
// specific runtime, plus the client used to reach it.
type ReadyInstance struct {
	RuntimeID  RuntimeId
	Handle     WorkerHandle
	Client     RuntimeClient
	LastActive time.Time
}

func (r ReadyInstance) expired(expiration time.Duration) bool {
	return time.Since(r.LastActive) > expiration
}

// AppState holds one app's script, spawn configuration, and its FIFO queue
// of ready instances. It is looked up by AppId and read-locked by the
// forwarder for the duration of a request so the reconciler can't delete it
// out from under an in-flight call.
type AppState struct {
	ID        AppId
	WorkerCfg WorkerConfiguration
	Script    []byte

	logger *common.Logger

	mu    sync.Mutex
	ready []ReadyInstance
}

func newAppState(id AppId, cfg WorkerConfiguration, script []byte, logger *common.Logger) *AppState {
	return &AppState{ID: id, WorkerCfg: cfg, Script: script, logger: logger}
}

// PoolInstance returns an instance to the ready queue after a successful
// fetch, so the next request for this app can reuse it.
func (a *AppState) PoolInstance(inst ReadyInstance) {
	a.mu.Lock()
	a.ready = append(a.ready, inst)
	a.mu.Unlock()
}

// GetInstance dequeues the oldest ready instance that hasn't expired,
// discarding any expired ones ahead of it. If the queue is drained without
// finding a usable instance, it spawns a new worker on the least-loaded
// runtime in the registry. Returns ErrNoAvailableInstance if the registry is
// empty.
func (a *AppState) GetInstance(ctx context.Context, cfg *Config, registry *RuntimeRegistry) (ReadyInstance, error) {
	expiration := time.Duration(cfg.InstanceExpirationMs) * time.Millisecond

	a.mu.Lock()
	for len(a.ready) > 0 {
		inst := a.ready[0]
		a.ready = a.ready[1:]
		if !inst.expired(expiration) {
			a.mu.Unlock()
			inst.LastActive = time.Now()
			return inst, nil
		}
	}
	a.mu.Unlock()

	rtID, client, ok := registry.LeastLoaded()
	if !ok {
		return ReadyInstance{}, ErrNoAvailableInstance
	}

	a.logger.Info("spawning worker for app %s on runtime %s", a.ID, rtID)
	handle, err := client.SpawnWorker(ctx, a.ID, a.WorkerCfg, a.Script)
	if err != nil {
		return ReadyInstance{}, err
	}

	return ReadyInstance{RuntimeID: rtID, Handle: handle, Client: client, LastActive: time.Now()}, nil
}
