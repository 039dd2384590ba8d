package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/cyw0ng95/schedproxy/pkg/common"
)

// Scheduler owns the shared state that a request walks through in order:
// the current Config and route table (each atomically swapped by the
// reconciler), the app table (read-locked for the duration of a request,
// write-locked only to add or remove an app), and the runtime registry.
type Scheduler struct {
	config atomic.Pointer[Config]
	routes atomic.Pointer[RouteTable]

	appsMu sync.RWMutex
	apps   map[AppId]*AppState

	registry *RuntimeRegistry
	logger   *common.Logger
}

// New builds a Scheduler with an empty config and no known apps or
// runtimes; a reconciler must run at least once before HandleRequest will
// resolve anything.
func New(dial DialFunc, logger *common.Logger) *Scheduler {
	s := &Scheduler{
		apps:     make(map[AppId]*AppState),
		registry: NewRuntimeRegistry(dial, logger),
		logger:   logger,
	}
	empty := Config{}
	empty.ApplyDefaults()
	s.config.Store(&empty)
	s.routes.Store(newRouteTable())
	return s
}

// Config returns the currently installed configuration snapshot.
func (s *Scheduler) Config() *Config { return s.config.Load() }

// RuntimeSnapshot returns the current load of every known runtime, for
// diagnostics endpoints.
func (s *Scheduler) RuntimeSnapshot() map[RuntimeId]uint16 { return s.registry.Snapshot() }

// AppCount returns the number of apps currently installed, for diagnostics.
func (s *Scheduler) AppCount() int {
	s.appsMu.RLock()
	defer s.appsMu.RUnlock()
	return len(s.apps)
}
