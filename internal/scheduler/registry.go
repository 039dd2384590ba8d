package scheduler

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cyw0ng95/schedproxy/pkg/common"
)

// runtimeState tracks a single runtime's client and most recently probed
// load. Load is stored atomically so ProbeLoad's writer and LeastLoaded's
// reader never need the registry's own lock.
type runtimeState struct {
	client RuntimeClient
	load   atomic.Uint32
}

func (s *runtimeState) getLoad() uint16   { return uint16(s.load.Load()) }
func (s *runtimeState) setLoad(v uint16)  { s.load.Store(uint32(v)) }

// RuntimeRegistry tracks the runtimes currently known to the scheduler,
// keyed by RuntimeId rather than network address. Discover adds newly seen
// runtimes; ProbeLoad refreshes their load and drops any that no longer
// answer; LeastLoaded picks a spawn target.
type RuntimeRegistry struct {
	dial   DialFunc
	logger *common.Logger

	mu      sync.RWMutex
	clients map[RuntimeId]*runtimeState
}

func NewRuntimeRegistry(dial DialFunc, logger *common.Logger) *RuntimeRegistry {
	return &RuntimeRegistry{dial: dial, logger: logger, clients: make(map[RuntimeId]*runtimeState)}
}

// Discover dials every address concurrently, fetches its ID, and adds any
// runtime not already known. Addresses that fail to answer are logged and
// skipped, not retried here.
func (r *RuntimeRegistry) Discover(ctx context.Context, addrs []string) {
	type found struct {
		id     RuntimeId
		client RuntimeClient
	}
	results := make([]*found, len(addrs))

	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			dctx, cancel := context.WithTimeout(ctx, discoverTimeout)
			defer cancel()

			client := r.dial(addr)
			id, err := client.ID(dctx)
			if err != nil {
				r.logger.Info("discover: runtime %s unreachable: %v", addr, err)
				return
			}
			results[i] = &found{id: id, client: client}
		}(i, addr)
	}
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range results {
		if f == nil {
			continue
		}
		if _, exists := r.clients[f.id]; exists {
			continue
		}
		st := &runtimeState{client: f.client}
		r.clients[f.id] = st
		r.logger.Info("discover: added runtime %s", f.id)
	}
}

// ProbeLoad refreshes the load of every known runtime concurrently. A
// runtime that fails to answer is dropped from the registry entirely.
// Instances already pooled against it stay in their apps' ready queues; a
// Fetch through one of them that fails at the transport level is retried by
// the forwarder on a fresh instance.
func (r *RuntimeRegistry) ProbeLoad(ctx context.Context) {
	r.mu.RLock()
	type entry struct {
		id    RuntimeId
		state *runtimeState
	}
	entries := make([]entry, 0, len(r.clients))
	for id, st := range r.clients {
		entries = append(entries, entry{id, st})
	}
	r.mu.RUnlock()

	var mu sync.Mutex
	var toDrop []RuntimeId
	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(e entry) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			load, err := e.state.client.Load(pctx)
			if err != nil {
				mu.Lock()
				toDrop = append(toDrop, e.id)
				mu.Unlock()
				return
			}
			e.state.setLoad(load)
		}(e)
	}
	wg.Wait()

	if len(toDrop) == 0 {
		return
	}
	r.mu.Lock()
	for _, id := range toDrop {
		delete(r.clients, id)
		r.logger.Info("probe: dropped unreachable runtime %s", id)
	}
	r.mu.Unlock()
}

// LeastLoaded returns the runtime with the lowest last-probed load. Ties are
// broken by RuntimeId so the choice is deterministic across calls even
// though map iteration order isn't.
func (r *RuntimeRegistry) LeastLoaded() (RuntimeId, RuntimeClient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.clients) == 0 {
		return "", nil, false
	}
	ids := make([]RuntimeId, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	best := ids[0]
	bestState := r.clients[best]
	for _, id := range ids[1:] {
		st := r.clients[id]
		if st.getLoad() < bestState.getLoad() {
			best, bestState = id, st
		}
	}
	return best, bestState.client, true
}

// Remove drops a runtime from the registry, typically after a transport
// failure talking to it.
func (r *RuntimeRegistry) Remove(id RuntimeId) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

// Snapshot returns the current load of every known runtime, for diagnostics.
func (r *RuntimeRegistry) Snapshot() map[RuntimeId]uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[RuntimeId]uint16, len(r.clients))
	for id, st := range r.clients {
		out[id] = st.getLoad()
	}
	return out
}
