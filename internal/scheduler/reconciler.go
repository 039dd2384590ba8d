package scheduler

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/cyw0ng95/schedproxy/pkg/common"
)

// MaxConfigSize caps the size of a config or script document the reconciler
// will accept, mirroring the request forwarder's own body-size discipline.
const MaxConfigSize = 10 * 1024 * 1024

// Reconciler periodically fetches a Config document, installs it if it
// changed, and populates apps/routes/runtimes from it.
type Reconciler struct {
	sched      *Scheduler
	httpClient *resty.Client
	logger     *common.Logger
}

// NewReconciler builds a Reconciler bound to sched, using its own resty
// client for config and script fetches (kept separate from the per-runtime
// RPC clients dialed by the registry).
func NewReconciler(sched *Scheduler, logger *common.Logger) *Reconciler {
	client := resty.New()
	client.JSONMarshal = jsonMarshalFunc
	client.JSONUnmarshal = jsonUnmarshalFunc
	client.SetTimeout(common.DefaultConfigFetchTimeout)
	return &Reconciler{sched: sched, httpClient: client, logger: logger}
}

// Refresh fetches configURL, compares it against the currently installed
// Config, and if it changed (after merging clusterAppend into the runtime
// cluster list), installs it and rebuilds apps, routes, and runtimes from
// it. A no-op refresh (unchanged config) returns nil with no side effects.
func (rc *Reconciler) Refresh(ctx context.Context, configURL string, clusterAppend []string) error {
	resp, err := rc.httpClient.R().SetContext(ctx).Get(configURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchConfig, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrFetchConfig, resp.StatusCode())
	}
	if len(resp.Body()) > MaxConfigSize {
		return fmt.Errorf("%w: document exceeds %d bytes", ErrFetchConfig, MaxConfigSize)
	}

	var cfg Config
	if err := yaml.Unmarshal(resp.Body(), &cfg); err != nil {
		return fmt.Errorf("%w: parse: %v", ErrFetchConfig, err)
	}
	cfg.ApplyDefaults()
	cfg.RuntimeCluster = append(append([]string{}, cfg.RuntimeCluster...), clusterAppend...)

	current := rc.sched.config.Load()
	if current != nil && reflect.DeepEqual(*current, cfg) {
		return nil
	}

	rc.sched.config.Store(&cfg)
	rc.populate(ctx, &cfg)
	rc.sched.discoverAndProbe(ctx, cfg.RuntimeCluster)
	return nil
}

// populate installs new apps (fetching their scripts concurrently), removes
// apps no longer present in cfg, and rebuilds the route table. Existing
// apps are left untouched so their pooled instances survive a reconcile
// that only adds or removes unrelated apps.
func (rc *Reconciler) populate(ctx context.Context, cfg *Config) {
	rc.sched.appsMu.RLock()
	existing := make(map[AppId]struct{}, len(rc.sched.apps))
	for id := range rc.sched.apps {
		existing[id] = struct{}{}
	}
	rc.sched.appsMu.RUnlock()

	byID := make(map[AppId]*AppConfig, len(cfg.Apps))
	for i := range cfg.Apps {
		byID[cfg.Apps[i].ID] = &cfg.Apps[i]
	}

	var newIDs []AppId
	for id := range byID {
		if _, ok := existing[id]; !ok {
			newIDs = append(newIDs, id)
		}
	}
	sort.Slice(newIDs, func(i, j int) bool { return newIDs[i] < newIDs[j] })

	type fetched struct {
		id     AppId
		script []byte
		ok     bool
	}
	results := make([]fetched, len(newIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range newIDs {
		i, id := i, id
		g.Go(func() error {
			appCfg := byID[id]
			script, err := rc.fetchScript(gctx, appCfg.ScriptURL)
			if err != nil {
				rc.logger.Info("reconcile: script fetch failed for app %s (%s): %v", id, appCfg.ScriptURL, err)
				return nil
			}
			results[i] = fetched{id: id, script: script, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	rc.sched.appsMu.Lock()
	for _, f := range results {
		if !f.ok {
			continue
		}
		appCfg := byID[f.id]
		rc.sched.apps[f.id] = newAppState(f.id, appCfg.WorkerCfg, f.script, rc.logger.With("app_id", string(f.id)))
	}
	for id := range rc.sched.apps {
		if _, ok := byID[id]; !ok {
			delete(rc.sched.apps, id)
			rc.logger.Info("reconcile: removed app %s", id)
		}
	}
	rc.sched.appsMu.Unlock()

	rc.sched.routes.Store(buildRouteTable(cfg.Apps))
}

func (rc *Reconciler) fetchScript(ctx context.Context, url string) ([]byte, error) {
	resp, err := rc.httpClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}
	if len(resp.Body()) > MaxConfigSize {
		return nil, fmt.Errorf("script exceeds %d bytes", MaxConfigSize)
	}
	return resp.Body(), nil
}

// discoverAndProbe refreshes the runtime registry against the cluster list
// from a just-installed config. Only invoked when the config actually
// changed, so an unchanged reconcile tick touches no runtime connections.
func (s *Scheduler) discoverAndProbe(ctx context.Context, cluster []string) {
	s.registry.Discover(ctx, cluster)
	s.registry.ProbeLoad(ctx)
}
