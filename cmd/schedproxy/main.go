// Package main is the schedproxy binary: it bootstraps a Scheduler, runs its
// reconciler on a timer, and serves inbound HTTP requests by forwarding them
// to the scheduler.
package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyw0ng95/schedproxy/internal/rpcclient"
	"github.com/cyw0ng95/schedproxy/internal/scheduler"
	"github.com/cyw0ng95/schedproxy/pkg/common"
)

func main() {
	configPath := flag.String("config", "", "path to the bootstrap config file")
	flag.Parse()

	logger := common.NewLogger(os.Stdout, "schedproxy", common.InfoLevel)

	bootCfg := &common.Config{}
	if *configPath != "" {
		loaded, err := common.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("loading bootstrap config %q: %v", *configPath, err)
		}
		bootCfg = loaded
	} else {
		bootCfg.ApplyDefaults()
	}
	logger.SetLevel(common.ParseLogLevel(bootCfg.Logging.Level))

	sched := scheduler.New(rpcclient.Dial, logger.With("component", "scheduler"))
	reconciler := scheduler.NewReconciler(sched, logger.With("component", "reconciler"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reconciler.Refresh(ctx, bootCfg.ConfigURL, bootCfg.ClusterAppend); err != nil {
		logger.Error("initial reconciliation failed: %v", err)
	}

	interval := time.Duration(bootCfg.ReconcileIntervalMs) * time.Millisecond
	go runReconcileLoop(ctx, reconciler, bootCfg.ConfigURL, bootCfg.ClusterAppend, interval, logger)

	srv := &http.Server{
		Addr:    bootCfg.ListenAddr,
		Handler: newFrontend(sched, logger),
	}

	go func() {
		logger.Info("listening on %s", bootCfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), common.DefaultShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown: %v", err)
	}
}

func runReconcileLoop(ctx context.Context, rc *scheduler.Reconciler, configURL string, clusterAppend []string, interval time.Duration, logger *common.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := rc.Refresh(ctx, configURL, clusterAppend); err != nil {
				logger.Error("reconciliation failed: %v", err)
			}
		}
	}
}

// frontend adapts net/http to Scheduler.HandleRequest, translating a
// SchedError into the HTTP status/reason-phrase response the client sees.
type frontend struct {
	sched  *scheduler.Scheduler
	logger *common.Logger
}

func newFrontend(sched *scheduler.Scheduler, logger *common.Logger) *frontend {
	return &frontend{sched: sched, logger: logger}
}

func (f *frontend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := f.sched.HandleRequest(r.Context(), r)
	if err != nil {
		status, reason := scheduler.StatusForError(err)
		f.logger.Debug("request failed: %v", err)
		http.Error(w, reason, status)
		return
	}

	for k, values := range resp.Headers {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(int(resp.Status))
	switch resp.Body.Kind {
	case scheduler.BodyText:
		io.WriteString(w, resp.Body.Text)
	case scheduler.BodyBinary:
		w.Write(resp.Body.Binary)
	}
}
