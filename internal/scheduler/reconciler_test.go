package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfigYAML = `
runtime_cluster: []
apps:
  - id: app1
    routes:
      - domain: example.com
        path_prefix: /
    script_url: %s
    worker_cfg: {"mem_mb": 64}
`

func TestReconciler_RefreshInstallsNewConfig(t *testing.T) {
	scriptSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("console.log('hi')"))
	}))
	defer scriptSrv.Close()

	configSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fmt.Sprintf(sampleConfigYAML, scriptSrv.URL)))
	}))
	defer configSrv.Close()

	s := New(nil, testLogger())
	rc := NewReconciler(s, testLogger())

	err := rc.Refresh(context.Background(), configSrv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.AppCount())

	id, err := s.routes.Load().Resolve("example.com", "/")
	require.NoError(t, err)
	assert.Equal(t, AppId("app1"), id)
}

func TestReconciler_RefreshUnchangedIsNoop(t *testing.T) {
	scriptSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("script"))
	}))
	defer scriptSrv.Close()

	body := fmt.Sprintf(sampleConfigYAML, scriptSrv.URL)
	configSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer configSrv.Close()

	s := New(nil, testLogger())
	rc := NewReconciler(s, testLogger())

	require.NoError(t, rc.Refresh(context.Background(), configSrv.URL, nil))
	before := s.apps["app1"]

	require.NoError(t, rc.Refresh(context.Background(), configSrv.URL, nil))
	after := s.apps["app1"]
	assert.Same(t, before, after)
}

func TestReconciler_RefreshFetchFailure(t *testing.T) {
	configSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer configSrv.Close()

	s := New(nil, testLogger())
	rc := NewReconciler(s, testLogger())
	err := rc.Refresh(context.Background(), configSrv.URL, nil)
	assert.Error(t, err)
}

func TestReconciler_RefreshMergesClusterAppend(t *testing.T) {
	configSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("runtime_cluster: [\"a:1\"]\napps: []\n"))
	}))
	defer configSrv.Close()

	s := New(nil, testLogger())
	rc := NewReconciler(s, testLogger())
	require.NoError(t, rc.Refresh(context.Background(), configSrv.URL, []string{"b:2"}))

	cfg := s.Config()
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.RuntimeCluster)
}
