package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyw0ng95/schedproxy/pkg/common"
)

type fakeRuntimeClient struct {
	id          RuntimeId
	spawnCalls  int
	spawnErr    error
	spawnHandle WorkerHandle
}

func (f *fakeRuntimeClient) ID(context.Context) (RuntimeId, error) { return f.id, nil }
func (f *fakeRuntimeClient) Load(context.Context) (uint16, error)  { return 0, nil }
func (f *fakeRuntimeClient) SpawnWorker(context.Context, AppId, WorkerConfiguration, []byte) (WorkerHandle, error) {
	f.spawnCalls++
	if f.spawnErr != nil {
		return "", f.spawnErr
	}
	return f.spawnHandle, nil
}
func (f *fakeRuntimeClient) Fetch(context.Context, WorkerHandle, RequestObject) (ResponseObject, error) {
	return ResponseObject{}, nil
}

func testLogger() *common.Logger {
	return common.NewLogger(io.Discard, "test", common.ErrorLevel)
}

func TestAppState_GetInstance_ReusesFromQueue(t *testing.T) {
	a := newAppState("app1", nil, nil, testLogger())
	want := ReadyInstance{RuntimeID: "rt1", Handle: "h1", Client: &fakeRuntimeClient{id: "rt1"}, LastActive: time.Now()}
	a.PoolInstance(want)

	reg := NewRuntimeRegistry(nil, testLogger())
	cfg := &Config{InstanceExpirationMs: 60_000}
	got, err := a.GetInstance(context.Background(), cfg, reg)
	require.NoError(t, err)
	assert.Equal(t, want.RuntimeID, got.RuntimeID)
	assert.Equal(t, want.Handle, got.Handle)
}

func TestAppState_GetInstance_SkipsExpired(t *testing.T) {
	a := newAppState("app1", nil, nil, testLogger())
	stale := ReadyInstance{RuntimeID: "rt-stale", Handle: "h-stale", Client: &fakeRuntimeClient{}, LastActive: time.Now().Add(-time.Hour)}
	fresh := ReadyInstance{RuntimeID: "rt-fresh", Handle: "h-fresh", Client: &fakeRuntimeClient{}, LastActive: time.Now()}
	a.PoolInstance(stale)
	a.PoolInstance(fresh)

	reg := NewRuntimeRegistry(func(string) RuntimeClient { return &fakeRuntimeClient{id: "rt-spawned"} }, testLogger())
	cfg := &Config{InstanceExpirationMs: 1_000}
	got, err := a.GetInstance(context.Background(), cfg, reg)
	require.NoError(t, err)
	assert.Equal(t, WorkerHandle("h-fresh"), got.Handle)
}

func TestAppState_GetInstance_SpawnsWhenEmpty(t *testing.T) {
	a := newAppState("app1", nil, []byte("script"), testLogger())
	client := &fakeRuntimeClient{id: "rt1", spawnHandle: "new-handle"}
	reg := NewRuntimeRegistry(func(string) RuntimeClient { return client }, testLogger())
	reg.Discover(context.Background(), []string{"rt1:9000"})

	cfg := &Config{InstanceExpirationMs: 60_000}
	got, err := a.GetInstance(context.Background(), cfg, reg)
	require.NoError(t, err)
	assert.Equal(t, WorkerHandle("new-handle"), got.Handle)
	assert.Equal(t, 1, client.spawnCalls)
}

func TestAppState_GetInstance_NoAvailableInstance(t *testing.T) {
	a := newAppState("app1", nil, nil, testLogger())
	reg := NewRuntimeRegistry(nil, testLogger())
	cfg := &Config{InstanceExpirationMs: 60_000}
	_, err := a.GetInstance(context.Background(), cfg, reg)
	assert.True(t, errors.Is(err, ErrNoAvailableInstance))
}

func TestAppState_GetInstance_SpawnFailurePropagates(t *testing.T) {
	a := newAppState("app1", nil, nil, testLogger())
	boom := errors.New("boom")
	client := &fakeRuntimeClient{id: "rt1", spawnErr: boom}
	reg := NewRuntimeRegistry(func(string) RuntimeClient { return client }, testLogger())
	reg.Discover(context.Background(), []string{"rt1:9000"})

	cfg := &Config{InstanceExpirationMs: 60_000}
	_, err := a.GetInstance(context.Background(), cfg, reg)
	assert.ErrorIs(t, err, boom)
}
