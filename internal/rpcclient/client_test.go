package rpcclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyw0ng95/schedproxy/internal/scheduler"
)

func TestClient_ID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"rt-1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	id, err := c.ID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scheduler.RuntimeId("rt-1"), id)
}

func TestClient_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"load":42}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	load, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(42), load)
}

func TestClient_SpawnWorker_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"handle":"w-1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	handle, err := c.SpawnWorker(context.Background(), "app1", nil, []byte("script"))
	require.NoError(t, err)
	assert.Equal(t, scheduler.WorkerHandle("w-1"), handle)
}

func TestClient_SpawnWorker_AppError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"kind":"other","message":"boom"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.SpawnWorker(context.Background(), "app1", nil, nil)
	require.Error(t, err)
	var appErr *scheduler.RuntimeAppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, scheduler.GenericErrorOther, appErr.Kind)
}

func TestClient_Fetch_NoSuchWorker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"kind":"no_such_worker","message":"expired"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Fetch(context.Background(), "w-1", scheduler.RequestObject{Method: "GET", URL: "https://example.com/"})
	var appErr *scheduler.RuntimeAppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, scheduler.GenericErrorNoSuchWorker, appErr.Kind)
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"status":200,"headers":{},"body":{"text":"hi"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Fetch(context.Background(), "w-1", scheduler.RequestObject{Method: "GET", URL: "https://example.com/"})
	require.NoError(t, err)
	assert.Equal(t, uint16(200), resp.Status)
	assert.Equal(t, scheduler.BodyText, resp.Body.Kind)
	assert.Equal(t, "hi", resp.Body.Text)
}

func TestClient_TransportError(t *testing.T) {
	c := New("127.0.0.1:1")
	_, err := c.ID(context.Background())
	assert.Error(t, err)
}
