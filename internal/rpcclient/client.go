// Package rpcclient is the resty-backed RuntimeClient implementation used to
// reach runtime processes over HTTP+JSON: a shared resty.Client, per-call
// context deadlines, and GenericError payloads translated into typed errors
// instead of left as opaque status codes.
package rpcclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cyw0ng95/schedproxy/internal/scheduler"
	"github.com/cyw0ng95/schedproxy/pkg/jsonutil"
)

// defaultClientTimeout is a fallback only; every call is also bounded by the
// context deadline the caller attaches, which resty honours ahead of this.
const defaultClientTimeout = 60 * time.Second

// Client is a RuntimeClient reaching a single runtime over HTTP.
type Client struct {
	http *resty.Client
	addr string
}

// New builds a Client dialing addr. addr may be a bare host:port (assumed
// plaintext HTTP, since this is the internal cluster-facing transport) or a
// full URL with an explicit scheme.
func New(addr string) *Client {
	client := resty.New().
		SetBaseURL(normalizeBase(addr)).
		SetTimeout(defaultClientTimeout)
	client.JSONMarshal = jsonutil.Marshal
	client.JSONUnmarshal = jsonutil.Unmarshal
	return &Client{http: client, addr: addr}
}

// Dial satisfies scheduler.DialFunc.
func Dial(addr string) scheduler.RuntimeClient { return New(addr) }

func normalizeBase(addr string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	return "http://" + addr
}

type idResponse struct {
	ID string `json:"id"`
}

func (c *Client) ID(ctx context.Context) (scheduler.RuntimeId, error) {
	var out idResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/rpc/id")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("rpcclient: id: runtime %s returned status %d", c.addr, resp.StatusCode())
	}
	return scheduler.RuntimeId(out.ID), nil
}

type loadResponse struct {
	Load uint16 `json:"load"`
}

func (c *Client) Load(ctx context.Context) (uint16, error) {
	var out loadResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/rpc/load")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("rpcclient: load: runtime %s returned status %d", c.addr, resp.StatusCode())
	}
	return out.Load, nil
}

type wireGenericError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func decodeGenericError(e *wireGenericError) error {
	kind := scheduler.GenericErrorOther
	if e.Kind == "no_such_worker" {
		kind = scheduler.GenericErrorNoSuchWorker
	}
	return &scheduler.RuntimeAppError{Kind: kind, Message: e.Message}
}

type spawnRequest struct {
	AppID     string                        `json:"app_id"`
	WorkerCfg scheduler.WorkerConfiguration `json:"worker_cfg"`
	Script    []byte                        `json:"script"`
}

type spawnResponse struct {
	Handle *string            `json:"handle,omitempty"`
	Error  *wireGenericError  `json:"error,omitempty"`
}

func (c *Client) SpawnWorker(ctx context.Context, app scheduler.AppId, cfg scheduler.WorkerConfiguration, script []byte) (scheduler.WorkerHandle, error) {
	var out spawnResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(spawnRequest{AppID: string(app), WorkerCfg: cfg, Script: script}).
		SetResult(&out).
		Post("/rpc/spawn_worker")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("rpcclient: spawn_worker: runtime %s returned status %d", c.addr, resp.StatusCode())
	}
	if out.Error != nil {
		return "", decodeGenericError(out.Error)
	}
	if out.Handle == nil {
		return "", fmt.Errorf("rpcclient: spawn_worker: runtime %s returned an empty response", c.addr)
	}
	return scheduler.WorkerHandle(*out.Handle), nil
}

type fetchRequest struct {
	Handle  string                    `json:"handle"`
	Request scheduler.RequestObject   `json:"request"`
}

type fetchResponse struct {
	Response *scheduler.ResponseObject `json:"response,omitempty"`
	Error    *wireGenericError         `json:"error,omitempty"`
}

func (c *Client) Fetch(ctx context.Context, handle scheduler.WorkerHandle, req scheduler.RequestObject) (scheduler.ResponseObject, error) {
	var out fetchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(fetchRequest{Handle: string(handle), Request: req}).
		SetResult(&out).
		Post("/rpc/fetch")
	if err != nil {
		return scheduler.ResponseObject{}, err
	}
	if resp.IsError() {
		return scheduler.ResponseObject{}, fmt.Errorf("rpcclient: fetch: runtime %s returned status %d", c.addr, resp.StatusCode())
	}
	if out.Error != nil {
		return scheduler.ResponseObject{}, decodeGenericError(out.Error)
	}
	if out.Response == nil {
		return scheduler.ResponseObject{}, fmt.Errorf("rpcclient: fetch: runtime %s returned an empty response", c.addr)
	}
	return *out.Response, nil
}
