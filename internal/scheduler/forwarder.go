package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HandleRequest resolves an inbound HTTP request to an app, acquires a
// ready instance, and forwards it over the runtime RPC protocol, retrying
// against a fresh instance up to maxForwardAttempts times. It reads a
// single Config snapshot at the top and threads it through the whole call,
// so a concurrent reconciliation can't hand one request two different
// generations of tunables.
func (s *Scheduler) HandleRequest(ctx context.Context, r *http.Request) (*ResponseObject, error) {
	cfg := s.config.Load()
	routes := s.routes.Load()
	reqLogger := s.logger.With("request_id", uuid.NewString())

	normalizedHost := normalizeHost(r.Host)
	appID, err := routes.Resolve(r.Host, r.URL.Path)
	if err != nil {
		return nil, err
	}

	headers := buildHeaders(r, normalizedHost)
	url := fmt.Sprintf("https://%s%s", normalizedHost, r.URL.RequestURI())

	body, err := readBodyCapped(r.Body, cfg.MaxRequestBodySizeBytes)
	if err != nil {
		return nil, err
	}

	reqObj := RequestObject{Method: r.Method, URL: url, Headers: headers, Body: body}

	s.appsMu.RLock()
	defer s.appsMu.RUnlock()

	app, ok := s.apps[appID]
	if !ok {
		return nil, ErrNoRouteMapping
	}

	for attempt := 0; attempt < maxForwardAttempts; attempt++ {
		inst, err := app.GetInstance(ctx, cfg, s.registry)
		if err != nil {
			return nil, err
		}

		fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.RequestTimeoutMs)*time.Millisecond)
		resp, ferr := inst.Client.Fetch(fetchCtx, inst.Handle, reqObj)
		cancel()

		if ferr == nil {
			app.PoolInstance(inst)
			return &resp, nil
		}

		var appErr *RuntimeAppError
		if errors.As(ferr, &appErr) {
			if appErr.Kind == GenericErrorNoSuchWorker {
				reqLogger.Debug("instance %s on runtime %s gone, retrying", inst.Handle, inst.RuntimeID)
				continue
			}
			reqLogger.Debug("runtime %s returned non-recoverable error: %v", inst.RuntimeID, appErr)
			return nil, ErrRequestFailedAfterRetries
		}

		reqLogger.Info("transport error reaching runtime %s: %v", inst.RuntimeID, ferr)
		s.registry.Remove(inst.RuntimeID)
	}

	return nil, ErrRequestFailedAfterRetries
}

// buildHeaders copies the inbound header set and re-inserts a Host header
// carrying the normalized value, since net/http promotes the original Host
// header out of r.Header and into r.Host.
func buildHeaders(r *http.Request, normalizedHost string) map[string][]string {
	headers := make(map[string][]string, len(r.Header)+1)
	for k, v := range r.Header {
		vals := make([]string, len(v))
		copy(vals, v)
		headers[k] = vals
	}
	headers["Host"] = []string{normalizedHost}
	return headers
}

// readBodyCapped drains r up to capBytes+1, returning ErrRequestBodyTooLarge
// if the extra byte is present rather than buffering an unbounded body.
func readBodyCapped(r io.Reader, capBytes int64) (HTTPBody, error) {
	if r == nil {
		return HTTPBody{Kind: BodyNone}, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, capBytes+1))
	if err != nil {
		return HTTPBody{}, fmt.Errorf("scheduler: read request body: %w", err)
	}
	if int64(len(data)) > capBytes {
		return HTTPBody{}, ErrRequestBodyTooLarge
	}
	if len(data) == 0 {
		return HTTPBody{Kind: BodyNone}, nil
	}
	return HTTPBody{Kind: BodyBinary, Binary: data}, nil
}
