package scheduler

import (
	"errors"
	"net/http"
)

// ErrKind enumerates the scheduler's closed set of request-handling
// failures. Each maps to exactly one HTTP status for the inbound response.
type ErrKind int

const (
	KindNoAvailableInstance ErrKind = iota
	KindNoRouteMapping
	KindRequestBodyTooLarge
	KindRequestFailedAfterRetries
)

func (k ErrKind) String() string {
	switch k {
	case KindNoAvailableInstance:
		return "no_available_instance"
	case KindNoRouteMapping:
		return "no_route_mapping"
	case KindRequestBodyTooLarge:
		return "request_body_too_large"
	case KindRequestFailedAfterRetries:
		return "request_failed_after_retries"
	default:
		return "unknown"
	}
}

// HTTPStatus is the status code a SchedError of this kind is reported to the
// client as.
func (k ErrKind) HTTPStatus() int {
	switch k {
	case KindNoAvailableInstance:
		return http.StatusServiceUnavailable
	case KindNoRouteMapping:
		return http.StatusBadGateway
	case KindRequestBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindRequestFailedAfterRetries:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// SchedError is a request-handling failure with a fixed client-facing
// status. The scheduler package exposes one sentinel value per kind;
// callers compare with errors.Is.
type SchedError struct {
	Kind ErrKind
}

func (e *SchedError) Error() string { return e.Kind.String() }

var (
	ErrNoAvailableInstance       = &SchedError{Kind: KindNoAvailableInstance}
	ErrNoRouteMapping            = &SchedError{Kind: KindNoRouteMapping}
	ErrRequestBodyTooLarge       = &SchedError{Kind: KindRequestBodyTooLarge}
	ErrRequestFailedAfterRetries = &SchedError{Kind: KindRequestFailedAfterRetries}
)

// ErrFetchConfig wraps a failure to fetch or parse a Config document.
// Reconciler.Refresh returns it to its caller, which logs it; it is never
// surfaced to clients.
var ErrFetchConfig = errors.New("scheduler: fetch config")

// StatusForError maps any error returned by Scheduler.HandleRequest to the
// HTTP status and reason phrase an inbound adapter should respond with.
// Errors that are not a *SchedError map to 500.
func StatusForError(err error) (int, string) {
	var se *SchedError
	if errors.As(err, &se) {
		status := se.Kind.HTTPStatus()
		return status, http.StatusText(status)
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
