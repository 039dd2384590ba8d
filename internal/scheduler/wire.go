package scheduler

import "encoding/json"

// BodyKind tags which variant an HTTPBody holds.
type BodyKind string

const (
	BodyNone   BodyKind = ""
	BodyText   BodyKind = "text"
	BodyBinary BodyKind = "binary"
)

// HTTPBody is the wire representation of a request or response body: absent,
// UTF-8 text, or an opaque byte string. It round-trips through JSON as
// either null or a single-key object so runtimes on the other end of the
// RPC don't need to guess an encoding.
type HTTPBody struct {
	Kind   BodyKind
	Text   string
	Binary []byte
}

type httpBodyWire struct {
	Text   *string `json:"text,omitempty"`
	Binary []byte  `json:"binary,omitempty"`
}

func (b HTTPBody) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case BodyText:
		text := b.Text
		return json.Marshal(httpBodyWire{Text: &text})
	case BodyBinary:
		return json.Marshal(httpBodyWire{Binary: b.Binary})
	default:
		return []byte("null"), nil
	}
}

func (b *HTTPBody) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = HTTPBody{Kind: BodyNone}
		return nil
	}
	var w httpBodyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Text != nil {
		*b = HTTPBody{Kind: BodyText, Text: *w.Text}
		return nil
	}
	*b = HTTPBody{Kind: BodyBinary, Binary: w.Binary}
	return nil
}

// RequestObject is the runtime-bound translation of an inbound HTTP request.
type RequestObject struct {
	Method  string              `json:"method"`
	URL     string              `json:"url"`
	Headers map[string][]string `json:"headers"`
	Body    HTTPBody            `json:"body"`
}

// ResponseObject is a runtime's reply, translated back to an outbound HTTP
// response by the caller.
type ResponseObject struct {
	Status  uint16              `json:"status"`
	Headers map[string][]string `json:"headers"`
	Body    HTTPBody            `json:"body"`
}

// GenericErrorKind distinguishes the one application-level error the
// scheduler treats specially (the targeted worker no longer exists, so the
// instance should be dropped and retried) from everything else.
type GenericErrorKind int

const (
	GenericErrorOther GenericErrorKind = iota
	GenericErrorNoSuchWorker
)

func (k GenericErrorKind) String() string {
	if k == GenericErrorNoSuchWorker {
		return "no_such_worker"
	}
	return "other"
}

// RuntimeAppError is an application-level failure returned by a runtime's
// RPC handler, as opposed to a transport failure reaching the runtime at
// all. Only GenericErrorNoSuchWorker is retried by the forwarder.
type RuntimeAppError struct {
	Kind    GenericErrorKind
	Message string
}

func (e *RuntimeAppError) Error() string {
	return "runtime error (" + e.Kind.String() + "): " + e.Message
}
