// Package jsonutil is the wire-encoding layer used for RPC envelopes
// exchanged with runtimes (RequestObject/ResponseObject/GenericError),
// plugged into the resty clients' JSON hooks. It defaults to encoding/json; building
// with the CONFIG_USE_SONIC tag swaps in bytedance/sonic's faster codec
// without touching call sites.
package jsonutil
