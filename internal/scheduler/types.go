// Package scheduler implements the multi-tenant request router: it resolves
// an inbound HTTP request to an application, acquires a ready worker
// instance from a runtime in the cluster, forwards the request over the
// runtime RPC protocol, and pools the instance back for reuse.
package scheduler

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// AppId identifies a tenant application within a Config document.
type AppId string

// RuntimeId identifies a runtime process in the cluster, independent of its
// network address. Runtimes are looked up by this id, not by address,
// because an address can be reused by a different process across restarts.
type RuntimeId string

// WorkerHandle identifies a spawned worker instance within a single runtime.
// It is opaque to the scheduler and only meaningful to the runtime that
// issued it.
type WorkerHandle string

// WorkerConfiguration is the opaque, per-app configuration blob forwarded to
// a runtime at spawn time. The scheduler never inspects its contents.
type WorkerConfiguration json.RawMessage

// MarshalJSON passes the raw blob through unchanged.
func (w WorkerConfiguration) MarshalJSON() ([]byte, error) {
	if len(w) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(w).MarshalJSON()
}

// UnmarshalJSON stores the raw blob without interpreting it.
func (w *WorkerConfiguration) UnmarshalJSON(data []byte) error {
	*w = append((*w)[0:0], data...)
	return nil
}

// UnmarshalYAML decodes the YAML node as arbitrary data and re-encodes it as
// JSON, since WorkerConfiguration travels to runtimes as a JSON blob over the
// RPC wire regardless of which format the Config document itself used.
func (w *WorkerConfiguration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	*w = WorkerConfiguration(data)
	return nil
}

// MarshalYAML renders the blob back as native YAML data for round-tripping
// in diagnostics dumps.
func (w WorkerConfiguration) MarshalYAML() (interface{}, error) {
	if len(w) == 0 {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(w, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Route maps a domain and path prefix to an app. Within a domain, path
// prefixes are unique; routing picks the longest prefix match.
type Route struct {
	Domain     string `json:"domain" yaml:"domain"`
	PathPrefix string `json:"path_prefix" yaml:"path_prefix"`
}

// AppConfig describes a single tenant application as carried in a Config
// document.
type AppConfig struct {
	ID        AppId               `json:"id" yaml:"id"`
	Routes    []Route             `json:"routes" yaml:"routes"`
	ScriptURL string              `json:"script_url" yaml:"script_url"`
	WorkerCfg WorkerConfiguration `json:"worker_cfg" yaml:"worker_cfg"`
}

// Config is the reconciler's source of truth, fetched from ConfigURL and
// installed atomically. RuntimeCluster is the document's own cluster list
// followed by the cluster_append addresses from the bootstrap config.
type Config struct {
	RuntimeCluster          []string    `json:"runtime_cluster" yaml:"runtime_cluster"`
	Apps                    []AppConfig `json:"apps" yaml:"apps"`
	InstanceExpirationMs    int64       `json:"instance_expiration_ms" yaml:"instance_expiration_ms"`
	RequestTimeoutMs        int64       `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	MaxRequestBodySizeBytes int64       `json:"max_request_body_size_bytes" yaml:"max_request_body_size_bytes"`
}

// ApplyDefaults fills in zero-valued tunables with the scheduler defaults.
func (c *Config) ApplyDefaults() {
	if c.InstanceExpirationMs == 0 {
		c.InstanceExpirationMs = DefaultInstanceExpirationMs
	}
	if c.RequestTimeoutMs == 0 {
		c.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if c.MaxRequestBodySizeBytes == 0 {
		c.MaxRequestBodySizeBytes = DefaultMaxRequestBodySizeBytes
	}
}
