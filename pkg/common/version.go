// Package common provides ambient utilities shared across schedproxy
// binaries and packages: structured logging, process bootstrap
// configuration, and build metadata.
package common

// Version is the current version of the schedproxy project.
const Version = "0.1.0"
