// Package driving provides interfaces for application entry points
// (primary/inbound ports) consumed by the CLI and by embedding callers.
package driving
