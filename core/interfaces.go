package core

import (
	"context"
)

// Logger interface - minimal logging interface
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// Telemetry interface - optional telemetry support
type Telemetry interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	RecordMetric(name string, value float64, labels map[string]string)
}

// Span represents a telemetry span
type Span interface {
	End()
	SetAttribute(key string, value interface{})
	RecordError(err error)
}

// SetOptions controls how a write is disseminated to peers.
type SetOptions struct {
	// Deferred buffers the write locally until the next Flush. The writing
	// client still observes its own deferred writes (read-after-write);
	// other clients observe them only after Flush.
	Deferred bool
}

// SetOption configures a single Set call.
type SetOption func(*SetOptions)

// Deferred marks a write for batched dissemination on the next Flush.
// Used to make a multi-key update appear atomic to readers.
func Deferred() SetOption {
	return func(o *SetOptions) { o.Deferred = true }
}

// KnowledgeStore is the narrow interface to the shared, eventually-consistent
// distributed key/value store that is the only inter-agent channel. The store
// itself (replication, transport, serialization) is an external collaborator;
// the coordination core only reads and writes hierarchical string keys.
//
// All values are strings. Coordinates are stored in string form rather than
// as native floats to preserve full precision across dissemination.
//
// Every key is owned by exactly one writer role (the owning agent for its
// telemetry fields, the mission controller for assignments and global
// parameters). Concurrent writers to the same key are a configuration error,
// not a supported race.
type KnowledgeStore interface {
	// Get returns the value for key, or "" when the key is unset.
	Get(ctx context.Context, key string) (string, error)

	// Set writes a value. Writes are disseminated immediately unless the
	// Deferred option is given.
	Set(ctx context.Context, key, value string, opts ...SetOption) error

	// Keys returns all disseminated keys matching a glob-style pattern
	// (e.g. "detection.location.*"). Deferred writes of other clients are
	// not visible.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Flush disseminates all of this client's deferred writes.
	Flush(ctx context.Context) error
}

// TickFunc is a named callback evaluated once per tick by the evaluation
// engine. It must not block; waiting is expressed as returning and being
// re-evaluated on the next tick.
type TickFunc func(ctx context.Context) error

// Evaluator is the interface the core uses to hand tick callbacks to the
// surrounding evaluation engine.
type Evaluator interface {
	Register(name string, fn TickFunc)
}

// NoOpLogger provides a no-op logger implementation
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Error(msg string, fields map[string]interface{}) {}
func (n *NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}

// NoOpTelemetry provides a no-op telemetry implementation
type NoOpTelemetry struct{}

func (n *NoOpTelemetry) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &NoOpSpan{}
}

func (n *NoOpTelemetry) RecordMetric(name string, value float64, labels map[string]string) {}

// NoOpSpan provides a no-op span implementation
type NoOpSpan struct{}

func (n *NoOpSpan) End()                                       {}
func (n *NoOpSpan) SetAttribute(key string, value interface{}) {}
func (n *NoOpSpan) RecordError(err error)                      {}
