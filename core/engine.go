package core

import (
	"context"
	"sync"
	"time"
)

// TickEngine is a minimal evaluation engine: a registry of named callbacks
// evaluated in registration order at a fixed interval. It stands in for the
// external expression-evaluation engine that drives agents in production.
//
// Callbacks must be non-blocking; a callback that needs to wait for a
// condition returns and checks again on the next tick. Callback errors are
// logged and never stop the loop - per-tick failures are local and retried.
type TickEngine struct {
	interval time.Duration
	logger   Logger

	mu        sync.Mutex
	names     []string
	callbacks map[string]TickFunc
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewTickEngine creates an engine with the given evaluation interval.
func NewTickEngine(interval time.Duration, logger Logger) *TickEngine {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &TickEngine{
		interval:  interval,
		logger:    logger,
		callbacks: make(map[string]TickFunc),
	}
}

// Register adds a named callback. Registering an existing name replaces the
// callback but keeps its evaluation position.
func (e *TickEngine) Register(name string, fn TickFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.callbacks[name]; !exists {
		e.names = append(e.names, name)
	}
	e.callbacks[name] = fn
}

// Tick evaluates every registered callback once, in registration order.
// Exposed so tests and simulations can drive the engine manually.
func (e *TickEngine) Tick(ctx context.Context) {
	e.mu.Lock()
	names := make([]string, len(e.names))
	copy(names, e.names)
	callbacks := make(map[string]TickFunc, len(e.callbacks))
	for k, v := range e.callbacks {
		callbacks[k] = v
	}
	e.mu.Unlock()

	for _, name := range names {
		if err := callbacks[name](ctx); err != nil {
			if IsTransient(err) {
				e.logger.Debug("Tick callback deferred", map[string]interface{}{
					"callback": name,
					"reason":   err.Error(),
				})
				continue
			}
			e.logger.Error("Tick callback failed", map[string]interface{}{
				"callback": name,
				"error":    err.Error(),
			})
		}
	}
}

// Start launches the periodic evaluation loop.
func (e *TickEngine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.Tick(ctx)
			}
		}
	}()
	return nil
}

// Stop halts the loop and waits for the current tick to finish.
func (e *TickEngine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	done := e.done
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
