package core

import (
	"context"
	"path"
	"sort"
	"sync"
)

// Board is the shared backing state for in-process knowledge stores. One
// Board stands in for the whole replicated keyspace; each agent (and the
// mission controller) attaches as a client with its own deferred-write
// buffer. This makes the design naturally multi-agent-in-one-process for
// tests and simulation.
type Board struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewBoard creates an empty shared keyspace.
func NewBoard() *Board {
	return &Board{data: make(map[string]string)}
}

// Client attaches a named client to the board. Each client sees its own
// deferred writes immediately and everyone else's only after their Flush.
func (b *Board) Client(name string) *InMemoryKnowledge {
	return &InMemoryKnowledge{
		board:    b,
		name:     name,
		deferred: make(map[string]string),
		logger:   &NoOpLogger{},
	}
}

// InMemoryKnowledge is an in-process implementation of KnowledgeStore.
// Writes marked Deferred are buffered per client until Flush, modeling the
// "defer dissemination" mode of the real store.
type InMemoryKnowledge struct {
	board    *Board
	name     string
	mu       sync.Mutex
	deferred map[string]string
	logger   Logger
}

// NewInMemoryKnowledge creates a store with a private board and a single
// client. Convenient for single-agent tests.
func NewInMemoryKnowledge() *InMemoryKnowledge {
	return NewBoard().Client("local")
}

// SetLogger configures the logger for this store client.
func (m *InMemoryKnowledge) SetLogger(logger Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Get retrieves a value, honoring local read-after-write for deferred keys.
func (m *InMemoryKnowledge) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	if v, ok := m.deferred[key]; ok {
		m.mu.Unlock()
		return v, nil
	}
	m.mu.Unlock()

	m.board.mu.RLock()
	defer m.board.mu.RUnlock()
	return m.board.data[key], nil
}

// Set writes a value, immediately or into the deferred buffer.
func (m *InMemoryKnowledge) Set(ctx context.Context, key, value string, opts ...SetOption) error {
	var o SetOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.Deferred {
		m.mu.Lock()
		m.deferred[key] = value
		m.mu.Unlock()
		m.logger.Debug("Deferred write buffered", map[string]interface{}{
			"client": m.name,
			"key":    key,
		})
		return nil
	}

	m.board.mu.Lock()
	m.board.data[key] = value
	m.board.mu.Unlock()
	return nil
}

// Keys returns disseminated keys matching a glob pattern, sorted for
// deterministic iteration. Other clients' deferred writes are invisible.
func (m *InMemoryKnowledge) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.board.mu.RLock()
	defer m.board.mu.RUnlock()

	var out []string
	for k := range m.board.data {
		if ok, err := path.Match(pattern, k); err != nil {
			return nil, err
		} else if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Flush publishes all deferred writes to the board in one critical section,
// so a multi-key update appears atomic to readers.
func (m *InMemoryKnowledge) Flush(ctx context.Context) error {
	m.mu.Lock()
	pending := m.deferred
	m.deferred = make(map[string]string)
	m.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	m.board.mu.Lock()
	for k, v := range pending {
		m.board.data[k] = v
	}
	m.board.mu.Unlock()

	m.logger.Debug("Deferred writes disseminated", map[string]interface{}{
		"client": m.name,
		"count":  len(pending),
	})
	return nil
}
