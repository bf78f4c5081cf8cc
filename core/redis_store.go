// Redis-backed implementation of the KnowledgeStore interface.
//
// Purpose:
// - Backs the shared keyspace with Redis when agents run as separate
//   processes, so replication is handled by infrastructure instead of the
//   in-process Board.
// - Namespaces every key to keep multiple fleets apart on one server.
// - Implements the deferred-dissemination contract with a local overlay map
//   that is shipped with a single pipeline on Flush.
//
// The eventual-consistency model of the coordination core does not depend on
// any Redis-specific guarantee; Redis is simply the most available store
// with the get/set/scan surface the core needs.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisKnowledge implements KnowledgeStore over a Redis server.
type RedisKnowledge struct {
	client    *redis.Client
	namespace string
	logger    Logger

	mu       sync.Mutex
	deferred map[string]string
}

// RedisKnowledgeOptions configures the Redis-backed store.
type RedisKnowledgeOptions struct {
	RedisURL  string
	Namespace string // key prefix, defaults to "skysweep"
	Logger    Logger // optional
}

// NewRedisKnowledge connects to Redis and verifies the connection.
func NewRedisKnowledge(opts RedisKnowledgeOptions) (*RedisKnowledge, error) {
	if opts.Namespace == "" {
		opts.Namespace = "skysweep"
	}
	if opts.Logger == nil {
		opts.Logger = &NoOpLogger{}
	}

	redisOpts, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	opts.Logger.Info("Connected to Redis knowledge store", map[string]interface{}{
		"namespace": opts.Namespace,
	})

	return &RedisKnowledge{
		client:    client,
		namespace: opts.Namespace,
		logger:    opts.Logger,
		deferred:  make(map[string]string),
	}, nil
}

func (r *RedisKnowledge) namespacedKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

// Get retrieves a value, honoring local read-after-write for deferred keys.
func (r *RedisKnowledge) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	if v, ok := r.deferred[key]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	val, err := r.client.Get(ctx, r.namespacedKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, key, err)
	}
	return val, nil
}

// Set writes a value, immediately or into the deferred overlay.
func (r *RedisKnowledge) Set(ctx context.Context, key, value string, opts ...SetOption) error {
	var o SetOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.Deferred {
		r.mu.Lock()
		r.deferred[key] = value
		r.mu.Unlock()
		return nil
	}

	if err := r.client.Set(ctx, r.namespacedKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

// Keys returns disseminated keys matching a glob pattern.
func (r *RedisKnowledge) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := r.client.Keys(ctx, r.namespacedKey(pattern)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: keys %s: %v", ErrStoreUnavailable, pattern, err)
	}

	prefix := r.namespace + ":"
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len(prefix):])
	}
	return out, nil
}

// Flush ships all deferred writes in one pipeline.
func (r *RedisKnowledge) Flush(ctx context.Context) error {
	r.mu.Lock()
	pending := r.deferred
	r.deferred = make(map[string]string)
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for k, v := range pending {
		pipe.Set(ctx, r.namespacedKey(k), v, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// Put the writes back so the next Flush retries them.
		r.mu.Lock()
		for k, v := range pending {
			if _, exists := r.deferred[k]; !exists {
				r.deferred[k] = v
			}
		}
		r.mu.Unlock()
		return fmt.Errorf("%w: flush: %v", ErrStoreUnavailable, err)
	}

	r.logger.Debug("Deferred writes disseminated", map[string]interface{}{
		"count": len(pending),
	})
	return nil
}

// Close releases the underlying Redis connection.
func (r *RedisKnowledge) Close() error {
	return r.client.Close()
}
