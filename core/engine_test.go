package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTickEngineOrder verifies callbacks run in registration order.
func TestTickEngineOrder(t *testing.T) {
	engine := NewTickEngine(time.Second, nil)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		engine.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	engine.Tick(context.Background())
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

// TestTickEngineReplaceKeepsPosition verifies re-registering a name swaps the
// callback without moving it in the evaluation order.
func TestTickEngineReplaceKeepsPosition(t *testing.T) {
	engine := NewTickEngine(time.Second, nil)

	var order []string
	engine.Register("a", func(ctx context.Context) error {
		order = append(order, "a-old")
		return nil
	})
	engine.Register("b", func(ctx context.Context) error {
		order = append(order, "b")
		return nil
	})
	engine.Register("a", func(ctx context.Context) error {
		order = append(order, "a-new")
		return nil
	})

	engine.Tick(context.Background())
	assert.Equal(t, []string{"a-new", "b"}, order)
}

// TestTickEngineContinuesOnError verifies a failing callback never stops the
// remaining callbacks of the same tick.
func TestTickEngineContinuesOnError(t *testing.T) {
	engine := NewTickEngine(time.Second, nil)

	ran := false
	engine.Register("failing", func(ctx context.Context) error {
		return errors.New("boom")
	})
	engine.Register("transient", func(ctx context.Context) error {
		return ErrNoAgents
	})
	engine.Register("after", func(ctx context.Context) error {
		ran = true
		return nil
	})

	engine.Tick(context.Background())
	assert.True(t, ran)
}

// TestTickEngineStartStop verifies the periodic loop runs and stops cleanly.
func TestTickEngineStartStop(t *testing.T) {
	engine := NewTickEngine(5*time.Millisecond, nil)

	ticks := make(chan struct{}, 100)
	engine.Register("counter", func(ctx context.Context) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	})

	require.NoError(t, engine.Start(context.Background()))
	assert.ErrorIs(t, engine.Start(context.Background()), ErrAlreadyStarted)

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("engine never ticked")
	}

	engine.Stop()

	// Stop is idempotent.
	engine.Stop()
}
