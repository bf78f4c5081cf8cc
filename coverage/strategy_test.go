package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswarm-io/skysweep/core"
)

// TestNewStrategy verifies the factory resolves every registered name.
func TestNewStrategy(t *testing.T) {
	names := []string{StrategySnake, StrategyRandom, StrategyInsideOut, StrategyMinTime}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, Config{LineWidth: 0.5})
			require.NoError(t, err)
			assert.Equal(t, name, s.Name())
		})
	}
}

func TestNewStrategyUnknown(t *testing.T) {
	_, err := New("perimeter", Config{})
	assert.ErrorIs(t, err, core.ErrUnknownStrategy)
}

// TestPositionAware verifies only MinTime consumes position updates.
func TestPositionAware(t *testing.T) {
	minTime, err := New(StrategyMinTime, Config{})
	require.NoError(t, err)
	_, ok := minTime.(PositionAware)
	assert.True(t, ok)

	snake, err := New(StrategySnake, Config{})
	require.NoError(t, err)
	_, ok = snake.(PositionAware)
	assert.False(t, ok)
}
