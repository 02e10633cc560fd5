package scholar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerPauserHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	TimerPauser{}.Pause(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTimerPauserZeroDelayReturnsImmediately(t *testing.T) {
	t.Parallel()

	start := time.Now()
	TimerPauser{}.Pause(context.Background(), 0)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDelayWindowNextWithinBounds(t *testing.T) {
	t.Parallel()

	window := DelayWindow{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond}
	for i := 0; i < 100; i++ {
		d := window.Next()
		assert.GreaterOrEqual(t, d, window.Min)
		assert.LessOrEqual(t, d, window.Max)
	}
}

func TestDelayWindowDegenerateBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Duration(0), DelayWindow{}.Next())
	assert.Equal(t, 5*time.Millisecond, DelayWindow{Min: 5 * time.Millisecond, Max: 5 * time.Millisecond}.Next())
}
