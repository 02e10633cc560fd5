package scholar

import (
	"context"
	"time"
)

// Pauser abstracts how the collector waits between provider requests.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// TimerPauser sleeps on a timer while honoring context cancellation.
type TimerPauser struct{}

// Pause blocks for delay or until ctx is done, whichever comes first.
func (TimerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// DelayWindow produces randomized per-year delays inside [Min, Max] so
// request timing does not look mechanical to the provider.
type DelayWindow struct {
	Min time.Duration
	Max time.Duration
}

// Next returns the delay to use before the upcoming request.
func (w DelayWindow) Next() time.Duration {
	if w.Min < 0 {
		w.Min = 0
	}
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + randomJitter(w.Max-w.Min)
}
