package room

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CountdownTimer is the per-room bidding countdown: one scheduled wake-up per
// room, not a tick stream. Clients render the live countdown from the absolute
// deadline in room state, the server only needs to fire once at expiry.
//
// The clock is injected so tests can drive expiry deterministically with a
// fake clock.
type CountdownTimer struct {
	clock clockwork.Clock

	mu       sync.Mutex
	timer    clockwork.Timer
	cancelCh chan struct{}
	deadline time.Time
}

func NewCountdownTimer(clock clockwork.Clock) *CountdownTimer {
	return &CountdownTimer{clock: clock}
}

// Start arms the countdown for d and invokes onExpire once when it fires,
// passing the deadline the wake-up was armed for. Any previously pending
// wake-up is cancelled first
func (t *CountdownTimer) Start(d time.Duration, onExpire func(deadline time.Time)) time.Time {
	return t.ArmAt(t.clock.Now().Add(d), onExpire)
}

// ArmAt arms the countdown for an exact deadline. The room uses this so the
// deadline handed to onExpire is identical to the one stored in room state,
// which is what lets a stale wake-up be recognized
func (t *CountdownTimer) ArmAt(deadline time.Time, onExpire func(deadline time.Time)) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()

	timer := t.clock.NewTimer(deadline.Sub(t.clock.Now()))
	cancelCh := make(chan struct{})
	t.timer = timer
	t.cancelCh = cancelCh
	t.deadline = deadline

	go func() {
		select {
		case <-cancelCh:
			stopAndDrain(timer)
		case <-timer.Chan():
			// a cancel that landed before the expiry was observed wins
			select {
			case <-cancelCh:
			default:
				onExpire(deadline)
			}
		}
	}()
	return deadline
}

// Pause cancels the pending wake-up and returns the exact remaining duration,
// which the caller persists in room state for the later Resume
func (t *CountdownTimer) Pause() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return 0
	}
	rem := t.deadline.Sub(t.clock.Now())
	if rem < 0 {
		rem = 0
	}
	t.cancelLocked()
	return rem
}

// Resume reschedules the countdown from a previously stored remaining duration
func (t *CountdownTimer) Resume(remaining time.Duration, onExpire func(deadline time.Time)) time.Time {
	return t.Start(remaining, onExpire)
}

// Cancel drops any pending wake-up
func (t *CountdownTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Deadline returns the armed deadline, zero when idle
func (t *CountdownTimer) Deadline() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return time.Time{}
	}
	return t.deadline
}

func (t *CountdownTimer) cancelLocked() {
	if t.timer == nil {
		return
	}
	close(t.cancelCh)
	t.timer = nil
	t.cancelCh = nil
	t.deadline = time.Time{}
}

// stopAndDrain stops a timer and drains its channel so the waiting goroutine
// never leaks, the pattern from time.Timer.Stop documentation
func stopAndDrain(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
