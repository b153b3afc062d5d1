package room

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitExpiry(t *testing.T, ch <-chan time.Time) time.Time {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for expiry")
		return time.Time{}
	}
}

func assertNoExpiry(t *testing.T, ch <-chan time.Time) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("countdown fired unexpectedly")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCountdownFiresWithArmedDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewCountdownTimer(clock)
	fired := make(chan time.Time, 1)

	deadline := timer.Start(30*time.Second, func(d time.Time) { fired <- d })
	require.Equal(t, clock.Now().Add(30*time.Second), deadline)
	assert.True(t, timer.Deadline().Equal(deadline))

	clock.Advance(30 * time.Second)
	got := waitExpiry(t, fired)
	assert.True(t, got.Equal(deadline))
}

func TestArmAtUsesExactDeadline(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewCountdownTimer(clock)
	fired := make(chan time.Time, 1)

	deadline := clock.Now().Add(12 * time.Second)
	timer.ArmAt(deadline, func(d time.Time) { fired <- d })

	clock.Advance(12 * time.Second)
	got := waitExpiry(t, fired)
	assert.True(t, got.Equal(deadline))
}

func TestPauseReturnsExactRemaining(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewCountdownTimer(clock)
	fired := make(chan time.Time, 1)

	timer.Start(30*time.Second, func(d time.Time) { fired <- d })
	clock.Advance(18 * time.Second)

	rem := timer.Pause()
	assert.Equal(t, 12*time.Second, rem)
	assert.True(t, timer.Deadline().IsZero())

	// frozen: wall-clock time passing must not fire it
	clock.Advance(time.Minute)
	assertNoExpiry(t, fired)

	timer.Resume(rem, func(d time.Time) { fired <- d })
	clock.Advance(12 * time.Second)
	waitExpiry(t, fired)
}

func TestCancelDropsPendingWakeup(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewCountdownTimer(clock)
	fired := make(chan time.Time, 1)

	timer.Start(10*time.Second, func(d time.Time) { fired <- d })
	timer.Cancel()

	clock.Advance(time.Minute)
	assertNoExpiry(t, fired)
	assert.True(t, timer.Deadline().IsZero())
}

func TestRearmReplacesPendingWakeup(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewCountdownTimer(clock)
	fired := make(chan time.Time, 2)

	timer.Start(10*time.Second, func(d time.Time) { fired <- d })
	second := timer.Start(25*time.Second, func(d time.Time) { fired <- d })

	// past the first deadline: the replaced wake-up must stay silent
	clock.Advance(15 * time.Second)
	assertNoExpiry(t, fired)

	clock.Advance(10 * time.Second)
	got := waitExpiry(t, fired)
	assert.True(t, got.Equal(second))
}

func TestPauseOnIdleTimerIsZero(t *testing.T) {
	timer := NewCountdownTimer(clockwork.NewFakeClock())
	assert.Equal(t, time.Duration(0), timer.Pause())
}
