package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusflow/internal/model"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// arithmeticEngine disables the expiry watcher so tests can drive the clock
// through completion boundaries without racing it.
func arithmeticEngine(clk *fakeClock) *Engine {
	return New(zerolog.Nop(), WithClock(clk.Now), WithTickInterval(time.Hour))
}

func TestElapsedAcrossPauseResume(t *testing.T) {
	clk := newFakeClock()
	e := arithmeticEngine(clk)
	defer e.Shutdown()

	e.Create("u1", model.PhaseFocus, 10, 10*time.Minute, "s1", Meta{})

	clk.Advance(2 * time.Minute)
	if _, err := e.Pause("u1"); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	// paused time must not count as elapsed
	clk.Advance(5 * time.Minute)
	snap, err := e.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Elapsed != 2*time.Minute {
		t.Fatalf("elapsed while paused = %v, want 2m", snap.Elapsed)
	}
	if snap.Status != model.TimerPaused {
		t.Fatalf("status = %v", snap.Status)
	}

	if _, err := e.Resume("u1"); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	clk.Advance(8 * time.Minute)

	res, err := e.Stop("u1")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if res.ActualMinutes != 10 {
		t.Fatalf("actual minutes = %d, want 10 (pause leaked into elapsed)", res.ActualMinutes)
	}
	if res.Record.AccumulatedPause != 5*time.Minute {
		t.Fatalf("accumulated pause = %v", res.Record.AccumulatedPause)
	}
}

func TestRepeatedPauseResumeDoesNotDrift(t *testing.T) {
	clk := newFakeClock()
	e := arithmeticEngine(clk)
	defer e.Shutdown()

	e.Create("u1", model.PhaseFocus, 25, 25*time.Minute, "s1", Meta{})

	// three pause/resume cycles with varying gaps
	running := []time.Duration{3 * time.Minute, 4 * time.Minute, 2 * time.Minute}
	paused := []time.Duration{time.Minute, 7 * time.Minute, 30 * time.Second}
	var want time.Duration
	for i := range running {
		clk.Advance(running[i])
		want += running[i]
		if _, err := e.Pause("u1"); err != nil {
			t.Fatalf("Pause #%d: %v", i, err)
		}
		clk.Advance(paused[i])
		if _, err := e.Resume("u1"); err != nil {
			t.Fatalf("Resume #%d: %v", i, err)
		}
	}

	snap, err := e.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Elapsed != want {
		t.Fatalf("elapsed = %v, want %v", snap.Elapsed, want)
	}
	if snap.Remaining != 25*time.Minute-want {
		t.Fatalf("remaining = %v", snap.Remaining)
	}
}

func TestStopCompletionPercent(t *testing.T) {
	clk := newFakeClock()
	e := arithmeticEngine(clk)
	defer e.Shutdown()

	e.Create("u1", model.PhaseFocus, 25, 25*time.Minute, "s1", Meta{})
	clk.Advance(10 * time.Minute)

	res, err := e.Stop("u1")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if res.CompletionPercent != 40 {
		t.Fatalf("completion percent = %d, want 40", res.CompletionPercent)
	}
	if res.ActualMinutes != 10 {
		t.Fatalf("actual minutes = %d, want 10", res.ActualMinutes)
	}
	if e.ActiveCount() != 0 {
		t.Fatal("stopped timer still in live set")
	}
}

func TestSingleActiveTimerInvariant(t *testing.T) {
	clk := newFakeClock()
	e := arithmeticEngine(clk)
	defer e.Shutdown()

	e.Create("u1", model.PhaseFocus, 25, 25*time.Minute, "s1", Meta{})
	e.Create("u1", model.PhaseShortBreak, 5, 5*time.Minute, "s2", Meta{})

	if n := e.ActiveCount(); n != 1 {
		t.Fatalf("live timers = %d, want 1", n)
	}
	snap, err := e.Snapshot("u1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.SessionID != "s2" || snap.Phase != model.PhaseShortBreak {
		t.Fatalf("live record reflects first create: %+v", snap)
	}
}

func TestCreateReturnsDisplacedTimerAsStopped(t *testing.T) {
	clk := newFakeClock()
	e := arithmeticEngine(clk)
	defer e.Shutdown()

	_, replaced := e.Create("u1", model.PhaseFocus, 25, 25*time.Minute, "s1", Meta{})
	if replaced != nil {
		t.Fatalf("first create reported a displaced timer: %+v", replaced)
	}

	clk.Advance(10 * time.Minute)
	_, replaced = e.Create("u1", model.PhaseShortBreak, 5, 5*time.Minute, "s2", Meta{})
	if replaced == nil {
		t.Fatal("second create did not report the displaced timer")
	}
	if replaced.Record.SessionID != "s1" || replaced.Record.Status != model.TimerStopped {
		t.Fatalf("displaced record = %+v", replaced.Record)
	}
	if replaced.ActualMinutes != 10 || replaced.CompletionPercent != 40 {
		t.Fatalf("displaced stop result = %+v", replaced)
	}
}

func TestTransitionErrors(t *testing.T) {
	clk := newFakeClock()
	e := arithmeticEngine(clk)
	defer e.Shutdown()

	if _, err := e.Pause("ghost"); err != model.ErrNoActiveTimer {
		t.Fatalf("Pause without timer: %v", err)
	}
	if _, err := e.Stop("ghost"); err != model.ErrNoActiveTimer {
		t.Fatalf("Stop without timer: %v", err)
	}
	if _, err := e.Snapshot("ghost"); err != model.ErrNoActiveTimer {
		t.Fatalf("Snapshot without timer: %v", err)
	}

	e.Create("u1", model.PhaseFocus, 25, 25*time.Minute, "s1", Meta{})
	if _, err := e.Resume("u1"); err != model.ErrInvalidTransition {
		t.Fatalf("Resume running timer: %v", err)
	}
	if _, err := e.Pause("u1"); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if _, err := e.Pause("u1"); err != model.ErrInvalidTransition {
		t.Fatalf("Pause paused timer: %v", err)
	}
}

func TestNaturalExpiryPublishesOnce(t *testing.T) {
	e := New(zerolog.Nop(), WithTickInterval(10*time.Millisecond))
	defer e.Shutdown()

	e.Create("u1", model.PhaseFocus, 1, 150*time.Millisecond, "s1", Meta{CyclePos: 2})

	select {
	case c := <-e.Events():
		if c.Record.Status != model.TimerCompleted {
			t.Fatalf("completion status = %v", c.Record.Status)
		}
		if c.Record.SessionID != "s1" || c.Record.CyclePosition != 2 {
			t.Fatalf("completion record = %+v", c.Record)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no completion event")
	}

	if e.ActiveCount() != 0 {
		t.Fatal("completed timer still in live set")
	}

	// exactly once
	select {
	case c := <-e.Events():
		t.Fatalf("unexpected second event: %+v", c.Record)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestPauseSuppressesExpiry(t *testing.T) {
	e := New(zerolog.Nop(), WithTickInterval(10*time.Millisecond))
	defer e.Shutdown()

	e.Create("u1", model.PhaseFocus, 1, 120*time.Millisecond, "s1", Meta{})
	if _, err := e.Pause("u1"); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	// well past the planned duration in wall time, but frozen
	select {
	case c := <-e.Events():
		t.Fatalf("paused timer completed: %+v", c.Record)
	case <-time.After(300 * time.Millisecond):
	}

	if _, err := e.Resume("u1"); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	select {
	case <-e.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("resumed timer never completed")
	}
}

func TestTickPanicForceStopsTimer(t *testing.T) {
	var calls atomic.Int32
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	// the first call feeds Create; every later call happens inside the
	// expiry check
	now := func() time.Time {
		if calls.Add(1) > 1 {
			panic("clock went away")
		}
		return base
	}
	e := New(zerolog.Nop(), WithClock(now), WithTickInterval(10*time.Millisecond))
	defer e.Shutdown()

	e.Create("u1", model.PhaseFocus, 25, 25*time.Minute, "s1", Meta{})

	deadline := time.Now().Add(2 * time.Second)
	for e.ActiveCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := e.ActiveCount(); n != 0 {
		t.Fatalf("timer survived a panicking tick: %d live", n)
	}
}

func TestShutdownClosesEventStream(t *testing.T) {
	e := New(zerolog.Nop(), WithTickInterval(time.Hour))
	e.Create("u1", model.PhaseFocus, 25, 25*time.Minute, "s1", Meta{})
	e.Create("u2", model.PhaseFocus, 25, 25*time.Minute, "s2", Meta{})

	e.Shutdown()

	if _, open := <-e.Events(); open {
		t.Fatal("event stream not closed after shutdown")
	}
}
