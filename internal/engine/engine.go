// Package engine owns the live per-user timers: creation, pause, resume,
// stop, expiry detection and completion delivery.
//
// All timing arithmetic is computed from timestamps, never from tick counts,
// so delayed or missed ticks cannot desynchronize elapsed time from the wall
// clock. The per-timer ticker exists only to notice expiry.
package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusflow/internal/model"
)

// Meta is the typed creation metadata attached to a timer.
type Meta struct {
	Preset      string
	CyclePos    int
	TotalCycles int
	Accelerated bool
	// ChatID identifies the conversation the timer was started from, so the
	// routing layer can address the completion notice.
	ChatID int64
}

// Record describes one live or just-finished timer. Records are owned by the
// engine for their lifetime; callers only ever see copies.
type Record struct {
	UserID           string
	SessionID        string
	Phase            model.PhaseType
	PlannedMinutes   int
	Planned          time.Duration
	StartedAt        time.Time
	PausedAt         *time.Time
	AccumulatedPause time.Duration
	Status           model.TimerStatus
	CyclePosition    int
	TotalCycles      int
	Preset           string
	Accelerated      bool
	ChatID           int64
}

// StopResult reports the outcome of a manual stop.
type StopResult struct {
	Record            Record
	Actual            time.Duration
	ActualMinutes     int
	CompletionPercent int
}

type timer struct {
	userID           string
	sessionID        string
	phase            model.PhaseType
	plannedMinutes   int
	planned          time.Duration
	startedAt        time.Time
	pausedAt         time.Time // zero while running
	accumulatedPause time.Duration
	status           model.TimerStatus
	cyclePosition    int
	totalCycles      int
	preset           string
	accelerated      bool
	chatID           int64
	cancel           context.CancelFunc // stops the expiry watcher
}

// Engine is the timer lifecycle manager. It is an explicit instance, not a
// process-wide registry: independent engines never share state.
type Engine struct {
	log  zerolog.Logger
	now  func() time.Time
	tick time.Duration

	mu     sync.Mutex
	timers map[string]*timer

	events chan Completion

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall-clock source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTickInterval overrides the expiry-check period for all timers.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// WithEventBuffer sizes the completion channel.
func WithEventBuffer(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.events = make(chan Completion, n)
		}
	}
}

// New creates an engine with no live timers.
func New(log zerolog.Logger, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		log:    log,
		now:    time.Now,
		timers: make(map[string]*timer),
		events: make(chan Completion, 64),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create starts a timer for the user. An existing timer for the same user is
// replaced, last writer wins: its watcher is cancelled, it leaves the live
// set as stopped, and its stop result is returned so the caller can finalize
// the displaced session. The returned record has status running.
func (e *Engine) Create(userID string, phase model.PhaseType, plannedMinutes int, planned time.Duration, sessionID string, meta Meta) (Record, *StopResult) {
	e.mu.Lock()
	var replaced *StopResult
	if prev, ok := e.timers[userID]; ok {
		prev.cancel()
		elapsed := e.elapsed(prev)
		prev.status = model.TimerStopped
		delete(e.timers, userID)
		replaced = &StopResult{
			Record:            prev.record(),
			Actual:            elapsed,
			ActualMinutes:     int(math.Round(elapsed.Minutes())),
			CompletionPercent: completionPercent(elapsed, prev.planned),
		}
		e.log.Warn().Str("user_id", userID).Str("replaced_session", prev.sessionID).Msg("replacing live timer")
	}
	tm := &timer{
		userID:         userID,
		sessionID:      sessionID,
		phase:          phase,
		plannedMinutes: plannedMinutes,
		planned:        planned,
		startedAt:      e.now(),
		status:         model.TimerRunning,
		cyclePosition:  maxInt(meta.CyclePos, 1),
		totalCycles:    meta.TotalCycles,
		preset:         meta.Preset,
		accelerated:    meta.Accelerated,
		chatID:         meta.ChatID,
	}
	e.timers[userID] = tm
	e.schedule(tm)
	rec := tm.record()
	e.mu.Unlock()

	e.log.Info().
		Str("user_id", userID).
		Str("session_id", sessionID).
		Str("phase", string(phase)).
		Int("planned_minutes", plannedMinutes).
		Bool("accelerated", meta.Accelerated).
		Msg("timer started")
	return rec, replaced
}

// Pause freezes a running timer and cancels its expiry watcher.
func (e *Engine) Pause(userID string) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tm, ok := e.timers[userID]
	if !ok {
		return Record{}, model.ErrNoActiveTimer
	}
	if tm.status != model.TimerRunning {
		return Record{}, model.ErrInvalidTransition
	}
	tm.cancel()
	tm.pausedAt = e.now()
	tm.status = model.TimerPaused
	return tm.record(), nil
}

// Resume folds the finished pause interval into the accumulated pause total
// and reschedules the expiry watcher.
func (e *Engine) Resume(userID string) (Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tm, ok := e.timers[userID]
	if !ok {
		return Record{}, model.ErrNoActiveTimer
	}
	if tm.status != model.TimerPaused {
		return Record{}, model.ErrInvalidTransition
	}
	tm.accumulatedPause += e.now().Sub(tm.pausedAt)
	tm.pausedAt = time.Time{}
	tm.status = model.TimerRunning
	e.schedule(tm)
	return tm.record(), nil
}

// Stop ends a running or paused timer early and removes it from the live
// set. The result carries elapsed time at the moment of stop and the
// completion percentage against the planned duration.
func (e *Engine) Stop(userID string) (StopResult, error) {
	e.mu.Lock()
	tm, ok := e.timers[userID]
	if !ok {
		e.mu.Unlock()
		return StopResult{}, model.ErrNoActiveTimer
	}
	tm.cancel()
	elapsed := e.elapsed(tm)
	tm.status = model.TimerStopped
	delete(e.timers, userID)
	rec := tm.record()
	e.mu.Unlock()

	res := StopResult{
		Record:            rec,
		Actual:            elapsed,
		ActualMinutes:     int(math.Round(elapsed.Minutes())),
		CompletionPercent: completionPercent(elapsed, tm.planned),
	}
	e.log.Info().
		Str("user_id", userID).
		Str("session_id", rec.SessionID).
		Int("completion_percent", res.CompletionPercent).
		Msg("timer stopped")
	return res, nil
}

// Snapshot returns a derived, non-mutating view of the user's live timer.
// Elapsed, remaining and progress are computed from timestamps at call time.
func (e *Engine) Snapshot(userID string) (*model.TimerSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tm, ok := e.timers[userID]
	if !ok {
		return nil, model.ErrNoActiveTimer
	}
	elapsed := e.elapsed(tm)
	remaining := tm.planned - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return &model.TimerSnapshot{
		UserID:          tm.userID,
		SessionID:       tm.sessionID,
		Phase:           tm.phase,
		Status:          tm.status,
		PlannedMinutes:  tm.plannedMinutes,
		Planned:         tm.planned,
		Elapsed:         elapsed,
		Remaining:       remaining,
		ElapsedMs:       elapsed.Milliseconds(),
		RemainingMs:     remaining.Milliseconds(),
		ProgressPercent: completionPercent(elapsed, tm.planned),
		CyclePosition:   tm.cyclePosition,
		TotalCycles:     tm.totalCycles,
		StartedAt:       tm.startedAt,
	}, nil
}

// ActiveCount reports the number of live timers.
func (e *Engine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}

// Events exposes the completion stream. Each natural expiry is published
// exactly once, after the record left the live set.
func (e *Engine) Events() <-chan Completion {
	return e.events
}

// Shutdown cancels every expiry watcher, waits for them to exit and closes
// the completion stream. The engine must not be used afterwards.
func (e *Engine) Shutdown() {
	e.cancel()
	e.mu.Lock()
	for _, tm := range e.timers {
		tm.cancel()
	}
	e.mu.Unlock()
	e.wg.Wait()
	close(e.events)
}

// elapsed implements the core arithmetic: now−startedAt−accumulatedPause
// while running, frozen at pausedAt while paused. Callers hold e.mu.
func (e *Engine) elapsed(tm *timer) time.Duration {
	if tm.status == model.TimerPaused {
		return tm.pausedAt.Sub(tm.startedAt) - tm.accumulatedPause
	}
	return e.now().Sub(tm.startedAt) - tm.accumulatedPause
}

// schedule starts the expiry watcher for a running timer. Callers hold e.mu.
func (e *Engine) schedule(tm *timer) {
	ctx, cancel := context.WithCancel(e.ctx)
	tm.cancel = cancel
	tick := e.tick
	if tick <= 0 {
		tick = time.Second
		if tm.planned < time.Minute {
			// accelerated timers finish in seconds; check more often
			tick = 50 * time.Millisecond
		}
	}
	e.wg.Add(1)
	go e.watch(ctx, tm.userID, tick)
}

func (e *Engine) watch(ctx context.Context, userID string, tick time.Duration) {
	defer e.wg.Done()
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if e.checkExpiry(userID) {
				return
			}
		}
	}
}

// checkExpiry detects natural expiry for one user's timer. It reports true
// when the watcher should exit. A panic here must never take down the
// process: it is recovered, logged, and the timer force-stopped so no
// unreachable live record lingers.
func (e *Engine) checkExpiry(userID string) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("user_id", userID).Msg("expiry check panicked; force-stopping timer")
			e.forceStop(userID)
			done = true
		}
	}()

	rec, completedAt, state := e.expire(userID)
	switch state {
	case timerGone:
		return true
	case timerLive:
		return false
	}

	e.publish(Completion{Record: rec, CompletedAt: completedAt})
	e.log.Info().
		Str("user_id", userID).
		Str("session_id", rec.SessionID).
		Str("phase", string(rec.Phase)).
		Msg("timer completed")
	return true
}

type expiryState int

const (
	timerGone expiryState = iota
	timerLive
	timerExpired
)

// expire runs the locked part of the expiry check. The deferred unlock
// matters: a panicking clock must not leave the mutex held, or the recovery
// path above could never force-stop the timer.
func (e *Engine) expire(userID string) (Record, time.Time, expiryState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tm, ok := e.timers[userID]
	if !ok {
		return Record{}, time.Time{}, timerGone
	}
	if tm.status != model.TimerRunning || e.elapsed(tm) < tm.planned {
		return Record{}, time.Time{}, timerLive
	}

	// Expired: mark completed and remove before anyone can observe the
	// record as both completed and still live.
	tm.status = model.TimerCompleted
	delete(e.timers, userID)
	tm.cancel()
	return tm.record(), e.now(), timerExpired
}

// forceStop removes a timer after an unrecoverable tick failure.
func (e *Engine) forceStop(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tm, ok := e.timers[userID]; ok {
		tm.cancel()
		tm.status = model.TimerStopped
		delete(e.timers, userID)
	}
}

func (tm *timer) record() Record {
	rec := Record{
		UserID:           tm.userID,
		SessionID:        tm.sessionID,
		Phase:            tm.phase,
		PlannedMinutes:   tm.plannedMinutes,
		Planned:          tm.planned,
		StartedAt:        tm.startedAt,
		AccumulatedPause: tm.accumulatedPause,
		Status:           tm.status,
		CyclePosition:    tm.cyclePosition,
		TotalCycles:      tm.totalCycles,
		Preset:           tm.preset,
		Accelerated:      tm.accelerated,
		ChatID:           tm.chatID,
	}
	if !tm.pausedAt.IsZero() {
		t := tm.pausedAt
		rec.PausedAt = &t
	}
	return rec
}

func completionPercent(elapsed, planned time.Duration) int {
	if planned <= 0 {
		return 0
	}
	pct := int(elapsed * 100 / planned)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
