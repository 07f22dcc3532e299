// Package service orchestrates the timer engine against the session store
// and the cycle policy. It owns the durable side of every lifecycle
// transition: a timer never exists in memory without its session row, and a
// completed timer is finalized and counted before the routing layer hears
// about it.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusflow/internal/cycle"
	"github.com/focusflow/focusflow/internal/engine"
	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/preset"
	"github.com/focusflow/focusflow/internal/store"
)

// StartRequest describes one start operation from the routing layer.
type StartRequest struct {
	UserID string `json:"userId"`
	// Phase defaults to focus when empty.
	Phase model.PhaseType `json:"phase"`
	// DurationMinutes overrides the preset phase length; required for
	// custom phases, optional otherwise.
	DurationMinutes int `json:"durationMinutes,omitempty"`
	// Preset names the active cycle policy; empty means the service default.
	Preset        string `json:"preset,omitempty"`
	CyclePosition int    `json:"cyclePosition,omitempty"`
	ChatID        int64  `json:"chatId,omitempty"`
}

// StopResponse reports a manual stop back to the routing layer.
type StopResponse struct {
	Record            engine.Record   `json:"-"`
	SessionID         string          `json:"sessionId"`
	Phase             model.PhaseType `json:"phase"`
	ActualMinutes     int             `json:"actualMinutes"`
	CompletionPercent int             `json:"completionPercent"`
	// Warning is set when the timer stopped but its session row could not be
	// finalized; the history may show the session as active until repaired.
	Warning string `json:"warning,omitempty"`
}

// Event is delivered to subscribers for every natural completion: the
// finished record, the recommended next phase (nil after a long break), and
// the day's statistics as recorded after the completion was counted.
type Event struct {
	Record      engine.Record
	CompletedAt time.Time
	Next        *model.NextPhase
	Today       *model.DailyStats
}

// TimerService drives the engine and keeps it consistent with the store.
type TimerService struct {
	eng           *engine.Engine
	store         store.Store
	log           zerolog.Logger
	defaultPreset string
	accelerated   bool
	now           func() time.Time

	events chan Event
	wg     sync.WaitGroup
}

// New wires a service over an engine and a store and starts the completion
// pump. Call Close to drain it.
func New(eng *engine.Engine, st store.Store, log zerolog.Logger, defaultPreset string, accelerated bool) *TimerService {
	s := &TimerService{
		eng:           eng,
		store:         st,
		log:           log,
		defaultPreset: defaultPreset,
		accelerated:   accelerated,
		now:           time.Now,
		events:        make(chan Event, 64),
	}
	s.wg.Add(1)
	go s.pump()
	return s
}

// Events exposes the outward completion stream consumed by the routing
// layer.
func (s *TimerService) Events() <-chan Event { return s.events }

// Start creates the durable session first and only then the in-memory
// timer: a persistence failure aborts the start and no timer appears.
func (s *TimerService) Start(ctx context.Context, req StartRequest) (engine.Record, error) {
	if req.UserID == "" {
		return engine.Record{}, fmt.Errorf("userId: %w", model.ErrValidation)
	}
	phase := req.Phase
	if phase == "" {
		phase = model.PhaseFocus
	}
	if !phase.Valid() {
		return engine.Record{}, fmt.Errorf("phase %q: %w", phase, model.ErrValidation)
	}

	presetName := req.Preset
	if presetName == "" {
		presetName = s.defaultPreset
	}
	p, err := preset.Lookup(presetName)
	if err != nil {
		return engine.Record{}, err
	}

	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = p.PhaseMinutes(phase)
	}
	if minutes <= 0 {
		return engine.Record{}, fmt.Errorf("durationMinutes required for %s phases: %w", phase, model.ErrValidation)
	}
	planned := preset.Duration(minutes, s.accelerated)

	pos := req.CyclePosition
	if pos <= 0 {
		pos = 1
	}

	sess, err := s.store.Sessions().Create(ctx, &model.Session{
		UserID:         req.UserID,
		Phase:          phase,
		PlannedMinutes: minutes,
		StartedAt:      s.now().UTC(),
		CyclePosition:  pos,
		Accelerated:    s.accelerated,
	})
	if err != nil {
		return engine.Record{}, fmt.Errorf("create session: %w", err)
	}

	s.countEvent(ctx, req.UserID, phase, store.EventStarted, 0)

	rec, replaced := s.eng.Create(req.UserID, phase, minutes, planned, sess.SessionID, engine.Meta{
		Preset:      p.Name,
		CyclePos:    pos,
		TotalCycles: p.CyclesBeforeLongBreak,
		Accelerated: s.accelerated,
		ChatID:      req.ChatID,
	})
	if replaced != nil {
		// The displaced timer counts as stopped; its session must not stay
		// active forever.
		if err := s.finalize(ctx, replaced.Record.SessionID, false, int(replaced.Actual.Seconds())); err != nil {
			s.log.Warn().Err(err).Str("session_id", replaced.Record.SessionID).Msg("finalize of replaced session failed")
		}
		s.countEvent(ctx, req.UserID, replaced.Record.Phase, store.EventStopped, replaced.ActualMinutes)
	}
	return rec, nil
}

// Pause suspends the user's running timer.
func (s *TimerService) Pause(userID string) (engine.Record, error) {
	return s.eng.Pause(userID)
}

// Resume continues the user's paused timer.
func (s *TimerService) Resume(userID string) (engine.Record, error) {
	return s.eng.Resume(userID)
}

// Stop ends the timer early, finalizes its session and counts the stop. The
// in-memory timer is gone before any storage work happens, so the user-facing
// lifecycle never hangs on a storage hiccup; a finalize failure that survives
// the retry is surfaced on the response instead of failing the stop.
func (s *TimerService) Stop(ctx context.Context, userID string) (*StopResponse, error) {
	res, err := s.eng.Stop(userID)
	if err != nil {
		return nil, err
	}

	out := &StopResponse{
		Record:            res.Record,
		SessionID:         res.Record.SessionID,
		Phase:             res.Record.Phase,
		ActualMinutes:     res.ActualMinutes,
		CompletionPercent: res.CompletionPercent,
	}
	if err := s.finalize(ctx, res.Record.SessionID, false, int(res.Actual.Seconds())); err != nil {
		s.log.Warn().Err(err).Str("session_id", res.Record.SessionID).Msg("finalize after stop failed")
		out.Warning = fmt.Sprintf("session %s was not finalized: %v", res.Record.SessionID, err)
	}
	s.countEvent(ctx, userID, res.Record.Phase, store.EventStopped, res.ActualMinutes)
	return out, nil
}

// Status returns the live snapshot for the user's timer.
func (s *TimerService) Status(userID string) (*model.TimerSnapshot, error) {
	return s.eng.Snapshot(userID)
}

// Close shuts the engine down and waits for the completion pump to drain.
func (s *TimerService) Close() {
	s.eng.Shutdown()
	s.wg.Wait()
	close(s.events)
}

// pump consumes engine completions: finalize the session, count it, compute
// the next-phase recommendation and republish for the routing layer.
func (s *TimerService) pump() {
	defer s.wg.Done()
	for c := range s.eng.Events() {
		s.handleCompletion(c)
	}
}

func (s *TimerService) handleCompletion(c engine.Completion) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec := c.Record
	actual := c.CompletedAt.Sub(rec.StartedAt) - rec.AccumulatedPause
	if err := s.finalize(ctx, rec.SessionID, true, int(actual.Seconds())); err != nil {
		s.log.Warn().Err(err).Str("session_id", rec.SessionID).Msg("finalize after completion failed")
	}
	s.countEvent(ctx, rec.UserID, rec.Phase, store.EventCompleted, rec.PlannedMinutes)

	var next *model.NextPhase
	if p, err := preset.Lookup(rec.Preset); err == nil {
		next = cycle.Next(rec.Phase, rec.CyclePosition, p)
	}

	evt := Event{Record: rec, CompletedAt: c.CompletedAt, Next: next}
	if today, err := s.todayStats(ctx, rec.UserID); err == nil {
		evt.Today = today
	}

	select {
	case s.events <- evt:
	default:
		s.log.Warn().Str("user_id", rec.UserID).Msg("subscriber channel full, dropping completion event")
	}
}

// finalize retries once before surfacing the error; the in-memory timer is
// already gone at this point either way. A duplicate completion is absorbed:
// the row already reached its terminal status and stays as it is.
func (s *TimerService) finalize(ctx context.Context, sessionID string, completed bool, actualSeconds int) error {
	err := s.store.Sessions().Finalize(ctx, sessionID, completed, actualSeconds)
	if err == nil || errors.Is(err, model.ErrDuplicateCompletion) {
		return nil
	}
	s.log.Warn().Err(err).Str("session_id", sessionID).Msg("finalize failed, retrying once")
	err = s.store.Sessions().Finalize(ctx, sessionID, completed, actualSeconds)
	if err != nil && !errors.Is(err, model.ErrDuplicateCompletion) {
		return fmt.Errorf("finalize session %s: %w", sessionID, err)
	}
	return nil
}

// countEvent increments the daily counter row. Accelerated sessions are
// development aids and stay out of the statistics. Counter failures are
// logged, not surfaced: the lifecycle must not block on them.
func (s *TimerService) countEvent(ctx context.Context, userID string, phase model.PhaseType, event store.SessionEvent, focusMinutes int) {
	if s.accelerated {
		return
	}
	day := s.now().UTC().Format(model.DateFormat)
	if err := s.store.Days().Increment(ctx, userID, day, phase, event, focusMinutes); err != nil {
		s.log.Warn().Err(err).
			Str("user_id", userID).
			Str("event", string(event)).
			Msg("daily counter increment failed, retrying once")
		if err := s.store.Days().Increment(ctx, userID, day, phase, event, focusMinutes); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("daily counter increment failed")
		}
	}
}

func (s *TimerService) todayStats(ctx context.Context, userID string) (*model.DailyStats, error) {
	day := s.now().UTC().Format(model.DateFormat)
	d, err := s.store.Days().Get(ctx, userID, day)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return &model.DailyStats{UserID: userID, Day: day}, nil
		}
		return nil, err
	}
	return d, nil
}
