package store

import (
	"context"

	"github.com/focusflow/focusflow/internal/model"
)

// SessionEvent names the lifecycle event being counted into a daily row.
type SessionEvent string

const (
	EventStarted   SessionEvent = "started"
	EventCompleted SessionEvent = "completed"
	EventStopped   SessionEvent = "stopped"
)

// Store exposes persistence operations required by the timer engine.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Sessions() Sessions
	Days() Days
	Close() error
}

// Sessions is the append-only collection of session rows. A session is
// created active when its timer starts and finalized exactly once; Finalize
// on an already-finalized session leaves the row untouched and reports
// model.ErrDuplicateCompletion so callers can absorb the duplicate.
type Sessions interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	Finalize(ctx context.Context, sessionID string, completed bool, actualSeconds int) error
	GetByID(ctx context.Context, sessionID string) (*model.Session, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.Session, error)
}

// Days is the upsert collection of per-user-per-day counters. Increment must
// be an atomic upsert-increment, not read-then-write, so it tolerates the
// store being shared with out-of-band jobs.
type Days interface {
	Increment(ctx context.Context, userID, day string, phase model.PhaseType, event SessionEvent, focusMinutes int) error
	Get(ctx context.Context, userID, day string) (*model.DailyStats, error)
	Range(ctx context.Context, userID, from, to string) ([]*model.DailyStats, error)
}

// CounterDelta maps one (phase, event) pair onto the daily counter columns.
// Shared by the drivers so both dialects increment identically.
type CounterDelta struct {
	FocusStarted   int
	FocusCompleted int
	FocusStopped   int
	BreakStarted   int
	BreakCompleted int
	BreakStopped   int
	FocusMinutes   int
}

// DeltaFor computes the column increments for one counted event.
func DeltaFor(phase model.PhaseType, event SessionEvent, focusMinutes int) CounterDelta {
	var d CounterDelta
	// custom phases count toward focus
	focus := !phase.IsBreak()
	switch event {
	case EventStarted:
		if focus {
			d.FocusStarted = 1
		} else {
			d.BreakStarted = 1
		}
	case EventCompleted:
		if focus {
			d.FocusCompleted = 1
			d.FocusMinutes = focusMinutes
		} else {
			d.BreakCompleted = 1
		}
	case EventStopped:
		if focus {
			d.FocusStopped = 1
			d.FocusMinutes = focusMinutes
		} else {
			d.BreakStopped = 1
		}
	}
	return d
}
