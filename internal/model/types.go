package model

import "time"

// PhaseType classifies one timer run within a focus/break rotation.
type PhaseType string

const (
	PhaseFocus      PhaseType = "focus"
	PhaseShortBreak PhaseType = "short_break"
	PhaseLongBreak  PhaseType = "long_break"
	PhaseCustom     PhaseType = "custom"
)

// IsBreak reports whether the phase is a short or long break.
func (p PhaseType) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// Valid reports whether p is one of the known phase types.
func (p PhaseType) Valid() bool {
	switch p {
	case PhaseFocus, PhaseShortBreak, PhaseLongBreak, PhaseCustom:
		return true
	}
	return false
}

// TimerStatus is the lifecycle state of an in-memory timer.
type TimerStatus string

const (
	TimerRunning   TimerStatus = "running"
	TimerPaused    TimerStatus = "paused"
	TimerStopped   TimerStatus = "stopped"
	TimerCompleted TimerStatus = "completed"
)

// Session status values for the durable record.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionStopped   = "stopped"
)

// DateFormat is the calendar-day key used by daily statistics rows.
const DateFormat = "2006-01-02"

// Session is the durable record of one phase's lifetime. It is created when
// the timer starts and finalized exactly once when the timer ends; after
// finalization it is immutable.
type Session struct {
	SessionID      string     `json:"sessionId"`
	UserID         string     `json:"userId"`
	Phase          PhaseType  `json:"phase"`
	PlannedMinutes int        `json:"plannedMinutes"`
	ActualSeconds  int        `json:"actualSeconds"`
	StartedAt      time.Time  `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt,omitempty"`
	Status         string     `json:"status"`
	CyclePosition  int        `json:"cyclePosition"`
	Accelerated    bool       `json:"accelerated,omitempty"`
}

// Finalized reports whether the session has reached a terminal status.
func (s *Session) Finalized() bool {
	return s.Status == SessionCompleted || s.Status == SessionStopped
}

// DailyStats is one per-user-per-day counter row. Counters only ever
// increase within a day; a new day gets a fresh row.
type DailyStats struct {
	UserID         string `json:"userId"`
	Day            string `json:"day"`
	FocusStarted   int    `json:"focusStarted"`
	FocusCompleted int    `json:"focusCompleted"`
	FocusStopped   int    `json:"focusStopped"`
	BreakStarted   int    `json:"breakStarted"`
	BreakCompleted int    `json:"breakCompleted"`
	BreakStopped   int    `json:"breakStopped"`
	FocusMinutes   int    `json:"focusMinutes"`
}

// TotalStarted sums started counters across phase groups.
func (d *DailyStats) TotalStarted() int { return d.FocusStarted + d.BreakStarted }

// TotalCompleted sums completed counters across phase groups.
func (d *DailyStats) TotalCompleted() int { return d.FocusCompleted + d.BreakCompleted }

// TotalStopped sums stopped counters across phase groups.
func (d *DailyStats) TotalStopped() int { return d.FocusStopped + d.BreakStopped }

// CompletionRate is completed/started for the day, in [0,1].
func (d *DailyStats) CompletionRate() float64 {
	started := d.TotalStarted()
	if started == 0 {
		return 0
	}
	return float64(d.TotalCompleted()) / float64(started)
}

// TimerSnapshot is a read-time view of a live timer. Elapsed, Remaining and
// ProgressPercent are derived from timestamps when the snapshot is taken and
// are never stored.
type TimerSnapshot struct {
	UserID          string        `json:"userId"`
	SessionID       string        `json:"sessionId"`
	Phase           PhaseType     `json:"phase"`
	Status          TimerStatus   `json:"status"`
	PlannedMinutes  int           `json:"plannedMinutes"`
	Planned         time.Duration `json:"-"`
	Elapsed         time.Duration `json:"-"`
	Remaining       time.Duration `json:"-"`
	ElapsedMs       int64         `json:"elapsedMs"`
	RemainingMs     int64         `json:"remainingMs"`
	ProgressPercent int           `json:"progressPercent"`
	CyclePosition   int           `json:"cyclePosition"`
	TotalCycles     int           `json:"totalCycles"`
	StartedAt       time.Time     `json:"startedAt"`
}

// NextPhase is the cycle policy's recommendation for the session that should
// follow a completed one.
type NextPhase struct {
	Phase           PhaseType `json:"phase"`
	DurationMinutes int       `json:"durationMinutes"`
	CyclePosition   int       `json:"cyclePosition"`
}
