// Package stats derives productivity summaries from the stored daily
// counter rows.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/store"
)

// streakLookback bounds how far back the streak walk scans.
const streakLookback = 365

// PeriodSummary aggregates daily rows across a date range.
type PeriodSummary struct {
	From           string            `json:"from"`
	To             string            `json:"to"`
	ActiveDays     int               `json:"activeDays"`
	FocusStarted   int               `json:"focusStarted"`
	FocusCompleted int               `json:"focusCompleted"`
	FocusStopped   int               `json:"focusStopped"`
	FocusMinutes   int               `json:"focusMinutes"`
	CompletionRate float64           `json:"completionRate"`
	BestDay        *model.DailyStats `json:"bestDay,omitempty"`
	WorstDay       *model.DailyStats `json:"worstDay,omitempty"`
	Streak         int               `json:"streak"`
}

// Aggregator reads daily rows through the store; it never writes.
type Aggregator struct {
	store store.Store
	now   func() time.Time
}

// New creates an aggregator over the given store.
func New(st store.Store) *Aggregator {
	return &Aggregator{store: st, now: time.Now}
}

// NewWithClock is used by tests to pin "today".
func NewWithClock(st store.Store, now func() time.Time) *Aggregator {
	return &Aggregator{store: st, now: now}
}

// Today returns the current day's counter row. A user with no activity today
// gets a zero row, not an error.
func (a *Aggregator) Today(ctx context.Context, userID string) (*model.DailyStats, error) {
	day := a.now().UTC().Format(model.DateFormat)
	d, err := a.store.Days().Get(ctx, userID, day)
	if errors.Is(err, model.ErrNotFound) {
		return &model.DailyStats{UserID: userID, Day: day}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load today stats: %w", err)
	}
	return d, nil
}

// Period sums the daily rows between from and to inclusive and derives the
// completion rate, best and worst active day, and the current streak.
func (a *Aggregator) Period(ctx context.Context, userID string, from, to time.Time) (*PeriodSummary, error) {
	fromDay := from.UTC().Format(model.DateFormat)
	toDay := to.UTC().Format(model.DateFormat)
	rows, err := a.store.Days().Range(ctx, userID, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("load period stats: %w", err)
	}

	sum := &PeriodSummary{From: fromDay, To: toDay}
	started, completed := 0, 0
	for _, d := range rows {
		sum.ActiveDays++
		sum.FocusStarted += d.FocusStarted
		sum.FocusCompleted += d.FocusCompleted
		sum.FocusStopped += d.FocusStopped
		sum.FocusMinutes += d.FocusMinutes
		started += d.TotalStarted()
		completed += d.TotalCompleted()
		if sum.BestDay == nil || d.FocusCompleted > sum.BestDay.FocusCompleted {
			sum.BestDay = d
		}
		if sum.WorstDay == nil || d.FocusCompleted < sum.WorstDay.FocusCompleted {
			sum.WorstDay = d
		}
	}
	if started > 0 {
		sum.CompletionRate = float64(completed) / float64(started)
	}

	streak, err := a.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}
	sum.Streak = streak
	return sum, nil
}

// Streak counts consecutive days ending today with at least one completed
// focus session.
func (a *Aggregator) Streak(ctx context.Context, userID string) (int, error) {
	today := a.now().UTC()
	from := today.AddDate(0, 0, -streakLookback).Format(model.DateFormat)
	rows, err := a.store.Days().Range(ctx, userID, from, today.Format(model.DateFormat))
	if err != nil {
		return 0, fmt.Errorf("load streak window: %w", err)
	}

	byDay := make(map[string]*model.DailyStats, len(rows))
	for _, d := range rows {
		byDay[d.Day] = d
	}

	streak := 0
	for i := 0; i <= streakLookback; i++ {
		day := today.AddDate(0, 0, -i).Format(model.DateFormat)
		d, ok := byDay[day]
		if !ok || d.FocusCompleted == 0 {
			// today itself may still be in progress; only break the streak
			// on a missed prior day
			if i == 0 {
				continue
			}
			break
		}
		streak++
	}
	return streak, nil
}
