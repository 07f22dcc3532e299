package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/store"
	"github.com/focusflow/focusflow/internal/store/sqlite"
)

func testStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "stats_test.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
}

func day(offset int) string {
	return fixedNow().AddDate(0, 0, offset).Format(model.DateFormat)
}

func seed(t *testing.T, s store.Store, userID, day string, completedFocus, stoppedFocus int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < completedFocus; i++ {
		if err := s.Days().Increment(ctx, userID, day, model.PhaseFocus, store.EventStarted, 0); err != nil {
			t.Fatalf("seed started: %v", err)
		}
		if err := s.Days().Increment(ctx, userID, day, model.PhaseFocus, store.EventCompleted, 25); err != nil {
			t.Fatalf("seed completed: %v", err)
		}
	}
	for i := 0; i < stoppedFocus; i++ {
		if err := s.Days().Increment(ctx, userID, day, model.PhaseFocus, store.EventStarted, 0); err != nil {
			t.Fatalf("seed started: %v", err)
		}
		if err := s.Days().Increment(ctx, userID, day, model.PhaseFocus, store.EventStopped, 10); err != nil {
			t.Fatalf("seed stopped: %v", err)
		}
	}
}

func TestTodayZeroRow(t *testing.T) {
	s := testStore(t)
	a := NewWithClock(s, fixedNow)

	d, err := a.Today(context.Background(), "idle-user")
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if d.TotalStarted() != 0 || d.Day != day(0) {
		t.Fatalf("zero row: %+v", d)
	}
}

func TestPeriodSummary(t *testing.T) {
	s := testStore(t)
	a := NewWithClock(s, fixedNow)
	ctx := context.Background()

	seed(t, s, "u1", day(-2), 4, 0) // best day
	seed(t, s, "u1", day(-1), 1, 2) // worst day
	seed(t, s, "u1", day(0), 2, 0)

	sum, err := a.Period(ctx, "u1", fixedNow().AddDate(0, 0, -7), fixedNow())
	if err != nil {
		t.Fatalf("Period: %v", err)
	}
	if sum.ActiveDays != 3 {
		t.Fatalf("active days = %d", sum.ActiveDays)
	}
	if sum.FocusCompleted != 7 || sum.FocusStopped != 2 {
		t.Fatalf("totals: %+v", sum)
	}
	if sum.FocusMinutes != 7*25+2*10 {
		t.Fatalf("focus minutes = %d", sum.FocusMinutes)
	}
	// 9 started, 7 completed
	if got := sum.CompletionRate; got < 0.77 || got > 0.78 {
		t.Fatalf("completion rate = %f", got)
	}
	if sum.BestDay == nil || sum.BestDay.Day != day(-2) {
		t.Fatalf("best day: %+v", sum.BestDay)
	}
	if sum.WorstDay == nil || sum.WorstDay.Day != day(-1) {
		t.Fatalf("worst day: %+v", sum.WorstDay)
	}
	if sum.Streak != 3 {
		t.Fatalf("streak = %d, want 3", sum.Streak)
	}
}

func TestStreakBrokenByMissedDay(t *testing.T) {
	s := testStore(t)
	a := NewWithClock(s, fixedNow)
	ctx := context.Background()

	// gap at day(-2): streak is yesterday + today only
	seed(t, s, "u1", day(-4), 2, 0)
	seed(t, s, "u1", day(-3), 2, 0)
	seed(t, s, "u1", day(-1), 1, 0)
	seed(t, s, "u1", day(0), 1, 0)

	streak, err := a.Streak(ctx, "u1")
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 2 {
		t.Fatalf("streak = %d, want 2", streak)
	}
}

func TestStreakToleratesQuietToday(t *testing.T) {
	s := testStore(t)
	a := NewWithClock(s, fixedNow)
	ctx := context.Background()

	// nothing today yet, but three consecutive prior days
	seed(t, s, "u1", day(-3), 1, 0)
	seed(t, s, "u1", day(-2), 1, 0)
	seed(t, s, "u1", day(-1), 1, 0)

	streak, err := a.Streak(ctx, "u1")
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 3 {
		t.Fatalf("streak = %d, want 3", streak)
	}
}
