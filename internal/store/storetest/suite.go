package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()
	day := time.Now().UTC().Format(model.DateFormat)

	// Sessions: create starts active
	created, err := s.Sessions().Create(ctx, &model.Session{
		UserID:         userID,
		Phase:          model.PhaseFocus,
		PlannedMinutes: 25,
		CyclePosition:  1,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if created.SessionID == "" || created.Status != model.SessionActive {
		t.Fatalf("CreateSession: got %+v", created)
	}

	got, err := s.Sessions().GetByID(ctx, created.SessionID)
	if err != nil || got.UserID != userID || got.Phase != model.PhaseFocus {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}

	// Finalize completes once...
	if err := s.Sessions().Finalize(ctx, created.SessionID, true, 1500); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	got, err = s.Sessions().GetByID(ctx, created.SessionID)
	if err != nil || got.Status != model.SessionCompleted || got.ActualSeconds != 1500 || got.EndedAt == nil {
		t.Fatalf("GetByID after Finalize: got=%+v err=%v", got, err)
	}

	// ...and a second call reports the duplicate without altering the row.
	if err := s.Sessions().Finalize(ctx, created.SessionID, false, 99); !errors.Is(err, model.ErrDuplicateCompletion) {
		t.Fatalf("Finalize twice: got %v, want ErrDuplicateCompletion", err)
	}
	again, err := s.Sessions().GetByID(ctx, created.SessionID)
	if err != nil || again.Status != model.SessionCompleted || again.ActualSeconds != 1500 {
		t.Fatalf("Finalize must be a no-op when already final: got=%+v err=%v", again, err)
	}

	// Finalize on an unknown id reports not found.
	if err := s.Sessions().Finalize(ctx, uuid.New().String(), true, 1); err != model.ErrNotFound {
		t.Fatalf("Finalize unknown: got %v, want ErrNotFound", err)
	}

	// ListRecent orders newest first.
	old, err := s.Sessions().Create(ctx, &model.Session{
		UserID:         userID,
		Phase:          model.PhaseShortBreak,
		PlannedMinutes: 5,
		StartedAt:      time.Now().UTC().Add(-time.Hour),
		CyclePosition:  1,
	})
	if err != nil {
		t.Fatalf("CreateSession old: %v", err)
	}
	lst, err := s.Sessions().ListRecent(ctx, userID, 10)
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListRecent: n=%d err=%v", len(lst), err)
	}
	if lst[0].SessionID != created.SessionID || lst[1].SessionID != old.SessionID {
		t.Fatalf("ListRecent order: got %s,%s", lst[0].SessionID, lst[1].SessionID)
	}

	// Days: three completed focus sessions and one stopped one.
	for i := 0; i < 3; i++ {
		if err := s.Days().Increment(ctx, userID, day, model.PhaseFocus, store.EventCompleted, 25); err != nil {
			t.Fatalf("Increment completed: %v", err)
		}
	}
	if err := s.Days().Increment(ctx, userID, day, model.PhaseFocus, store.EventStopped, 10); err != nil {
		t.Fatalf("Increment stopped: %v", err)
	}
	d, err := s.Days().Get(ctx, userID, day)
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if d.FocusCompleted != 3 || d.TotalStopped() != 1 || d.FocusMinutes != 85 {
		t.Fatalf("daily counters: got %+v", d)
	}

	// The following day has no row of its own.
	next := time.Now().UTC().AddDate(0, 0, 1).Format(model.DateFormat)
	if _, err := s.Days().Get(ctx, userID, next); err != model.ErrNotFound {
		t.Fatalf("next day row: got %v, want ErrNotFound", err)
	}

	// Range returns rows in day order.
	prev := time.Now().UTC().AddDate(0, 0, -1).Format(model.DateFormat)
	if err := s.Days().Increment(ctx, userID, prev, model.PhaseShortBreak, store.EventCompleted, 0); err != nil {
		t.Fatalf("Increment prev day: %v", err)
	}
	rng, err := s.Days().Range(ctx, userID, prev, next)
	if err != nil || len(rng) != 2 {
		t.Fatalf("Range: n=%d err=%v", len(rng), err)
	}
	if rng[0].Day != prev || rng[1].Day != day {
		t.Fatalf("Range order: %s,%s", rng[0].Day, rng[1].Day)
	}
	if rng[0].BreakCompleted != 1 {
		t.Fatalf("prev day counters: got %+v", rng[0])
	}
}
