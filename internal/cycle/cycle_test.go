package cycle

import (
	"testing"

	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/preset"
)

func classic(t *testing.T) preset.Preset {
	t.Helper()
	p, err := preset.Lookup("classic")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	return p
}

func TestNextAfterFocus(t *testing.T) {
	p := classic(t)

	// mid-set focus completion recommends a short break at the same position
	n := Next(model.PhaseFocus, 2, p)
	if n == nil || n.Phase != model.PhaseShortBreak || n.CyclePosition != 2 || n.DurationMinutes != 5 {
		t.Fatalf("focus@2: got %+v", n)
	}

	// final focus in the set recommends the long break
	n = Next(model.PhaseFocus, 4, p)
	if n == nil || n.Phase != model.PhaseLongBreak || n.DurationMinutes != 15 {
		t.Fatalf("focus@4: got %+v", n)
	}
}

func TestNextAfterShortBreak(t *testing.T) {
	p := classic(t)
	n := Next(model.PhaseShortBreak, 2, p)
	if n == nil || n.Phase != model.PhaseFocus || n.CyclePosition != 3 || n.DurationMinutes != 25 {
		t.Fatalf("short_break@2: got %+v", n)
	}
}

func TestNextTerminalPhases(t *testing.T) {
	p := classic(t)
	if n := Next(model.PhaseLongBreak, 4, p); n != nil {
		t.Fatalf("long break should end the set, got %+v", n)
	}
	if n := Next(model.PhaseCustom, 1, p); n != nil {
		t.Fatalf("custom phases are outside the rotation, got %+v", n)
	}
}
