package preset

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/focusflow/focusflow/internal/model"
)

func TestLookup(t *testing.T) {
	p, err := Lookup("classic")
	if err != nil {
		t.Fatalf("Lookup(classic): %v", err)
	}
	if p.FocusMinutes != 25 || p.ShortBreakMinutes != 5 || p.LongBreakMinutes != 15 || p.CyclesBeforeLongBreak != 4 {
		t.Fatalf("unexpected classic preset: %+v", p)
	}

	if _, err := Lookup(""); err != nil {
		t.Fatalf("empty name should resolve to default: %v", err)
	}

	_, err = Lookup("nope")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("unknown preset: got %v, want ErrNotFound", err)
	}
	// the error tells the caller what is available
	if msg := err.Error(); !strings.Contains(msg, "classic") || !strings.Contains(msg, "long") || !strings.Contains(msg, "short") {
		t.Fatalf("unknown preset error does not list presets: %s", msg)
	}
}

func TestPhaseDuration(t *testing.T) {
	p, _ := Lookup("classic")

	if got := p.PhaseDuration(model.PhaseFocus, false); got != 25*time.Minute {
		t.Fatalf("focus duration = %v", got)
	}
	if got := p.PhaseDuration(model.PhaseLongBreak, false); got != 15*time.Minute {
		t.Fatalf("long break duration = %v", got)
	}
	// accelerated mode runs minutes as seconds
	if got := p.PhaseDuration(model.PhaseShortBreak, true); got != 5*time.Second {
		t.Fatalf("accelerated short break = %v", got)
	}
	// custom phases have no preset length
	if got := p.PhaseMinutes(model.PhaseCustom); got != 0 {
		t.Fatalf("custom minutes = %d", got)
	}
}
