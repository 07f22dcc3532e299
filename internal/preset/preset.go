// Package preset holds the duration policy: named bundles of phase lengths
// and the cycle count before a long break.
package preset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/focusflow/focusflow/internal/model"
)

// Preset is a named bundle of phase durations and the number of focus
// cycles before a long break.
type Preset struct {
	Name                  string `json:"name"`
	FocusMinutes          int    `json:"focusMinutes"`
	ShortBreakMinutes     int    `json:"shortBreakMinutes"`
	LongBreakMinutes      int    `json:"longBreakMinutes"`
	CyclesBeforeLongBreak int    `json:"cyclesBeforeLongBreak"`
}

// DefaultName is used when no preset is requested.
const DefaultName = "classic"

var presets = map[string]Preset{
	"classic": {Name: "classic", FocusMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15, CyclesBeforeLongBreak: 4},
	"long":    {Name: "long", FocusMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 30, CyclesBeforeLongBreak: 3},
	"short":   {Name: "short", FocusMinutes: 15, ShortBreakMinutes: 3, LongBreakMinutes: 10, CyclesBeforeLongBreak: 4},
}

// Lookup returns the preset with the given name. An empty name resolves to
// the default preset.
func Lookup(name string) (Preset, error) {
	if name == "" {
		name = DefaultName
	}
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (have %s): %w", name, strings.Join(Names(), ", "), model.ErrNotFound)
	}
	return p, nil
}

// Names lists the available preset names in stable order.
func Names() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PhaseMinutes returns the configured length of a phase in minutes.
// PhaseCustom has no preset length and returns 0.
func (p Preset) PhaseMinutes(phase model.PhaseType) int {
	switch phase {
	case model.PhaseFocus:
		return p.FocusMinutes
	case model.PhaseShortBreak:
		return p.ShortBreakMinutes
	case model.PhaseLongBreak:
		return p.LongBreakMinutes
	default:
		return 0
	}
}

// PhaseDuration converts the phase's configured minutes to a wall-clock
// duration. In accelerated mode every minute runs as one second, so a full
// cycle completes in under a minute during development runs.
func (p Preset) PhaseDuration(phase model.PhaseType, accelerated bool) time.Duration {
	return Duration(p.PhaseMinutes(phase), accelerated)
}

// Duration converts planned minutes to a wall-clock duration, honoring
// accelerated mode.
func Duration(minutes int, accelerated bool) time.Duration {
	if accelerated {
		return time.Duration(minutes) * time.Second
	}
	return time.Duration(minutes) * time.Minute
}
