// Package cycle decides what session should follow a completed one within a
// preset's focus/break rotation.
package cycle

import (
	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/preset"
)

// Next computes the recommended phase after a completed one.
//
// Completing a focus phase recommends the short break at the same cycle
// position, or the long break when the position reached the preset's cycle
// count. Completing a short break recommends focus at the next position.
// Completing a long break ends the set: the result is nil and the caller
// decides whether to begin a fresh set at position 1. Custom phases sit
// outside the rotation and produce no recommendation.
func Next(phase model.PhaseType, cyclePosition int, p preset.Preset) *model.NextPhase {
	switch phase {
	case model.PhaseFocus:
		if cyclePosition >= p.CyclesBeforeLongBreak {
			return &model.NextPhase{
				Phase:           model.PhaseLongBreak,
				DurationMinutes: p.LongBreakMinutes,
				CyclePosition:   cyclePosition,
			}
		}
		return &model.NextPhase{
			Phase:           model.PhaseShortBreak,
			DurationMinutes: p.ShortBreakMinutes,
			CyclePosition:   cyclePosition,
		}
	case model.PhaseShortBreak:
		return &model.NextPhase{
			Phase:           model.PhaseFocus,
			DurationMinutes: p.FocusMinutes,
			CyclePosition:   cyclePosition + 1,
		}
	default:
		return nil
	}
}
