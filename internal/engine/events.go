package engine

import (
	"time"
)

// Completion is published on the engine's event channel when a timer reaches
// zero naturally. The record has already left the live set when the event is
// visible to consumers.
type Completion struct {
	Record      Record
	CompletedAt time.Time
}

// publish enqueues without blocking; the tick loop must never stall on a
// slow consumer. A full buffer drops the event with a warning.
func (e *Engine) publish(c Completion) {
	select {
	case e.events <- c:
	default:
		e.log.Warn().
			Str("user_id", c.Record.UserID).
			Str("session_id", c.Record.SessionID).
			Msg("completion channel full, dropping event")
	}
}
