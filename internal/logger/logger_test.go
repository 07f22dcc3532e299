package logger

import "testing"

func TestNewIncludesServiceName(t *testing.T) {
	log := New("timer-service")
	// smoke: logging must not panic and the logger must be usable
	log.Info().Str("k", "v").Msg("test message")
}
