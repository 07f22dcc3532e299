// Package logger provides a configured zerolog logger.
package logger

import (
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// New returns a new zerolog.Logger configured for the application.
// Call sites should use .Stack() on error events to include stacks.
func New(serviceName string) zerolog.Logger {
	// Render pkg/errors stack traces on error events; attach a stack even to
	// std errors so the panic-recovery paths always log one.
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}

	return zerolog.New(os.Stdout).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
