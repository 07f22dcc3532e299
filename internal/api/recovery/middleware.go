// Package recovery keeps a panicking handler from taking the timer service
// down: the panic is logged with its stack and the client receives a 500.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Middleware returns a router middleware bound to the service logger. Every
// request runs under a recover so one bad handler cannot kill the ticker
// goroutines sharing the process.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error().
						Interface("panic", v).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("handler panicked")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"Internal Server Error","code":500}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
