// Package timerservice wires the timer engine, store and HTTP surface into
// a runnable service.
package timerservice

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/focusflow/focusflow/internal/api"
	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/engine"
	"github.com/focusflow/focusflow/internal/health"
	"github.com/focusflow/focusflow/internal/logger"
	"github.com/focusflow/focusflow/internal/service"
	"github.com/focusflow/focusflow/internal/store"
	"github.com/focusflow/focusflow/internal/store/postgres"
	"github.com/focusflow/focusflow/internal/store/sqlite"
)

// Run starts the timer service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("timer-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("default_preset", cfg.DefaultPreset).
		Bool("accelerated", cfg.Accelerated).
		Msg("Timer service starting")

	// Root context bound to SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = st.Close() }()

	eng := engine.New(log, engine.WithEventBuffer(cfg.EventBuffer))
	svc := service.New(eng, st, log, cfg.DefaultPreset, cfg.Accelerated)
	defer svc.Close()

	// The chat routing layer subscribes here in the full bot; the service
	// itself logs completions and the recommended next phase.
	go logCompletions(svc, log)

	isHealthy := startHealthChecker(ctx, log, st)

	router := api.NewRouter(log, svc, st, isHealthy)
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.New(cfg.PostgresDSN)
	case "sqlite":
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

func startHealthChecker(ctx context.Context, log zerolog.Logger, st store.Store) func() bool {
	pinger, ok := st.(health.Pinger)
	if !ok {
		return func() bool { return true }
	}
	checker := health.NewStoreChecker(log, pinger)
	go checker.Start(ctx, 30*time.Second)
	return checker.IsHealthy
}

func logCompletions(svc *service.TimerService, log zerolog.Logger) {
	for evt := range svc.Events() {
		e := log.Info().
			Str("user_id", evt.Record.UserID).
			Str("session_id", evt.Record.SessionID).
			Str("phase", string(evt.Record.Phase))
		if evt.Next != nil {
			e = e.Str("next_phase", string(evt.Next.Phase)).
				Int("next_minutes", evt.Next.DurationMinutes).
				Int("next_position", evt.Next.CyclePosition)
		}
		e.Msg("session completed")
	}
}
