package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/focusflow/focusflow/internal/api/recovery"
	"github.com/focusflow/focusflow/internal/service"
	"github.com/focusflow/focusflow/internal/stats"
	"github.com/focusflow/focusflow/internal/store"
)

// NewRouter wires HTTP routes to handlers.
func NewRouter(log zerolog.Logger, svc *service.TimerService, st store.Store, isHealthy func() bool) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware(log))

	// Timer lifecycle
	timer := NewTimerHandler(svc)
	root.HandleFunc("/api/users/{userId}/timer/start", timer.StartTimer).Methods("POST")
	root.HandleFunc("/api/users/{userId}/timer/pause", timer.PauseTimer).Methods("POST")
	root.HandleFunc("/api/users/{userId}/timer/resume", timer.ResumeTimer).Methods("POST")
	root.HandleFunc("/api/users/{userId}/timer/stop", timer.StopTimer).Methods("POST")
	root.HandleFunc("/api/users/{userId}/timer", timer.GetTimer).Methods("GET")

	// Statistics and history
	statsHandler := NewStatsHandler(stats.New(st), st)
	root.HandleFunc("/api/users/{userId}/stats/today", statsHandler.GetTodayStats).Methods("GET")
	root.HandleFunc("/api/users/{userId}/stats/period", statsHandler.GetPeriodStats).Methods("GET")
	root.HandleFunc("/api/users/{userId}/sessions", statsHandler.ListSessions).Methods("GET")

	// Health
	healthHandler := NewHealthHandler(isHealthy)
	root.HandleFunc("/v0/health", healthHandler.CheckHealth).Methods("GET")

	return root
}
