package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/focusflow/focusflow/internal/api/respond"
	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/stats"
	"github.com/focusflow/focusflow/internal/store"
)

// StatsHandler serves statistics and session history.
type StatsHandler struct {
	agg *stats.Aggregator
	st  store.Store
}

func NewStatsHandler(agg *stats.Aggregator, st store.Store) *StatsHandler {
	return &StatsHandler{agg: agg, st: st}
}

// todayResponse extends the raw counter row with its derived totals so
// clients do not re-implement the arithmetic.
type todayResponse struct {
	*model.DailyStats
	TotalStarted   int     `json:"totalStarted"`
	TotalCompleted int     `json:"totalCompleted"`
	TotalStopped   int     `json:"totalStopped"`
	CompletionRate float64 `json:"completionRate"`
}

func (h *StatsHandler) GetTodayStats(w http.ResponseWriter, r *http.Request) {
	d, err := h.agg.Today(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, todayResponse{
		DailyStats:     d,
		TotalStarted:   d.TotalStarted(),
		TotalCompleted: d.TotalCompleted(),
		TotalStopped:   d.TotalStopped(),
		CompletionRate: d.CompletionRate(),
	})
}

// GetPeriodStats handles GET ...?from=2025-06-01&to=2025-06-30; the range
// defaults to the last 7 days.
func (h *StatsHandler) GetPeriodStats(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -6)

	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(model.DateFormat, v)
		if err != nil {
			respond.WriteBadRequest(w, "from must be YYYY-MM-DD")
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(model.DateFormat, v)
		if err != nil {
			respond.WriteBadRequest(w, "to must be YYYY-MM-DD")
			return
		}
		to = t
	}
	if from.After(to) {
		respond.WriteBadRequest(w, "from is after to")
		return
	}

	sum, err := h.agg.Period(r.Context(), userID, from, to)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, sum)
}

func (h *StatsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			respond.WriteBadRequest(w, "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	lst, err := h.st.Sessions().ListRecent(r.Context(), userID, limit)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if lst == nil {
		lst = []*model.Session{}
	}
	respond.WriteJSON(w, http.StatusOK, lst)
}
