package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/focusflow/focusflow/internal/api/respond"
	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/service"
)

// TimerHandler exposes the timer lifecycle to the routing layer.
type TimerHandler struct {
	svc *service.TimerService
}

func NewTimerHandler(svc *service.TimerService) *TimerHandler { return &TimerHandler{svc: svc} }

type timerRecordResponse struct {
	UserID         string            `json:"userId"`
	SessionID      string            `json:"sessionId"`
	Phase          model.PhaseType   `json:"phase"`
	Status         model.TimerStatus `json:"status"`
	PlannedMinutes int               `json:"plannedMinutes"`
	CyclePosition  int               `json:"cyclePosition"`
	TotalCycles    int               `json:"totalCycles"`
	Preset         string            `json:"preset,omitempty"`
}

func (h *TimerHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var req service.StartRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "invalid json")
			return
		}
	}
	req.UserID = userID

	rec, err := h.svc.Start(r.Context(), req)
	if err != nil {
		writeTimerError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, recordResponse(rec.UserID, rec.SessionID, rec.Phase, rec.Status, rec.PlannedMinutes, rec.CyclePosition, rec.TotalCycles, rec.Preset))
}

func (h *TimerHandler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Pause(mux.Vars(r)["userId"])
	if err != nil {
		writeTimerError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, recordResponse(rec.UserID, rec.SessionID, rec.Phase, rec.Status, rec.PlannedMinutes, rec.CyclePosition, rec.TotalCycles, rec.Preset))
}

func (h *TimerHandler) ResumeTimer(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Resume(mux.Vars(r)["userId"])
	if err != nil {
		writeTimerError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, recordResponse(rec.UserID, rec.SessionID, rec.Phase, rec.Status, rec.PlannedMinutes, rec.CyclePosition, rec.TotalCycles, rec.Preset))
}

func (h *TimerHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Stop(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeTimerError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

func (h *TimerHandler) GetTimer(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Status(mux.Vars(r)["userId"])
	if err != nil {
		writeTimerError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, snap)
}

func recordResponse(userID, sessionID string, phase model.PhaseType, status model.TimerStatus, planned, pos, total int, preset string) timerRecordResponse {
	return timerRecordResponse{
		UserID:         userID,
		SessionID:      sessionID,
		Phase:          phase,
		Status:         status,
		PlannedMinutes: planned,
		CyclePosition:  pos,
		TotalCycles:    total,
		Preset:         preset,
	}
}

// writeTimerError maps engine errors onto HTTP statuses; the chat frontend
// turns these into user-facing phrasing.
func writeTimerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNoActiveTimer):
		respond.WriteNotFound(w, "no active timer")
	case errors.Is(err, model.ErrInvalidTransition):
		respond.WriteConflict(w, "timer is not in a state that allows this")
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
