package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/internal/audit"
	"github.com/dutytrack/dutytrack/internal/deptaction"
	"github.com/dutytrack/dutytrack/internal/quotacycle"
	"github.com/dutytrack/dutytrack/internal/shift"
	"github.com/dutytrack/dutytrack/internal/transport"
)

// DutyHandler is the read-only ops surface over the ledgers. Mutations go
// through the bot commands, not this API.
type DutyHandler struct {
	*transport.BaseHandler
	shifts  *shift.Service
	cycles  *quotacycle.Service
	actions *deptaction.Service
	audits  *audit.Service
}

func NewDutyHandler(shifts *shift.Service, cycles *quotacycle.Service, actions *deptaction.Service, audits *audit.Service, logger *slog.Logger) *DutyHandler {
	return &DutyHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		shifts:      shifts,
		cycles:      cycles,
		actions:     actions,
		audits:      audits,
	}
}

func (h *DutyHandler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteError(w, appErr.StatusCode, appErr.Message)
		return
	}
	switch {
	case errors.Is(err, internal.ErrGuildNotFound):
		h.WriteError(w, http.StatusNotFound, "guild not configured")
	case errors.Is(err, shift.ErrShiftNotFound):
		h.WriteError(w, http.StatusNotFound, "shift not found")
	case errors.Is(err, deptaction.ErrActionNotFound):
		h.WriteError(w, http.StatusNotFound, "action not found")
	default:
		h.Logger.Error("unexpected service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// GetActiveCycle returns the guild's single active quota cycle.
func (h *DutyHandler) GetActiveCycle(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	cycle, err := h.cycles.ActiveCycle(guildID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if cycle == nil {
		h.WriteError(w, http.StatusNotFound, "no active quota cycle")
		return
	}
	h.WriteJSON(w, http.StatusOK, cycle)
}

// GetUserActivity returns the quota snapshot for one user in the active
// cycle.
func (h *DutyHandler) GetUserActivity(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	userID := chi.URLParam(r, "userID")

	cycle, err := h.cycles.ActiveCycle(guildID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if cycle == nil {
		h.WriteError(w, http.StatusNotFound, "no active quota cycle")
		return
	}

	report, err := h.shifts.ActivityForUser(guildID, userID, cycle.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// GetActiveShifts lists every shift currently running in the guild.
func (h *DutyHandler) GetActiveShifts(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	shifts, err := h.shifts.AllActiveShifts(guildID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"guild_id": guildID,
		"shifts":   shifts,
		"count":    len(shifts),
	})
}

// GetShift resolves a shift by row id or code.
func (h *DutyHandler) GetShift(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	ref := chi.URLParam(r, "ref")

	sh, err := h.shifts.ShiftByRef(guildID, ref)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sh)
}

// GetActiveLeaves lists every active durable status in the guild.
func (h *DutyHandler) GetActiveLeaves(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	leaves, err := h.actions.AllActiveLeaves(guildID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"guild_id": guildID,
		"leaves":   leaves,
		"count":    len(leaves),
	})
}

// GetUserHistory returns the user's personnel record, newest first.
func (h *DutyHandler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	userID := chi.URLParam(r, "userID")

	history, err := h.actions.UserHistory(guildID, userID, limitParam(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"guild_id": guildID,
		"user_id":  userID,
		"actions":  history,
	})
}

// GetAuditTail returns the most recent audit entries.
func (h *DutyHandler) GetAuditTail(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	entries, err := h.audits.Recent(r.Context(), guildID, limitParam(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"guild_id": guildID,
		"entries":  entries,
	})
}

func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
