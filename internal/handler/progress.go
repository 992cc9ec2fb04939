package handler

import (
	"log/slog"
	"net/http"

	"github.com/pietro-fantini/vibe-growth/internal/ctxkeys"
	"github.com/pietro-fantini/vibe-growth/internal/service"
)

// ProgressHandler exposes the counter RPCs: increment goal, increment and
// decrement subgoal, recalculate, period lookup, and monthly initialization.
type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

type incrementRequest struct {
	IncrementBy int `json:"incrementBy"`
}

type decrementRequest struct {
	DecrementBy int `json:"decrementBy"`
}

func (h *ProgressHandler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"period": h.progressService.CurrentPeriod().String(),
	})
}

func (h *ProgressHandler) IncrementGoal(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	req := incrementRequest{IncrementBy: 1}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	row, err := h.progressService.IncrementGoal(r.Context(), service.IncrementGoalArgs{
		UserID: userID,
		GoalID: goalID,
		By:     req.IncrementBy,
	})
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to increment goal", "error", err, "user_id", userID, "goal_id", goalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusOK, row)
}

func (h *ProgressHandler) IncrementSubgoal(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	subgoalID := r.PathValue("id")

	req := incrementRequest{IncrementBy: 1}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.progressService.IncrementSubgoal(r.Context(), service.IncrementSubgoalArgs{
		UserID:    userID,
		SubgoalID: subgoalID,
		By:        req.IncrementBy,
	})
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to increment subgoal", "error", err, "user_id", userID, "subgoal_id", subgoalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProgressHandler) DecrementSubgoal(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	subgoalID := r.PathValue("id")

	req := decrementRequest{DecrementBy: 1}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.progressService.DecrementSubgoal(r.Context(), service.DecrementSubgoalArgs{
		UserID:    userID,
		SubgoalID: subgoalID,
		By:        req.DecrementBy,
	})
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to decrement subgoal", "error", err, "user_id", userID, "subgoal_id", subgoalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecalculateGoal rebuilds a goal's current-period counter from its subgoals.
func (h *ProgressHandler) RecalculateGoal(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	err := h.progressService.RecalculateGoal(r.Context(), userID, goalID)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to recalculate goal", "error", err, "user_id", userID, "goal_id", goalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProgressHandler) InitializeMonthlyProgress(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	err := h.progressService.InitializeMonthlyProgress(r.Context(), userID)
	if err != nil {
		slog.Error("failed to initialize monthly progress", "error", err, "user_id", userID)
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
