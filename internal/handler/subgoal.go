package handler

import (
	"log/slog"
	"net/http"

	"github.com/pietro-fantini/vibe-growth/internal/ctxkeys"
	"github.com/pietro-fantini/vibe-growth/internal/service"
)

type SubgoalHandler struct {
	subgoalService  *service.SubgoalService
	progressService *service.ProgressService
}

func NewSubgoalHandler(subgoalService *service.SubgoalService, progressService *service.ProgressService) *SubgoalHandler {
	return &SubgoalHandler{
		subgoalService:  subgoalService,
		progressService: progressService,
	}
}

type subgoalRequest struct {
	GoalID      string `json:"goalId"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	TargetCount int    `json:"targetCount"`
}

func (h *SubgoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	subgoals, err := h.subgoalService.Subgoals(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list subgoals", "error", err, "user_id", userID)
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusOK, subgoals)
}

func (h *SubgoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req subgoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subgoal, err := h.subgoalService.Create(r.Context(), userID, req.GoalID, req.Title, req.Type, req.TargetCount)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to create subgoal", "error", err, "user_id", userID, "goal_id", req.GoalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusCreated, subgoal)
}

func (h *SubgoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	subgoalID := r.PathValue("id")

	var req subgoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subgoal, err := h.subgoalService.Update(r.Context(), userID, subgoalID, req.Title, req.Type, req.TargetCount)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to update subgoal", "error", err, "user_id", userID, "subgoal_id", subgoalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusOK, subgoal)
}

// Delete handles DELETE /api/subgoals/{id}: soft-delete plus parent goal
// recalculation.
func (h *SubgoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	subgoalID := r.PathValue("id")

	err := h.progressService.DeleteSubgoal(r.Context(), service.DeleteSubgoalArgs{
		UserID:    userID,
		SubgoalID: subgoalID,
	})
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to delete subgoal", "error", err, "user_id", userID, "subgoal_id", subgoalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
