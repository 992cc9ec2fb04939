package handler

import (
	"log/slog"
	"net/http"

	"github.com/pietro-fantini/vibe-growth/internal/ctxkeys"
	"github.com/pietro-fantini/vibe-growth/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type goalRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	TargetCount int    `json:"targetCount"`
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goals, err := h.goalService.Goals(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list goals", "error", err, "user_id", userID)
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Create(r.Context(), userID, req.Title, req.Type, req.TargetCount)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to create goal", "error", err, "user_id", userID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Update(r.Context(), userID, goalID, req.Title, req.Type, req.TargetCount)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to update goal", "error", err, "user_id", userID, "goal_id", goalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(r.Context(), userID, goalID)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to delete goal", "error", err, "user_id", userID, "goal_id", goalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	rows, err := h.goalService.History(r.Context(), userID, goalID)
	if err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			slog.Error("failed to load goal history", "error", err, "user_id", userID, "goal_id", goalID)
		}
		writeError(w, statusForError(err), messageForError(err))
		return
	}

	writeJSON(w, http.StatusOK, rows)
}
