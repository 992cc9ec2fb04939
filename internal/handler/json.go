package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pietro-fantini/vibe-growth/internal/period"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
	"github.com/pietro-fantini/vibe-growth/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON tolerates an empty body; RPC bodies here are optional with
// defaulted fields.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// statusForError maps service and repository errors onto HTTP statuses:
// validation failures are 400, missing or foreign-owned entities are 404,
// anything else is a storage-level 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidDelta),
		errors.Is(err, service.ErrInvalidTarget),
		errors.Is(err, service.ErrInvalidGoalType),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, period.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrGoalNotFound),
		errors.Is(err, repository.ErrSubgoalNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// messageForError hides internal details for 500s while passing through the
// user-addressable failures.
func messageForError(err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
