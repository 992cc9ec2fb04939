package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pietro-fantini/vibe-growth/internal/service"
)

// RolloverHandler triggers the period rollover batch over HTTP. The endpoint
// is meant for an external scheduler and is guarded by a static bearer token
// rather than user auth.
type RolloverHandler struct {
	rolloverService *service.RolloverService
	jobToken        string
}

func NewRolloverHandler(rolloverService *service.RolloverService, jobToken string) *RolloverHandler {
	return &RolloverHandler{
		rolloverService: rolloverService,
		jobToken:        jobToken,
	}
}

type rolloverResponse struct {
	Success         bool   `json:"success"`
	DeletedSubgoals int    `json:"deletedSubgoals"`
	ResetSubgoals   int    `json:"resetSubgoals"`
	TotalProcessed  int    `json:"totalProcessed"`
	Error           string `json:"error,omitempty"`
}

func (h *RolloverHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.jobToken != "" {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != h.jobToken {
			writeJSON(w, http.StatusUnauthorized, rolloverResponse{Success: false, Error: "invalid job token"})
			return
		}
	}

	summary, err := h.rolloverService.Run(r.Context(), time.Now())
	if err != nil {
		slog.Error("rollover run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, rolloverResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rolloverResponse{
		Success:         true,
		DeletedSubgoals: summary.DeletedSubgoals,
		ResetSubgoals:   summary.ResetSubgoals,
		TotalProcessed:  summary.TotalProcessed,
	})
}
