package routes

import (
	"net/http"
	"time"

	"github.com/pietro-fantini/vibe-growth/internal/app"
	"github.com/pietro-fantini/vibe-growth/internal/handler"
	"github.com/pietro-fantini/vibe-growth/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	goal := handler.NewGoalHandler(app.GoalService)
	subgoal := handler.NewSubgoalHandler(app.SubgoalService, app.ProgressService)
	progress := handler.NewProgressHandler(app.ProgressService)
	rollover := handler.NewRolloverHandler(app.RolloverService, app.Cfg.RolloverToken)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","time":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	// Period
	mux.HandleFunc("GET /api/period", middleware.RequireAuth(progress.CurrentPeriod))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))
	mux.HandleFunc("GET /api/goals/{id}/history", middleware.RequireAuth(goal.History))
	mux.HandleFunc("POST /api/goals/{id}/progress", middleware.RequireAuth(progress.IncrementGoal))
	mux.HandleFunc("POST /api/goals/{id}/recalculate", middleware.RequireAuth(progress.RecalculateGoal))

	// Subgoals
	mux.HandleFunc("GET /api/subgoals", middleware.RequireAuth(subgoal.List))
	mux.HandleFunc("POST /api/subgoals", middleware.RequireAuth(subgoal.Create))
	mux.HandleFunc("PUT /api/subgoals/{id}", middleware.RequireAuth(subgoal.Update))
	mux.HandleFunc("DELETE /api/subgoals/{id}", middleware.RequireAuth(subgoal.Delete))
	mux.HandleFunc("POST /api/subgoals/{id}/progress", middleware.RequireAuth(progress.IncrementSubgoal))
	mux.HandleFunc("POST /api/subgoals/{id}/decrement", middleware.RequireAuth(progress.DecrementSubgoal))

	// Progress
	mux.HandleFunc("POST /api/progress/initialize", middleware.RequireAuth(progress.InitializeMonthlyProgress))

	// Jobs (token-guarded, not user auth)
	mux.HandleFunc("POST /jobs/rollover", rollover.Run)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.Cfg.JWTSecret),
	)
}
