package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pietro-fantini/vibe-growth/internal/app"
	"github.com/pietro-fantini/vibe-growth/internal/config"
	"github.com/pietro-fantini/vibe-growth/internal/logger"
	"github.com/pietro-fantini/vibe-growth/internal/period"
)

// The worker polls on a fixed interval and fires the rollover during the
// final tick of each period, when the next tick would already land in the
// following one. The run has to happen inside the ending period: the job
// reads that period's ledger rows to decide which one-time subgoals to
// remove, so a run after the boundary finds nothing left to clean up.
func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	slog.Info("starting rollover worker", "interval", cfg.RolloverInterval)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(cfg.RolloverInterval)
	defer ticker.Stop()

	var lastTriggered period.Key

	// Check once at startup in case the process comes up inside a period's
	// final window.
	lastTriggered = maybeRun(ctx, app, cfg.RolloverInterval, lastTriggered)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lastTriggered = maybeRun(ctx, app, cfg.RolloverInterval, lastTriggered)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("rollover worker stopped")
}

// shouldTrigger reports whether now falls inside a period's final interval,
// i.e. the next tick would land in the following period.
func shouldTrigger(now time.Time, interval time.Duration) bool {
	return period.Current(now) != period.Current(now.Add(interval))
}

// maybeRun fires the rollover when the tick is boundary-adjacent and the
// period was not already handled. The job itself tolerates repeats; the
// lastTriggered guard only avoids pointless re-runs when the interval is
// short. Returns the last period a run succeeded for, so a failed run is
// retried on the next qualifying tick.
func maybeRun(ctx context.Context, app *app.App, interval time.Duration, lastTriggered period.Key) period.Key {
	now := time.Now()
	if !shouldTrigger(now, interval) {
		return lastTriggered
	}

	current := period.Current(now)
	if current == lastTriggered {
		return lastTriggered
	}

	summary, err := app.RolloverService.Run(ctx, now)
	if err != nil {
		slog.Error("rollover run failed", "error", err)
		return lastTriggered
	}

	slog.Info("rollover run finished",
		"period", current,
		"deleted_subgoals", summary.DeletedSubgoals,
		"reset_subgoals", summary.ResetSubgoals,
		"goals_seeded", summary.GoalsSeeded,
	)
	return current
}
