package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pietro-fantini/vibe-growth/internal/config"
	"github.com/pietro-fantini/vibe-growth/internal/db"
	"github.com/pietro-fantini/vibe-growth/internal/repository"
	"github.com/pietro-fantini/vibe-growth/internal/service"
)

type App struct {
	Cfg                *config.Config
	DB                 *sqlx.DB
	GoalService        *service.GoalService
	SubgoalService     *service.SubgoalService
	AggregationService *service.AggregationService
	ProgressService    *service.ProgressService
	RolloverService    *service.RolloverService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations unless they are applied out-of-band
	if cfg.AutoMigrate {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}
	}

	// Repositories
	goalRepository := repository.NewGoalRepository(database)
	subgoalRepository := repository.NewSubgoalRepository(database)
	goalLedger := repository.NewGoalLedger(database)
	subgoalLedger := repository.NewSubgoalLedger(database)

	// Services
	aggregationService := service.NewAggregationService(goalRepository, subgoalRepository, goalLedger, subgoalLedger)
	progressService := service.NewProgressService(goalRepository, subgoalRepository, goalLedger, subgoalLedger, aggregationService)
	goalService := service.NewGoalService(goalRepository, subgoalRepository, goalLedger, aggregationService)
	subgoalService := service.NewSubgoalService(subgoalRepository, goalRepository, subgoalLedger, aggregationService)
	rolloverService := service.NewRolloverService(goalRepository, subgoalRepository, goalLedger, subgoalLedger, aggregationService, progressService)

	return &App{
		Cfg:                cfg,
		DB:                 database,
		GoalService:        goalService,
		SubgoalService:     subgoalService,
		AggregationService: aggregationService,
		ProgressService:    progressService,
		RolloverService:    rolloverService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
