package api

import (
	"context"
	"fmt"

	"github.com/costwatch/costwatch/internal/api/handlers"
	"github.com/costwatch/costwatch/internal/api/router"
	"github.com/costwatch/costwatch/internal/config"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/repository/sqlite"
	"github.com/costwatch/costwatch/internal/services"
	"github.com/costwatch/costwatch/internal/store"
	"github.com/costwatch/costwatch/internal/worker"
)

// Run wires the whole application and serves HTTP until ctx is
// cancelled: config, logging, SQLite persistence, services, the chi
// router and the background rescan worker.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	defer db.Close()

	ts := store.New()
	costService := services.NewCostService(ts, db, log)
	anomalyService := services.NewAnomalyService(ts, db, log, services.DetectionConfig{
		Window:         cfg.Detection.Window,
		TrendThreshold: cfg.Detection.TrendThreshold,
		Sensitivity:    cfg.Detection.Sensitivity,
		Seed:           cfg.Detection.Seed,
	})

	if err := costService.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate cost series: %w", err)
	}

	handler := router.New(router.Config{
		Logger:           log,
		HealthHandler:    handlers.NewHealthHandler(db, log),
		CostHandler:      handlers.NewCostHandler(costService, cfg.Detection.Seed, log),
		DetectionHandler: handlers.NewDetectionHandler(anomalyService, db, log),
		RateLimitPerSec:  100,
		RateLimitBurst:   200,
	})

	scanner := worker.NewDetectScanner(anomalyService, cfg.Detection.RescanInterval, log)
	go scanner.Start(ctx)

	return NewServer(cfg.Server, handler, log).Start(ctx)
}
