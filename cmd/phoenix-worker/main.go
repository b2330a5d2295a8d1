package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"phoenix/internal/config"
	"phoenix/internal/db"
	"phoenix/internal/pet"

	"github.com/robfig/cron/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.StartupApplySchema {
		if err := db.ApplySchema(ctx, pool); err != nil {
			logger.Error("apply schema failed", "err", err)
			os.Exit(1)
		}
	}

	svc := pet.NewService(pool, logger)

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("PHOENIX_WORKER_RUN_ONCE")), "true")
	if runOnce {
		reset, err := svc.DailyReset(ctx)
		if err != nil {
			logger.Error("daily reset failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed", "pets_reset", reset)
		return
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.ResetSchedule, func() {
		reset, err := svc.DailyReset(ctx)
		if err != nil {
			logger.Error("daily reset failed", "err", err)
			return
		}
		logger.Info("daily reset complete", "pets_reset", reset)
	})
	if err != nil {
		logger.Error("invalid reset schedule", "schedule", cfg.ResetSchedule, "err", err)
		os.Exit(1)
	}

	c.Start()
	logger.Info("worker started", "schedule", cfg.ResetSchedule)
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("worker shutdown")
}
