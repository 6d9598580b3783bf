package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	authrepo "leadgen_backend/internal/auth/repository"
	"leadgen_backend/internal/events"
	"leadgen_backend/internal/leads"
	"leadgen_backend/internal/scheduler"
	"leadgen_backend/internal/scoring"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/db"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side scoring wiring (no HTTP handlers required).
	leadsModule := leads.NewModule(pool, eventBus, log, val)
	users := authrepo.New(pool)
	scoringModule := scoring.NewModule(pool, leadsModule.Repository(), users, cfg, eventBus, log, val)

	worker, err := scheduler.NewWorker(cfg, scoringModule.Engine(), scoringModule.Automation(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodicScheduler(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	if err := periodic.Start(); err != nil {
		log.Error("failed to start periodic scheduler", "error", err)
		panic("failed to start periodic scheduler: " + err.Error())
	}
	defer periodic.Shutdown()

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
