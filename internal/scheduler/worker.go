package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"leadgen_backend/internal/scoring/automation"
	"leadgen_backend/internal/scoring/engine"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	engine *engine.Engine
	auto   *automation.Automation
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, eng *engine.Engine, auto *automation.Automation, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		engine: eng,
		auto:   auto,
		log:    log,
	}

	mux.HandleFunc(TaskLeadRecalculate, w.handleLeadRecalculate)
	mux.HandleFunc(TaskAutomationSweep, w.handleAutomationSweep)

	return w, nil
}

func (w *Worker) handleLeadRecalculate(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadRecalculatePayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	triggeredBy := payload.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = "scheduled"
	}

	if _, err := w.engine.Calculate(ctx, leadID, triggeredBy); err != nil {
		return err
	}
	return nil
}

func (w *Worker) handleAutomationSweep(ctx context.Context, task *asynq.Task) error {
	result, err := w.auto.Sweep(ctx)
	if err != nil {
		return err
	}

	w.log.Info("automation_sweep_done",
		slog.Int("recalculated", result.Recalculated),
		slog.Int("assigned", result.Assigned),
		slog.Int("priorities_updated", result.PrioritiesUpdated),
		slog.Int("qualified", result.Qualified),
		slog.Int("follow_ups_scheduled", result.FollowUpsScheduled),
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", slog.String("error", err.Error()))
	}
}
