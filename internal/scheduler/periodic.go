package scheduler

import (
	"fmt"
	"log/slog"

	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// NewPeriodicScheduler registers the nightly automation sweep on the cron
// spec from config and returns the asynq scheduler ready to run.
func NewPeriodicScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*asynq.Scheduler, error) {
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

	sched := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Error("periodic_enqueue_failed", slog.String("error", err.Error()))
			}
		},
	})

	spec := cfg.GetAutomationSweepSpec()
	if _, err := sched.Register(spec, NewAutomationSweepTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register automation sweep: %w", err)
	}
	log.Info("automation_sweep_registered", slog.String("spec", spec), slog.String("queue", queue))

	return sched, nil
}
