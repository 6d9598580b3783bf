// Package scheduler enqueues and processes background scoring work through
// asynq. The HTTP process only enqueues; a separate worker process consumes.
package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"leadgen_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) EnqueueLeadRecalculate(ctx context.Context, payload LeadRecalculatePayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLeadRecalculateTask(payload)
	if err != nil {
		return err
	}

	// Dedup concurrent triggers for the same lead while one is still queued.
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(TaskLeadRecalculate+":"+payload.LeadID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// ScheduleRecalculate satisfies the scoring module's recalculation scheduler.
func (c *Client) ScheduleRecalculate(ctx context.Context, leadID uuid.UUID, triggeredBy string) error {
	return c.EnqueueLeadRecalculate(ctx, LeadRecalculatePayload{
		LeadID:      leadID.String(),
		TriggeredBy: triggeredBy,
	})
}

func (c *Client) EnqueueSweep(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	_, err := c.client.EnqueueContext(ctx, NewAutomationSweepTask(), asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
