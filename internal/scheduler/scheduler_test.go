package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func newTestClient(t *testing.T) (*Client, *asynq.Inspector) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	opt := asynq.RedisClientOpt{Addr: mr.Addr()}
	client := &Client{client: asynq.NewClient(opt), queue: "default"}
	t.Cleanup(func() { client.Close() })

	inspector := asynq.NewInspector(opt)
	t.Cleanup(func() { inspector.Close() })

	return client, inspector
}

func TestLeadRecalculatePayloadRoundTrip(t *testing.T) {
	payload := LeadRecalculatePayload{LeadID: uuid.NewString(), TriggeredBy: "activity_logged"}

	task, err := NewLeadRecalculateTask(payload)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskLeadRecalculate {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	parsed, err := ParseLeadRecalculatePayload(task)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != payload {
		t.Fatalf("expected %+v, got %+v", payload, parsed)
	}
}

func TestParseLeadRecalculateRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskLeadRecalculate, []byte("not json"))
	if _, err := ParseLeadRecalculatePayload(task); err == nil {
		t.Fatal("expected parse error for malformed payload")
	}
}

func TestEnqueueLeadRecalculate(t *testing.T) {
	client, inspector := newTestClient(t)
	leadID := uuid.New()

	err := client.EnqueueLeadRecalculate(context.Background(), LeadRecalculatePayload{
		LeadID:      leadID.String(),
		TriggeredBy: "lead_created",
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskLeadRecalculate {
		t.Fatalf("unexpected task type %q", tasks[0].Type)
	}

	var payload LeadRecalculatePayload
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.LeadID != leadID.String() || payload.TriggeredBy != "lead_created" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestEnqueueLeadRecalculateDedup(t *testing.T) {
	client, inspector := newTestClient(t)
	ctx := context.Background()
	payload := LeadRecalculatePayload{LeadID: uuid.NewString(), TriggeredBy: "lead_created"}

	if err := client.EnqueueLeadRecalculate(ctx, payload); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	// A duplicate while the first is still pending is swallowed.
	if err := client.EnqueueLeadRecalculate(ctx, payload); err != nil {
		t.Fatalf("duplicate enqueue: %v", err)
	}

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected dedup to keep 1 pending task, got %d", len(tasks))
	}
}

func TestScheduleRecalculateAdaptsUUID(t *testing.T) {
	client, inspector := newTestClient(t)
	leadID := uuid.New()

	if err := client.ScheduleRecalculate(context.Background(), leadID, "manual"); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
}

func TestEnqueueSweep(t *testing.T) {
	client, inspector := newTestClient(t)

	if err := client.EnqueueSweep(context.Background()); err != nil {
		t.Fatalf("enqueue sweep: %v", err)
	}

	tasks, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Type != TaskAutomationSweep {
		t.Fatalf("expected 1 pending sweep task, got %+v", tasks)
	}
}

func TestNilClientIsNoop(t *testing.T) {
	var client *Client
	if err := client.EnqueueLeadRecalculate(context.Background(), LeadRecalculatePayload{}); err != nil {
		t.Fatalf("nil client enqueue: %v", err)
	}
	if err := client.EnqueueSweep(context.Background()); err != nil {
		t.Fatalf("nil client sweep: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client close: %v", err)
	}
}
