package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadRecalculate = "scoring.lead.recalculate"

const TaskAutomationSweep = "scoring.automation.sweep"

type LeadRecalculatePayload struct {
	LeadID      string `json:"leadId"`
	TriggeredBy string `json:"triggeredBy"`
}

func NewLeadRecalculateTask(payload LeadRecalculatePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadRecalculate, data), nil
}

func ParseLeadRecalculatePayload(task *asynq.Task) (LeadRecalculatePayload, error) {
	var payload LeadRecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadRecalculatePayload{}, err
	}
	return payload, nil
}

func NewAutomationSweepTask() *asynq.Task {
	return asynq.NewTask(TaskAutomationSweep, nil)
}
