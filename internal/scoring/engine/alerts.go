package engine

import (
	"context"
	"fmt"

	"leadgen_backend/internal/events"
	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/repository"
)

// checkAlerts raises threshold alerts after a scoring pass. Both the hot-lead
// and assignment-needed alerts are edge-triggered on the old score so repeated
// passes at a steady level do not re-fire; the score-increase alert fires on
// any qualifying delta. Alert persistence failures are logged, not returned:
// a completed scoring pass is never rolled back over an alert.
func (e *Engine) checkAlerts(ctx context.Context, lead leadsrepo.Lead, oldScore, newScore int, profile repository.Profile) {
	fullName := lead.FirstName + " " + lead.LastName

	if newScore >= profile.HotLeadThreshold && oldScore < profile.HotLeadThreshold {
		threshold := profile.HotLeadThreshold
		_, err := e.cfg.CreateAlert(ctx, repository.CreateAlertParams{
			LeadID:            lead.ID,
			AlertType:         repository.AlertHotLead,
			Priority:          repository.AlertPriorityHigh,
			Title:             "Hot Lead Alert: " + fullName,
			Message:           fmt.Sprintf("Lead score reached %d (threshold: %d)", newScore, threshold),
			ThresholdValue:    &threshold,
			CurrentScore:      newScore,
			AssignedTo:        lead.AssignedTo,
			NotifySupervisors: true,
		})
		if err != nil {
			e.log.Error("failed to create hot lead alert", "lead_id", lead.ID, "error", err)
		} else {
			e.bus.Publish(ctx, events.HotLeadDetected{
				BaseEvent:  events.NewBaseEvent(),
				LeadID:     lead.ID,
				Score:      newScore,
				Threshold:  threshold,
				AssignedTo: lead.AssignedTo,
			})
		}
	}

	if increase := newScore - oldScore; increase >= 20 {
		_, err := e.cfg.CreateAlert(ctx, repository.CreateAlertParams{
			LeadID:       lead.ID,
			AlertType:    repository.AlertScoreIncrease,
			Priority:     repository.AlertPriorityMedium,
			Title:        "Score Increase: " + fullName,
			Message:      fmt.Sprintf("Lead score increased by %d points to %d", increase, newScore),
			CurrentScore: newScore,
			AssignedTo:   lead.AssignedTo,
		})
		if err != nil {
			e.log.Error("failed to create score increase alert", "lead_id", lead.ID, "error", err)
		}
	}

	if lead.AssignedTo == nil &&
		newScore >= profile.AutoAssignThreshold && oldScore < profile.AutoAssignThreshold {
		threshold := profile.AutoAssignThreshold
		_, err := e.cfg.CreateAlert(ctx, repository.CreateAlertParams{
			LeadID:            lead.ID,
			AlertType:         repository.AlertAssignmentNeeded,
			Priority:          repository.AlertPriorityHigh,
			Title:             "Assignment Needed: " + fullName,
			Message:           fmt.Sprintf("High-scoring lead (%d points) needs salesperson assignment", newScore),
			ThresholdValue:    &threshold,
			CurrentScore:      newScore,
			NotifySupervisors: true,
		})
		if err != nil {
			e.log.Error("failed to create assignment alert", "lead_id", lead.ID, "error", err)
		}
	}
}
