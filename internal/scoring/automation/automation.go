// Package automation runs the batch lead workflows: auto-assignment,
// priority bucketing, qualification, follow-up scheduling and bulk
// rescoring. Sweeps are tolerant of per-lead failures; a bad row is
// logged and skipped, never fatal for the batch.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	authrepo "leadgen_backend/internal/auth/repository"
	"leadgen_backend/internal/events"
	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/engine"
	"leadgen_backend/internal/scoring/repository"
	appconfig "leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

const bulkRecalculateWorkers = 8

// LeadStore is the lead access the sweeps need.
type LeadStore interface {
	ListActive(ctx context.Context) ([]leadsrepo.Lead, error)
	ListUnassignedAbove(ctx context.Context, minScore int) ([]leadsrepo.Lead, error)
	ListWithoutFollowUp(ctx context.Context) ([]leadsrepo.Lead, error)
	Assign(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error
	UpdatePriority(ctx context.Context, id uuid.UUID, priority string) error
	MarkQualified(ctx context.Context, id uuid.UUID) error
	SetNextFollowUp(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateActivity(ctx context.Context, params leadsrepo.CreateActivityParams) (leadsrepo.Activity, error)
}

// UserStore supplies assignment candidates.
type UserStore interface {
	ListActiveSalespeople(ctx context.Context) ([]authrepo.User, error)
}

// ProfileStore supplies the thresholds the sweeps run against.
type ProfileStore interface {
	GetDefaultProfile(ctx context.Context) (repository.Profile, error)
}

// Scorer recalculates a single lead.
type Scorer interface {
	Calculate(ctx context.Context, leadID uuid.UUID, triggeredBy string) (engine.Breakdown, error)
}

type Automation struct {
	leads    LeadStore
	users    UserStore
	profiles ProfileStore
	scorer   Scorer
	cfg      appconfig.AutomationConfig
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(leads LeadStore, users UserStore, profiles ProfileStore, scorer Scorer, cfg appconfig.AutomationConfig, bus events.Bus, log *logger.Logger) *Automation {
	return &Automation{
		leads:    leads,
		users:    users,
		profiles: profiles,
		scorer:   scorer,
		cfg:      cfg,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// QualifyThreshold is the score at which leads are flagged qualified. Unlike
// the assignment threshold it is an operator setting, not profile data.
func (a *Automation) QualifyThreshold() int {
	return a.cfg.GetQualifyThreshold()
}

// SweepResult reports what one full sweep changed.
type SweepResult struct {
	Recalculated       int `json:"recalculated"`
	Assigned           int `json:"assigned"`
	PrioritiesUpdated  int `json:"prioritiesUpdated"`
	Qualified          int `json:"qualified"`
	FollowUpsScheduled int `json:"followUpsScheduled"`
}

// Sweep runs every batch workflow in order against the default profile's
// thresholds. Rescoring runs first so the downstream steps see fresh scores.
func (a *Automation) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		result SweepResult
		err    error
	)

	if result.Recalculated, err = a.BulkRecalculate(ctx); err != nil {
		return result, err
	}
	if result.Assigned, err = a.AutoAssignLeads(ctx, a.AssignThreshold(ctx)); err != nil {
		return result, err
	}
	if result.PrioritiesUpdated, err = a.UpdateLeadPriorities(ctx); err != nil {
		return result, err
	}
	if result.Qualified, err = a.MarkQualifiedLeads(ctx, a.cfg.GetQualifyThreshold()); err != nil {
		return result, err
	}
	if result.FollowUpsScheduled, err = a.ScheduleFollowUps(ctx); err != nil {
		return result, err
	}

	return result, nil
}

// AssignThreshold resolves the auto-assignment cutoff from the default
// profile, falling back to the configured threshold when no profile resolves.
func (a *Automation) AssignThreshold(ctx context.Context) int {
	profile, err := a.profiles.GetDefaultProfile(ctx)
	if err != nil {
		a.log.Warn("default_profile_unresolved",
			slog.String("error", err.Error()),
			slog.Int("fallback_threshold", a.cfg.GetAutoAssignThreshold()),
		)
		return a.cfg.GetAutoAssignThreshold()
	}
	return profile.AutoAssignThreshold
}

// AutoAssignLeads distributes unassigned leads at or above the threshold
// round-robin across active salespeople. Each assignment is recorded as a
// note activity on the lead.
func (a *Automation) AutoAssignLeads(ctx context.Context, threshold int) (int, error) {
	leads, err := a.leads.ListUnassignedAbove(ctx, threshold)
	if err != nil {
		return 0, err
	}
	if len(leads) == 0 {
		return 0, nil
	}

	salespeople, err := a.users.ListActiveSalespeople(ctx)
	if err != nil {
		return 0, err
	}
	if len(salespeople) == 0 {
		a.log.Warn("auto_assign_skipped", slog.String("reason", "no active salespeople"), slog.Int("leads", len(leads)))
		return 0, nil
	}

	assigned := 0
	skipped := 0
	for i, lead := range leads {
		owner := salespeople[i%len(salespeople)]

		if err := a.leads.Assign(ctx, lead.ID, &owner.ID); err != nil {
			a.log.Error("auto_assign_failed", slog.String("lead_id", lead.ID.String()), slog.String("error", err.Error()))
			skipped++
			continue
		}

		if _, err := a.leads.CreateActivity(ctx, leadsrepo.CreateActivityParams{
			LeadID:       lead.ID,
			ActivityType: leadsrepo.ActivityNote,
			Title:        "Auto-Assignment",
			Description:  fmt.Sprintf("Automatically assigned to %s based on lead score %d", owner.FullName, lead.Score),
			Outcome:      leadsrepo.OutcomeSuccessful,
		}); err != nil {
			a.log.Error("auto_assign_note_failed", slog.String("lead_id", lead.ID.String()), slog.String("error", err.Error()))
		}

		a.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			NewOwner:  &owner.ID,
		})
		assigned++
	}

	a.log.SweepResult("auto_assign", assigned, skipped)
	return assigned, nil
}

// UpdateLeadPriorities rebuckets every active lead's priority from its
// current score. Leads already in the right bucket are left untouched.
func (a *Automation) UpdateLeadPriorities(ctx context.Context) (int, error) {
	leads, err := a.leads.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	skipped := 0
	for _, lead := range leads {
		priority := PriorityForScore(lead.Score)
		if priority == lead.Priority {
			continue
		}
		if err := a.leads.UpdatePriority(ctx, lead.ID, priority); err != nil {
			a.log.Error("priority_update_failed", slog.String("lead_id", lead.ID.String()), slog.String("error", err.Error()))
			skipped++
			continue
		}
		updated++
	}

	a.log.SweepResult("update_priorities", updated, skipped)
	return updated, nil
}

// MarkQualifiedLeads flags active leads at or above the threshold as
// qualified. The flag is monotonic; scores dropping later never clear it.
func (a *Automation) MarkQualifiedLeads(ctx context.Context, threshold int) (int, error) {
	leads, err := a.leads.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	qualified := 0
	skipped := 0
	for _, lead := range leads {
		if lead.IsQualified || lead.Score < threshold {
			continue
		}
		if err := a.leads.MarkQualified(ctx, lead.ID); err != nil {
			a.log.Error("qualification_failed", slog.String("lead_id", lead.ID.String()), slog.String("error", err.Error()))
			skipped++
			continue
		}
		qualified++
	}

	a.log.SweepResult("mark_qualified", qualified, skipped)
	return qualified, nil
}

// ScheduleFollowUps sets a next follow-up date on new and contacted leads
// that have none, sooner for higher-scoring leads.
func (a *Automation) ScheduleFollowUps(ctx context.Context) (int, error) {
	leads, err := a.leads.ListWithoutFollowUp(ctx)
	if err != nil {
		return 0, err
	}

	now := a.now()
	scheduled := 0
	skipped := 0
	for _, lead := range leads {
		at := now.AddDate(0, 0, FollowUpDays(lead.Score))
		if err := a.leads.SetNextFollowUp(ctx, lead.ID, at); err != nil {
			a.log.Error("follow_up_schedule_failed", slog.String("lead_id", lead.ID.String()), slog.String("error", err.Error()))
			skipped++
			continue
		}
		scheduled++
	}

	a.log.SweepResult("schedule_follow_ups", scheduled, skipped)
	return scheduled, nil
}

// BulkRecalculate rescores every active lead with a bounded worker pool.
// Failed leads are logged and skipped.
func (a *Automation) BulkRecalculate(ctx context.Context) (int, error) {
	leads, err := a.leads.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	var processed, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkRecalculateWorkers)
	for _, lead := range leads {
		leadID := lead.ID
		g.Go(func() error {
			if _, err := a.scorer.Calculate(gctx, leadID, "bulk_recalculation"); err != nil {
				a.log.Error("bulk_rescore_failed", slog.String("lead_id", leadID.String()), slog.String("error", err.Error()))
				skipped.Add(1)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(processed.Load()), err
	}

	a.log.SweepResult("bulk_recalculate", int(processed.Load()), int(skipped.Load()))
	return int(processed.Load()), nil
}

// PriorityForScore buckets a score into a lead priority.
func PriorityForScore(score int) string {
	switch {
	case score >= 80:
		return leadsrepo.PriorityHot
	case score >= 60:
		return leadsrepo.PriorityHigh
	case score >= 40:
		return leadsrepo.PriorityMedium
	default:
		return leadsrepo.PriorityLow
	}
}

// FollowUpDays returns how many days out the next follow-up lands.
func FollowUpDays(score int) int {
	switch {
	case score >= 80:
		return 1
	case score >= 60:
		return 3
	case score >= 40:
		return 7
	default:
		return 14
	}
}
