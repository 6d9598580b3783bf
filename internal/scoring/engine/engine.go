// Package engine implements lead score calculation: weighted criteria
// evaluation, activity-driven behavioral and engagement scores, score
// persistence, history and alert emission.
package engine

import (
	"context"
	"time"

	"leadgen_backend/internal/events"
	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/repository"
	"leadgen_backend/internal/scoring/rules"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

// ConfigStore is the scoring configuration access the engine needs.
type ConfigStore interface {
	GetDefaultProfile(ctx context.Context) (repository.Profile, error)
	ListEnabledProfileCriteria(ctx context.Context, profileID uuid.UUID) ([]repository.ProfileCriteriaRow, error)
	ListActiveRulesByCriteria(ctx context.Context, criteriaID uuid.UUID) ([]repository.Rule, error)
	ListActiveActivityRules(ctx context.Context) ([]repository.ActivityRule, error)
	CreateHistoryEntry(ctx context.Context, params repository.CreateHistoryParams) error
	CreateAlert(ctx context.Context, params repository.CreateAlertParams) (repository.Alert, error)

	CreateProfile(ctx context.Context, params repository.CreateProfileParams) (repository.Profile, error)
	PromoteDefaultProfile(ctx context.Context, id uuid.UUID) error
	CreateCriteria(ctx context.Context, params repository.CreateCriteriaParams) (repository.Criteria, error)
	AttachCriteria(ctx context.Context, profileID, criteriaID uuid.UUID, weightMultiplier float64, enabled bool) error
	CreateRule(ctx context.Context, params repository.CreateRuleParams) (repository.Rule, error)
	CreateActivityRule(ctx context.Context, params repository.CreateActivityRuleParams) (repository.ActivityRule, error)
}

// LeadStore is the lead data access the engine needs.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score int) error
	ListActivitiesSince(ctx context.Context, leadID uuid.UUID, since time.Time) ([]leadsrepo.Activity, error)
	GetSourceByID(ctx context.Context, id uuid.UUID) (leadsrepo.Source, error)
}

// Breakdown is the categorized result of one scoring pass.
type Breakdown struct {
	Demographic  float64            `json:"demographic"`
	Firmographic float64            `json:"firmographic"`
	Behavioral   float64            `json:"behavioral"`
	Engagement   float64            `json:"engagement"`
	Source       float64            `json:"source"`
	Temporal     float64            `json:"temporal"`
	Total        int                `json:"total"`
	Details      map[string]float64 `json:"details"`
}

type Engine struct {
	cfg   ConfigStore
	leads LeadStore
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func New(cfg ConfigStore, leads LeadStore, bus events.Bus, log *logger.Logger) *Engine {
	return &Engine{
		cfg:   cfg,
		leads: leads,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// Calculate scores one lead: evaluates profile criteria against the lead's
// fields, derives behavioral and engagement scores from its activity history,
// persists the total, writes a history row and raises threshold alerts.
// Concurrent passes over the same lead are not serialized; the last write wins.
func (e *Engine) Calculate(ctx context.Context, leadID uuid.UUID, triggeredBy string) (Breakdown, error) {
	profile, err := e.resolveProfile(ctx)
	if err != nil {
		return Breakdown{}, err
	}

	lead, err := e.leads.GetByID(ctx, leadID)
	if err != nil {
		return Breakdown{}, err
	}

	snap := e.buildSnapshot(ctx, lead)

	breakdown := Breakdown{Details: make(map[string]float64)}

	criteriaRows, err := e.cfg.ListEnabledProfileCriteria(ctx, profile.ID)
	if err != nil {
		return Breakdown{}, err
	}

	for _, row := range criteriaRows {
		category := rules.Category(row.Criteria.Category)
		// Behavioral and engagement buckets come from activity history,
		// not lead-attribute rules.
		if category == rules.CategoryBehavioral || category == rules.CategoryEngagement {
			continue
		}

		contribution, err := e.evaluateCriterion(ctx, snap, row)
		if err != nil {
			return Breakdown{}, err
		}

		breakdown.addToCategory(category, contribution)
		breakdown.Details[row.Criteria.Name] = contribution
	}

	activities, err := e.leads.ListActivitiesSince(ctx, leadID, time.Time{})
	if err != nil {
		return Breakdown{}, err
	}
	activityRules, err := e.cfg.ListActiveActivityRules(ctx)
	if err != nil {
		return Breakdown{}, err
	}

	now := e.now()
	breakdown.Behavioral = float64(behavioralScore(activities, activityRules, now))
	breakdown.Engagement = float64(engagementScore(activities, now))

	total := breakdown.Demographic + breakdown.Firmographic + breakdown.Behavioral +
		breakdown.Engagement + breakdown.Source + breakdown.Temporal
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	breakdown.Total = int(total)

	oldScore := lead.Score
	if err := e.leads.UpdateScore(ctx, leadID, breakdown.Total); err != nil {
		return Breakdown{}, err
	}

	profileID := profile.ID
	if err := e.cfg.CreateHistoryEntry(ctx, repository.CreateHistoryParams{
		LeadID:             leadID,
		TotalScore:         breakdown.Total,
		DemographicScore:   int(breakdown.Demographic),
		FirmographicScore:  int(breakdown.Firmographic),
		BehavioralScore:    int(breakdown.Behavioral),
		EngagementScore:    int(breakdown.Engagement),
		SourceScore:        int(breakdown.Source),
		TemporalScore:      int(breakdown.Temporal),
		ProfileID:          &profileID,
		CalculationDetails: breakdown.Details,
		ScoreChange:        breakdown.Total - oldScore,
		ChangeReason:       "Automated scoring calculation",
		TriggeredBy:        triggeredBy,
	}); err != nil {
		return Breakdown{}, err
	}

	e.checkAlerts(ctx, lead, oldScore, breakdown.Total, profile)

	e.log.ScoringPass(leadID.String(), oldScore, breakdown.Total, profile.Name)
	e.bus.Publish(ctx, events.LeadScored{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		OldScore:  oldScore,
		NewScore:  breakdown.Total,
		Profile:   profile.Name,
	})

	return breakdown, nil
}

// evaluateCriterion sums the criterion's active rule points, applies the
// criterion weight and the profile's multiplier, and caps the result at the
// criterion's max score. Negative sums pass through uncapped at the bottom.
func (e *Engine) evaluateCriterion(ctx context.Context, snap rules.Snapshot, row repository.ProfileCriteriaRow) (float64, error) {
	ruleRows, err := e.cfg.ListActiveRulesByCriteria(ctx, row.Criteria.ID)
	if err != nil {
		return 0, err
	}

	points := 0
	for _, rr := range ruleRows {
		points += rules.Evaluate(snap, rules.Rule{
			FieldName: rr.FieldName,
			Operator:  rules.Operator(rr.Operator),
			Value:     rules.ParseValue(rr.Value),
			Points:    rr.Points,
		})
	}

	weighted := float64(points) * row.Criteria.Weight * row.WeightMultiplier
	if weighted > float64(row.Criteria.MaxScore) {
		weighted = float64(row.Criteria.MaxScore)
	}
	return weighted, nil
}

func (e *Engine) buildSnapshot(ctx context.Context, lead leadsrepo.Lead) rules.Snapshot {
	snap := rules.Snapshot{
		FirstName:     lead.FirstName,
		LastName:      lead.LastName,
		Email:         lead.Email,
		Phone:         lead.Phone,
		CompanyName:   lead.CompanyName,
		JobTitle:      lead.JobTitle,
		Address:       lead.Address,
		City:          lead.City,
		Territory:     lead.Territory,
		Industry:      lead.Industry,
		CompanySize:   lead.CompanySize,
		AnnualRevenue: lead.AnnualRevenue,
		BudgetRange:   lead.BudgetRange,
		Timeline:      lead.Timeline,
		Status:        lead.Status,
		Priority:      lead.Priority,
		Score:         lead.Score,
		DaysAsLead:    int(e.now().Sub(lead.CreatedAt).Hours() / 24),
	}

	if source, err := e.leads.GetSourceByID(ctx, lead.SourceID); err == nil {
		snap.SourceType = source.SourceType
	}

	return snap
}

func (b *Breakdown) addToCategory(category rules.Category, points float64) {
	switch category {
	case rules.CategoryDemographic:
		b.Demographic += points
	case rules.CategoryFirmographic:
		b.Firmographic += points
	case rules.CategorySource:
		b.Source += points
	case rules.CategoryTemporal:
		b.Temporal += points
	}
}

// resolveProfile returns the default active profile, seeding the built-in one
// when none exists. Startup calls EnsureDefaultProfile so this is a self-heal
// path, not the normal bootstrap.
func (e *Engine) resolveProfile(ctx context.Context) (repository.Profile, error) {
	profile, err := e.cfg.GetDefaultProfile(ctx)
	if err == nil {
		return profile, nil
	}
	if err != repository.ErrNotFound {
		return repository.Profile{}, err
	}
	return e.seedDefaultProfile(ctx)
}
