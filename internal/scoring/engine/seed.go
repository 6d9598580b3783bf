package engine

import (
	"context"

	"leadgen_backend/internal/scoring/repository"
	"leadgen_backend/internal/scoring/rules"
)

// EnsureDefaultProfile guarantees an active default scoring profile exists,
// seeding the built-in profile, criteria, rules and activity rules on first
// run. Called once at startup; the engine also self-heals through it if the
// default profile disappears.
func (e *Engine) EnsureDefaultProfile(ctx context.Context) error {
	_, err := e.cfg.GetDefaultProfile(ctx)
	if err == nil {
		return nil
	}
	if err != repository.ErrNotFound {
		return err
	}

	_, err = e.seedDefaultProfile(ctx)
	return err
}

type seedCriterion struct {
	name        string
	category    rules.Category
	description string
	weight      float64
	maxScore    int
	rules       []seedRule
}

type seedRule struct {
	field    string
	operator rules.Operator
	value    string
	points   int
}

var defaultCriteria = []seedCriterion{
	{
		name:        "Company Size",
		category:    rules.CategoryFirmographic,
		description: "Score based on company size",
		weight:      1.5,
		maxScore:    25,
		rules: []seedRule{
			{"company_size", rules.OpEq, `"1000+"`, 25},
			{"company_size", rules.OpEq, `"501-1000"`, 20},
			{"company_size", rules.OpEq, `"201-500"`, 15},
			{"company_size", rules.OpEq, `"51-200"`, 10},
			{"company_size", rules.OpEq, `"11-50"`, 5},
		},
	},
	{
		name:        "Annual Revenue",
		category:    rules.CategoryFirmographic,
		description: "Score based on annual revenue",
		weight:      2.0,
		maxScore:    25,
		rules: []seedRule{
			{"annual_revenue", rules.OpEq, `"over_100m"`, 25},
			{"annual_revenue", rules.OpEq, `"50m_100m"`, 20},
			{"annual_revenue", rules.OpEq, `"10m_50m"`, 15},
			{"annual_revenue", rules.OpEq, `"5m_10m"`, 10},
			{"annual_revenue", rules.OpEq, `"1m_5m"`, 5},
		},
	},
	{
		name:        "Budget Range",
		category:    rules.CategoryDemographic,
		description: "Score based on budget range",
		weight:      2.0,
		maxScore:    20,
		rules: []seedRule{
			{"budget_range", rules.OpEq, `"over_1m"`, 20},
			{"budget_range", rules.OpEq, `"500k_1m"`, 15},
			{"budget_range", rules.OpEq, `"100k_500k"`, 12},
			{"budget_range", rules.OpEq, `"50k_100k"`, 8},
			{"budget_range", rules.OpEq, `"10k_50k"`, 5},
		},
	},
	{
		name:        "Timeline Urgency",
		category:    rules.CategoryTemporal,
		description: "Score based on purchase timeline",
		weight:      1.5,
		maxScore:    15,
		rules: []seedRule{
			{"timeline", rules.OpEq, `"immediate"`, 15},
			{"timeline", rules.OpEq, `"short_term"`, 12},
			{"timeline", rules.OpEq, `"medium_term"`, 8},
			{"timeline", rules.OpEq, `"long_term"`, 4},
		},
	},
	{
		name:        "Lead Source Quality",
		category:    rules.CategorySource,
		description: "Score based on lead source effectiveness",
		weight:      1.0,
		maxScore:    10,
		rules: []seedRule{
			{"source_type", rules.OpIn, `["referral", "partner"]`, 10},
			{"source_type", rules.OpIn, `["webinar", "trade_show"]`, 6},
			{"source_type", rules.OpEq, `"website"`, 4},
		},
	},
	{
		name:        "Profile Completeness",
		category:    rules.CategoryDemographic,
		description: "Score based on profile information completeness",
		weight:      0.5,
		maxScore:    5,
		rules: []seedRule{
			{"phone_number", rules.OpIsNotNull, `""`, 1},
			{"company_name", rules.OpIsNotNull, `""`, 1},
			{"job_title", rules.OpIsNotNull, `""`, 1},
			{"industry", rules.OpIsNotNull, `""`, 1},
			{"territory", rules.OpIsNotNull, `""`, 1},
		},
	},
}

type seedActivityRule struct {
	name            string
	activityType    string
	outcome         string
	points          int
	maxPointsPerDay int
}

var defaultActivityRules = []seedActivityRule{
	{"Successful Call", "call", "successful", 10, 30},
	{"Meeting Scheduled", "", "meeting_scheduled", 15, 45},
	{"Showed Interest", "", "interested", 12, 36},
	{"Proposal Requested", "", "proposal_requested", 20, 60},
	{"Demo Conducted", "demo", "successful", 18, 54},
	{"Email Response", "email", "interested", 8, 24},
}

func (e *Engine) seedDefaultProfile(ctx context.Context) (repository.Profile, error) {
	profile, err := e.cfg.CreateProfile(ctx, repository.CreateProfileParams{
		Name:                "Default Lead Scoring",
		Description:         "Default lead scoring profile with standard criteria",
		AutoAssignThreshold: 80,
		HotLeadThreshold:    75,
	})
	if err != nil {
		return repository.Profile{}, err
	}
	if err := e.cfg.PromoteDefaultProfile(ctx, profile.ID); err != nil {
		return repository.Profile{}, err
	}

	for _, sc := range defaultCriteria {
		criterion, err := e.cfg.CreateCriteria(ctx, repository.CreateCriteriaParams{
			Name:        sc.name,
			Category:    string(sc.category),
			Description: sc.description,
			Weight:      sc.weight,
			MaxScore:    sc.maxScore,
		})
		if err != nil {
			return repository.Profile{}, err
		}
		if err := e.cfg.AttachCriteria(ctx, profile.ID, criterion.ID, 1.0, true); err != nil {
			return repository.Profile{}, err
		}

		for order, sr := range sc.rules {
			if _, err := e.cfg.CreateRule(ctx, repository.CreateRuleParams{
				CriteriaID: criterion.ID,
				FieldName:  sr.field,
				Operator:   string(sr.operator),
				Value:      sr.value,
				Points:     sr.points,
				EvalOrder:  order,
			}); err != nil {
				return repository.Profile{}, err
			}
		}
	}

	for _, ar := range defaultActivityRules {
		if _, err := e.cfg.CreateActivityRule(ctx, repository.CreateActivityRuleParams{
			Name:              ar.name,
			ActivityType:      ar.activityType,
			Outcome:           ar.outcome,
			PointsPerActivity: ar.points,
			MaxPointsPerDay:   ar.maxPointsPerDay,
			DecayDays:         30,
			DecayRate:         0.10,
		}); err != nil {
			return repository.Profile{}, err
		}
	}

	profile.IsDefault = true
	e.log.Info("seeded default scoring profile", "profile_id", profile.ID)
	return profile, nil
}
