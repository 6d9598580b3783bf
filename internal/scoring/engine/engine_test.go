package engine

import (
	"context"
	"testing"
	"time"

	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/repository"
	platformevents "leadgen_backend/platform/events"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeConfig struct {
	profiles      []repository.Profile
	criteria      map[uuid.UUID]repository.Criteria
	links         map[uuid.UUID][]repository.ProfileCriteriaRow
	rules         map[uuid.UUID][]repository.Rule
	activityRules []repository.ActivityRule
	history       []repository.CreateHistoryParams
	alerts        []repository.CreateAlertParams
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{
		criteria: make(map[uuid.UUID]repository.Criteria),
		links:    make(map[uuid.UUID][]repository.ProfileCriteriaRow),
		rules:    make(map[uuid.UUID][]repository.Rule),
	}
}

func (f *fakeConfig) GetDefaultProfile(ctx context.Context) (repository.Profile, error) {
	for _, p := range f.profiles {
		if p.IsDefault && p.IsActive {
			return p, nil
		}
	}
	return repository.Profile{}, repository.ErrNotFound
}

func (f *fakeConfig) ListEnabledProfileCriteria(ctx context.Context, profileID uuid.UUID) ([]repository.ProfileCriteriaRow, error) {
	return f.links[profileID], nil
}

func (f *fakeConfig) ListActiveRulesByCriteria(ctx context.Context, criteriaID uuid.UUID) ([]repository.Rule, error) {
	return f.rules[criteriaID], nil
}

func (f *fakeConfig) ListActiveActivityRules(ctx context.Context) ([]repository.ActivityRule, error) {
	return f.activityRules, nil
}

func (f *fakeConfig) CreateHistoryEntry(ctx context.Context, params repository.CreateHistoryParams) error {
	f.history = append(f.history, params)
	return nil
}

func (f *fakeConfig) CreateAlert(ctx context.Context, params repository.CreateAlertParams) (repository.Alert, error) {
	f.alerts = append(f.alerts, params)
	return repository.Alert{ID: uuid.New(), LeadID: params.LeadID, AlertType: params.AlertType}, nil
}

func (f *fakeConfig) CreateProfile(ctx context.Context, params repository.CreateProfileParams) (repository.Profile, error) {
	p := repository.Profile{
		ID:                  uuid.New(),
		Name:                params.Name,
		Description:         params.Description,
		IsActive:            true,
		AutoAssignThreshold: params.AutoAssignThreshold,
		HotLeadThreshold:    params.HotLeadThreshold,
	}
	f.profiles = append(f.profiles, p)
	return p, nil
}

func (f *fakeConfig) PromoteDefaultProfile(ctx context.Context, id uuid.UUID) error {
	for i := range f.profiles {
		f.profiles[i].IsDefault = f.profiles[i].ID == id
	}
	return nil
}

func (f *fakeConfig) CreateCriteria(ctx context.Context, params repository.CreateCriteriaParams) (repository.Criteria, error) {
	c := repository.Criteria{
		ID:       uuid.New(),
		Name:     params.Name,
		Category: params.Category,
		Weight:   params.Weight,
		MaxScore: params.MaxScore,
		IsActive: true,
	}
	f.criteria[c.ID] = c
	return c, nil
}

func (f *fakeConfig) AttachCriteria(ctx context.Context, profileID, criteriaID uuid.UUID, weightMultiplier float64, enabled bool) error {
	if !enabled {
		return nil
	}
	f.links[profileID] = append(f.links[profileID], repository.ProfileCriteriaRow{
		Criteria:         f.criteria[criteriaID],
		WeightMultiplier: weightMultiplier,
	})
	return nil
}

func (f *fakeConfig) CreateRule(ctx context.Context, params repository.CreateRuleParams) (repository.Rule, error) {
	r := repository.Rule{
		ID:         uuid.New(),
		CriteriaID: params.CriteriaID,
		FieldName:  params.FieldName,
		Operator:   params.Operator,
		Value:      params.Value,
		Points:     params.Points,
		IsActive:   true,
		EvalOrder:  params.EvalOrder,
	}
	f.rules[params.CriteriaID] = append(f.rules[params.CriteriaID], r)
	return r, nil
}

func (f *fakeConfig) CreateActivityRule(ctx context.Context, params repository.CreateActivityRuleParams) (repository.ActivityRule, error) {
	r := repository.ActivityRule{
		ID:                uuid.New(),
		Name:              params.Name,
		ActivityType:      params.ActivityType,
		Outcome:           params.Outcome,
		PointsPerActivity: params.PointsPerActivity,
		MaxPointsPerDay:   params.MaxPointsPerDay,
		DecayDays:         params.DecayDays,
		DecayRate:         params.DecayRate,
		IsActive:          true,
	}
	f.activityRules = append(f.activityRules, r)
	return r, nil
}

type fakeLeads struct {
	leads      map[uuid.UUID]leadsrepo.Lead
	activities map[uuid.UUID][]leadsrepo.Activity
	sources    map[uuid.UUID]leadsrepo.Source
}

func newFakeLeads() *fakeLeads {
	return &fakeLeads{
		leads:      make(map[uuid.UUID]leadsrepo.Lead),
		activities: make(map[uuid.UUID][]leadsrepo.Activity),
		sources:    make(map[uuid.UUID]leadsrepo.Source),
	}
}

func (f *fakeLeads) GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return leadsrepo.Lead{}, leadsrepo.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeads) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	lead := f.leads[id]
	lead.Score = score
	f.leads[id] = lead
	return nil
}

func (f *fakeLeads) ListActivitiesSince(ctx context.Context, leadID uuid.UUID, since time.Time) ([]leadsrepo.Activity, error) {
	out := make([]leadsrepo.Activity, 0)
	for _, a := range f.activities[leadID] {
		if !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeLeads) GetSourceByID(ctx context.Context, id uuid.UUID) (leadsrepo.Source, error) {
	source, ok := f.sources[id]
	if !ok {
		return leadsrepo.Source{}, leadsrepo.ErrSourceNotFound
	}
	return source, nil
}

func newTestEngine(t *testing.T, cfg *fakeConfig, leads *fakeLeads) *Engine {
	t.Helper()
	log := logger.New("development")
	bus := platformevents.NewInMemoryBus(log)
	eng := New(cfg, leads, bus, log)
	return eng
}

func seedProfileWithCompanySize(t *testing.T, cfg *fakeConfig) repository.Profile {
	t.Helper()
	ctx := context.Background()

	profile, err := cfg.CreateProfile(ctx, repository.CreateProfileParams{
		Name:                "Test Profile",
		AutoAssignThreshold: 80,
		HotLeadThreshold:    75,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if err := cfg.PromoteDefaultProfile(ctx, profile.ID); err != nil {
		t.Fatalf("promote profile: %v", err)
	}

	criterion, err := cfg.CreateCriteria(ctx, repository.CreateCriteriaParams{
		Name:     "Company Size",
		Category: "firmographic",
		Weight:   1.5,
		MaxScore: 25,
	})
	if err != nil {
		t.Fatalf("create criteria: %v", err)
	}
	if err := cfg.AttachCriteria(ctx, profile.ID, criterion.ID, 1.0, true); err != nil {
		t.Fatalf("attach criteria: %v", err)
	}
	if _, err := cfg.CreateRule(ctx, repository.CreateRuleParams{
		CriteriaID: criterion.ID,
		FieldName:  "company_size",
		Operator:   "eq",
		Value:      `"1000+"`,
		Points:     25,
	}); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	profile.IsDefault = true
	return profile
}

func addLead(leads *fakeLeads, lead leadsrepo.Lead) leadsrepo.Lead {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().AddDate(0, 0, -5)
	}
	leads.leads[lead.ID] = lead
	return lead
}

func TestCalculateCapsCriterionAtMaxScore(t *testing.T) {
	cfg := newFakeConfig()
	leads := newFakeLeads()
	seedProfileWithCompanySize(t, cfg)
	lead := addLead(leads, leadsrepo.Lead{CompanySize: "1000+"})

	eng := newTestEngine(t, cfg, leads)
	breakdown, err := eng.Calculate(context.Background(), lead.ID, "test")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// 25 points x 1.5 weight = 37.5, capped at the criterion's 25.
	if got := breakdown.Details["Company Size"]; got != 25 {
		t.Fatalf("expected capped contribution 25, got %v", got)
	}
	if breakdown.Firmographic != 25 {
		t.Fatalf("expected firmographic bucket 25, got %v", breakdown.Firmographic)
	}
	if breakdown.Total != 25 {
		t.Fatalf("expected total 25, got %d", breakdown.Total)
	}
}

func TestCalculateTotalStaysWithinBounds(t *testing.T) {
	cfg := newFakeConfig()
	leads := newFakeLeads()
	ctx := context.Background()

	profile, err := cfg.CreateProfile(ctx, repository.CreateProfileParams{
		Name: "Big", AutoAssignThreshold: 200, HotLeadThreshold: 200,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if err := cfg.PromoteDefaultProfile(ctx, profile.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	// Three criteria worth up to 60 each would sum past 100.
	for i, name := range []string{"A", "B", "C"} {
		criterion, err := cfg.CreateCriteria(ctx, repository.CreateCriteriaParams{
			Name: name, Category: "demographic", Weight: 1.0, MaxScore: 60,
		})
		if err != nil {
			t.Fatalf("create criteria %d: %v", i, err)
		}
		if err := cfg.AttachCriteria(ctx, profile.ID, criterion.ID, 1.0, true); err != nil {
			t.Fatalf("attach: %v", err)
		}
		if _, err := cfg.CreateRule(ctx, repository.CreateRuleParams{
			CriteriaID: criterion.ID, FieldName: "company_size", Operator: "is_not_null", Value: `""`, Points: 60,
		}); err != nil {
			t.Fatalf("create rule: %v", err)
		}
	}

	lead := addLead(leads, leadsrepo.Lead{CompanySize: "1000+"})
	eng := newTestEngine(t, cfg, leads)

	breakdown, err := eng.Calculate(ctx, lead.ID, "test")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if breakdown.Total != 100 {
		t.Fatalf("expected clamped total 100, got %d", breakdown.Total)
	}

	// Negative-only contributions clamp at zero.
	negLead := addLead(leads, leadsrepo.Lead{})
	negProfile, err := cfg.CreateProfile(ctx, repository.CreateProfileParams{
		Name: "Negative", AutoAssignThreshold: 200, HotLeadThreshold: 200,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if err := cfg.PromoteDefaultProfile(ctx, negProfile.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	criterion, err := cfg.CreateCriteria(ctx, repository.CreateCriteriaParams{
		Name: "Penalty", Category: "demographic", Weight: 1.0, MaxScore: 10,
	})
	if err != nil {
		t.Fatalf("create criteria: %v", err)
	}
	if err := cfg.AttachCriteria(ctx, negProfile.ID, criterion.ID, 1.0, true); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := cfg.CreateRule(ctx, repository.CreateRuleParams{
		CriteriaID: criterion.ID, FieldName: "company_size", Operator: "is_null", Value: `""`, Points: -50,
	}); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	breakdown, err = eng.Calculate(ctx, negLead.ID, "test")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if breakdown.Total != 0 {
		t.Fatalf("expected floor-clamped total 0, got %d", breakdown.Total)
	}
}

func TestCalculateWritesHistoryWithDelta(t *testing.T) {
	cfg := newFakeConfig()
	leads := newFakeLeads()
	seedProfileWithCompanySize(t, cfg)
	lead := addLead(leads, leadsrepo.Lead{CompanySize: "1000+", Score: 10})

	eng := newTestEngine(t, cfg, leads)
	if _, err := eng.Calculate(context.Background(), lead.ID, "activity_logged"); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if len(cfg.history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(cfg.history))
	}
	entry := cfg.history[0]
	if entry.TotalScore != 25 || entry.ScoreChange != 15 {
		t.Fatalf("expected total 25 delta 15, got total %d delta %d", entry.TotalScore, entry.ScoreChange)
	}
	if entry.TriggeredBy != "activity_logged" {
		t.Fatalf("expected trigger recorded, got %q", entry.TriggeredBy)
	}
}

func TestHotLeadAlertFiresExactlyOnceAcrossRisingScores(t *testing.T) {
	// Scores walk 70 -> 76 -> 78 against threshold 75: exactly one hot_lead
	// alert, on the crossing pass.
	cfg := newFakeConfig()
	leads := newFakeLeads()
	ctx := context.Background()

	profile, err := cfg.CreateProfile(ctx, repository.CreateProfileParams{
		Name: "Thresholds", AutoAssignThreshold: 90, HotLeadThreshold: 75,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if err := cfg.PromoteDefaultProfile(ctx, profile.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	criterion, err := cfg.CreateCriteria(ctx, repository.CreateCriteriaParams{
		Name: "Score Driver", Category: "demographic", Weight: 1.0, MaxScore: 100,
	})
	if err != nil {
		t.Fatalf("create criteria: %v", err)
	}
	if err := cfg.AttachCriteria(ctx, profile.ID, criterion.ID, 1.0, true); err != nil {
		t.Fatalf("attach: %v", err)
	}

	owner := uuid.New()
	lead := addLead(leads, leadsrepo.Lead{Score: 65, AssignedTo: &owner})
	eng := newTestEngine(t, cfg, leads)

	setPoints := func(points int) {
		cfg.rules[criterion.ID] = nil
		if _, err := cfg.CreateRule(ctx, repository.CreateRuleParams{
			CriteriaID: criterion.ID, FieldName: "first_name", Operator: "is_not_null", Value: `""`, Points: points,
		}); err != nil {
			t.Fatalf("create rule: %v", err)
		}
	}

	lead.FirstName = "Maria"
	leads.leads[lead.ID] = lead

	hotAlerts := func() int {
		n := 0
		for _, a := range cfg.alerts {
			if a.AlertType == repository.AlertHotLead {
				n++
			}
		}
		return n
	}

	for i, points := range []int{70, 76, 78} {
		setPoints(points)
		breakdown, err := eng.Calculate(ctx, lead.ID, "test")
		if err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		if breakdown.Total != points {
			t.Fatalf("pass %d: expected total %d, got %d", i, points, breakdown.Total)
		}
	}

	if got := hotAlerts(); got != 1 {
		t.Fatalf("expected exactly 1 hot lead alert across 70/76/78, got %d", got)
	}
}

func TestScoreIncreaseAlertOnLargeDelta(t *testing.T) {
	cfg := newFakeConfig()
	leads := newFakeLeads()
	seedProfileWithCompanySize(t, cfg)
	lead := addLead(leads, leadsrepo.Lead{CompanySize: "1000+", Score: 0})

	eng := newTestEngine(t, cfg, leads)
	if _, err := eng.Calculate(context.Background(), lead.ID, "test"); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// 0 -> 25 is a delta of 25.
	found := false
	for _, a := range cfg.alerts {
		if a.AlertType == repository.AlertScoreIncrease {
			found = true
		}
	}
	if !found {
		t.Fatal("expected score_increase alert for delta >= 20")
	}
}

func TestAssignmentNeededAlertEdgeTriggered(t *testing.T) {
	cfg := newFakeConfig()
	leads := newFakeLeads()
	ctx := context.Background()

	profile, err := cfg.CreateProfile(ctx, repository.CreateProfileParams{
		Name: "Assign", AutoAssignThreshold: 20, HotLeadThreshold: 90,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if err := cfg.PromoteDefaultProfile(ctx, profile.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	criterion, err := cfg.CreateCriteria(ctx, repository.CreateCriteriaParams{
		Name: "Driver", Category: "demographic", Weight: 1.0, MaxScore: 100,
	})
	if err != nil {
		t.Fatalf("create criteria: %v", err)
	}
	if err := cfg.AttachCriteria(ctx, profile.ID, criterion.ID, 1.0, true); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := cfg.CreateRule(ctx, repository.CreateRuleParams{
		CriteriaID: criterion.ID, FieldName: "first_name", Operator: "is_not_null", Value: `""`, Points: 30,
	}); err != nil {
		t.Fatalf("create rule: %v", err)
	}

	lead := addLead(leads, leadsrepo.Lead{FirstName: "Ana", Score: 0})
	eng := newTestEngine(t, cfg, leads)

	assignmentAlerts := func() int {
		n := 0
		for _, a := range cfg.alerts {
			if a.AlertType == repository.AlertAssignmentNeeded {
				n++
			}
		}
		return n
	}

	// First pass crosses the threshold.
	if _, err := eng.Calculate(ctx, lead.ID, "test"); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got := assignmentAlerts(); got != 1 {
		t.Fatalf("expected 1 assignment alert after crossing, got %d", got)
	}

	// Steady-state pass at the same level must not re-fire.
	if _, err := eng.Calculate(ctx, lead.ID, "test"); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got := assignmentAlerts(); got != 1 {
		t.Fatalf("expected no re-fire at steady level, got %d alerts", got)
	}
}

func TestEnsureDefaultProfileSeedsOnce(t *testing.T) {
	cfg := newFakeConfig()
	leads := newFakeLeads()
	eng := newTestEngine(t, cfg, leads)
	ctx := context.Background()

	if err := eng.EnsureDefaultProfile(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(cfg.profiles) != 1 {
		t.Fatalf("expected 1 seeded profile, got %d", len(cfg.profiles))
	}
	profile := cfg.profiles[0]
	if !profile.IsDefault || profile.HotLeadThreshold != 75 || profile.AutoAssignThreshold != 80 {
		t.Fatalf("unexpected seeded profile: %+v", profile)
	}
	if len(cfg.links[profile.ID]) != 6 {
		t.Fatalf("expected 6 seeded criteria links, got %d", len(cfg.links[profile.ID]))
	}
	if len(cfg.activityRules) != 6 {
		t.Fatalf("expected 6 seeded activity rules, got %d", len(cfg.activityRules))
	}

	// Second call is a no-op.
	if err := eng.EnsureDefaultProfile(ctx); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if len(cfg.profiles) != 1 {
		t.Fatalf("seeding must be idempotent, got %d profiles", len(cfg.profiles))
	}
}

func TestSeededProfileScoresEnterpriseLead(t *testing.T) {
	cfg := newFakeConfig()
	leads := newFakeLeads()
	eng := newTestEngine(t, cfg, leads)
	ctx := context.Background()

	if err := eng.EnsureDefaultProfile(ctx); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	lead := addLead(leads, leadsrepo.Lead{
		FirstName:     "Grace",
		CompanySize:   "1000+",
		AnnualRevenue: "over_100m",
		BudgetRange:   "over_1m",
		Timeline:      "immediate",
		Phone:         "+6329170000001",
		CompanyName:   "Acme Manufacturing",
		JobTitle:      "CTO",
		Industry:      "manufacturing",
	})

	breakdown, err := eng.Calculate(ctx, lead.ID, "test")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// Firmographic: company size 25 (capped) + revenue 25 (capped) = 50.
	if breakdown.Firmographic != 50 {
		t.Fatalf("expected firmographic 50, got %v", breakdown.Firmographic)
	}
	// Demographic: budget 20 (capped) + completeness 4x1x0.5 = 2.
	if breakdown.Demographic != 22 {
		t.Fatalf("expected demographic 22, got %v", breakdown.Demographic)
	}
	// Temporal: immediate 15 x 1.5 = 22.5, capped at 15.
	if breakdown.Temporal != 15 {
		t.Fatalf("expected temporal 15, got %v", breakdown.Temporal)
	}
	if breakdown.Total != 87 {
		t.Fatalf("expected total 87, got %d", breakdown.Total)
	}
}
