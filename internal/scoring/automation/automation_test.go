package automation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	authrepo "leadgen_backend/internal/auth/repository"
	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/engine"
	"leadgen_backend/internal/scoring/repository"
	platformevents "leadgen_backend/platform/events"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadStore struct {
	leads      map[uuid.UUID]leadsrepo.Lead
	activities []leadsrepo.CreateActivityParams
	failAssign map[uuid.UUID]bool
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{
		leads:      make(map[uuid.UUID]leadsrepo.Lead),
		failAssign: make(map[uuid.UUID]bool),
	}
}

func (f *fakeLeadStore) add(lead leadsrepo.Lead) leadsrepo.Lead {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.Priority == "" {
		lead.Priority = leadsrepo.PriorityMedium
	}
	if lead.Status == "" {
		lead.Status = leadsrepo.StatusNew
	}
	lead.IsActive = true
	f.leads[lead.ID] = lead
	return lead
}

func (f *fakeLeadStore) ListActive(ctx context.Context) ([]leadsrepo.Lead, error) {
	out := make([]leadsrepo.Lead, 0, len(f.leads))
	for _, l := range f.leads {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeadStore) ListUnassignedAbove(ctx context.Context, minScore int) ([]leadsrepo.Lead, error) {
	out := make([]leadsrepo.Lead, 0)
	for _, l := range f.leads {
		if l.IsActive && l.AssignedTo == nil && l.Score >= minScore {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeadStore) ListWithoutFollowUp(ctx context.Context) ([]leadsrepo.Lead, error) {
	out := make([]leadsrepo.Lead, 0)
	for _, l := range f.leads {
		if !l.IsActive || l.NextFollowUpAt != nil {
			continue
		}
		if l.Status == leadsrepo.StatusNew || l.Status == leadsrepo.StatusContacted {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeadStore) Assign(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	if f.failAssign[id] {
		return errors.New("assign failed")
	}
	lead := f.leads[id]
	lead.AssignedTo = userID
	f.leads[id] = lead
	return nil
}

func (f *fakeLeadStore) UpdatePriority(ctx context.Context, id uuid.UUID, priority string) error {
	lead := f.leads[id]
	lead.Priority = priority
	f.leads[id] = lead
	return nil
}

func (f *fakeLeadStore) MarkQualified(ctx context.Context, id uuid.UUID) error {
	lead := f.leads[id]
	lead.IsQualified = true
	f.leads[id] = lead
	return nil
}

func (f *fakeLeadStore) SetNextFollowUp(ctx context.Context, id uuid.UUID, at time.Time) error {
	lead := f.leads[id]
	lead.NextFollowUpAt = &at
	f.leads[id] = lead
	return nil
}

func (f *fakeLeadStore) CreateActivity(ctx context.Context, params leadsrepo.CreateActivityParams) (leadsrepo.Activity, error) {
	f.activities = append(f.activities, params)
	return leadsrepo.Activity{ID: uuid.New(), LeadID: params.LeadID}, nil
}

type fakeUserStore struct {
	salespeople []authrepo.User
}

func (f *fakeUserStore) ListActiveSalespeople(ctx context.Context) ([]authrepo.User, error) {
	return f.salespeople, nil
}

type fakeProfileStore struct {
	profile repository.Profile
	err     error
}

func (f *fakeProfileStore) GetDefaultProfile(ctx context.Context) (repository.Profile, error) {
	if f.err != nil {
		return repository.Profile{}, f.err
	}
	return f.profile, nil
}

type fakeScorer struct {
	mu     sync.Mutex
	calls  []uuid.UUID
	failOn map[uuid.UUID]bool
}

func (f *fakeScorer) Calculate(ctx context.Context, leadID uuid.UUID, triggeredBy string) (engine.Breakdown, error) {
	if f.failOn[leadID] {
		return engine.Breakdown{}, errors.New("scoring failed")
	}
	f.mu.Lock()
	f.calls = append(f.calls, leadID)
	f.mu.Unlock()
	return engine.Breakdown{Total: 50}, nil
}

type fakeAutomationConfig struct {
	autoAssign int
	qualify    int
}

func (f fakeAutomationConfig) GetAutoAssignThreshold() int { return f.autoAssign }
func (f fakeAutomationConfig) GetQualifyThreshold() int    { return f.qualify }

func newTestAutomation(leads *fakeLeadStore, users *fakeUserStore, scorer *fakeScorer) *Automation {
	log := logger.New("development")
	bus := platformevents.NewInMemoryBus(log)
	profiles := &fakeProfileStore{profile: repository.Profile{
		ID: uuid.New(), Name: "Default", IsDefault: true, IsActive: true,
		AutoAssignThreshold: 80, HotLeadThreshold: 75,
	}}
	cfg := fakeAutomationConfig{autoAssign: 80, qualify: 70}
	return New(leads, users, profiles, scorer, cfg, bus, log)
}

func salesperson(name string) authrepo.User {
	return authrepo.User{ID: uuid.New(), FullName: name, Role: authrepo.RoleSalesperson, IsActive: true}
}

func TestAutoAssignRoundRobin(t *testing.T) {
	leads := newFakeLeadStore()
	users := &fakeUserStore{salespeople: []authrepo.User{salesperson("Ana"), salesperson("Ben")}}
	auto := newTestAutomation(leads, users, &fakeScorer{})

	for i := 0; i < 3; i++ {
		leads.add(leadsrepo.Lead{Score: 85})
	}
	leads.add(leadsrepo.Lead{Score: 40}) // below threshold

	assigned, err := auto.AutoAssignLeads(context.Background(), 80)
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if assigned != 3 {
		t.Fatalf("expected 3 assignments, got %d", assigned)
	}

	perOwner := make(map[uuid.UUID]int)
	for _, l := range leads.leads {
		if l.AssignedTo != nil {
			perOwner[*l.AssignedTo]++
		}
	}
	if len(perOwner) != 2 {
		t.Fatalf("expected both salespeople to receive leads, got %d owners", len(perOwner))
	}
	for owner, n := range perOwner {
		if n != 1 && n != 2 {
			t.Fatalf("owner %s received %d leads, expected rotation", owner, n)
		}
	}

	if len(leads.activities) != 3 {
		t.Fatalf("expected 3 assignment notes, got %d", len(leads.activities))
	}
	note := leads.activities[0]
	if note.ActivityType != leadsrepo.ActivityNote || note.Title != "Auto-Assignment" {
		t.Fatalf("unexpected note activity: %+v", note)
	}
}

func TestAutoAssignWithoutSalespeople(t *testing.T) {
	leads := newFakeLeadStore()
	leads.add(leadsrepo.Lead{Score: 90})
	auto := newTestAutomation(leads, &fakeUserStore{}, &fakeScorer{})

	assigned, err := auto.AutoAssignLeads(context.Background(), 80)
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if assigned != 0 {
		t.Fatalf("expected 0 assignments without salespeople, got %d", assigned)
	}
}

func TestAutoAssignSkipsFailedLead(t *testing.T) {
	leads := newFakeLeadStore()
	bad := leads.add(leadsrepo.Lead{Score: 90})
	leads.add(leadsrepo.Lead{Score: 85})
	leads.failAssign[bad.ID] = true

	users := &fakeUserStore{salespeople: []authrepo.User{salesperson("Ana")}}
	auto := newTestAutomation(leads, users, &fakeScorer{})

	assigned, err := auto.AutoAssignLeads(context.Background(), 80)
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if assigned != 1 {
		t.Fatalf("expected failed lead to be skipped, got %d assignments", assigned)
	}
}

func TestUpdateLeadPrioritiesBucketsAndIdempotence(t *testing.T) {
	leads := newFakeLeadStore()
	hot := leads.add(leadsrepo.Lead{Score: 85})
	high := leads.add(leadsrepo.Lead{Score: 65})
	medium := leads.add(leadsrepo.Lead{Score: 45})
	low := leads.add(leadsrepo.Lead{Score: 10})

	auto := newTestAutomation(leads, &fakeUserStore{}, &fakeScorer{})
	ctx := context.Background()

	updated, err := auto.UpdateLeadPriorities(ctx)
	if err != nil {
		t.Fatalf("update priorities: %v", err)
	}
	// The medium lead starts in the right bucket.
	if updated != 3 {
		t.Fatalf("expected 3 updates, got %d", updated)
	}

	expect := map[uuid.UUID]string{
		hot.ID:    leadsrepo.PriorityHot,
		high.ID:   leadsrepo.PriorityHigh,
		medium.ID: leadsrepo.PriorityMedium,
		low.ID:    leadsrepo.PriorityLow,
	}
	for id, want := range expect {
		if got := leads.leads[id].Priority; got != want {
			t.Fatalf("lead %s: expected priority %s, got %s", id, want, got)
		}
	}

	// A second run finds every lead already bucketed.
	updated, err = auto.UpdateLeadPriorities(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected idempotent second run, got %d updates", updated)
	}
}

func TestMarkQualifiedLeadsMonotonic(t *testing.T) {
	leads := newFakeLeadStore()
	eligible := leads.add(leadsrepo.Lead{Score: 85})
	leads.add(leadsrepo.Lead{Score: 40})
	already := leads.add(leadsrepo.Lead{Score: 90, IsQualified: true})

	auto := newTestAutomation(leads, &fakeUserStore{}, &fakeScorer{})

	qualified, err := auto.MarkQualifiedLeads(context.Background(), 80)
	if err != nil {
		t.Fatalf("mark qualified: %v", err)
	}
	if qualified != 1 {
		t.Fatalf("expected 1 newly qualified lead, got %d", qualified)
	}
	if !leads.leads[eligible.ID].IsQualified {
		t.Fatal("eligible lead not qualified")
	}
	if !leads.leads[already.ID].IsQualified {
		t.Fatal("already-qualified lead must stay qualified")
	}
}

func TestScheduleFollowUpsByScore(t *testing.T) {
	leads := newFakeLeadStore()
	urgent := leads.add(leadsrepo.Lead{Score: 85})
	warm := leads.add(leadsrepo.Lead{Score: 65})
	cool := leads.add(leadsrepo.Lead{Score: 45})
	cold := leads.add(leadsrepo.Lead{Score: 10})

	auto := newTestAutomation(leads, &fakeUserStore{}, &fakeScorer{})
	now := time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)
	auto.now = func() time.Time { return now }

	scheduled, err := auto.ScheduleFollowUps(context.Background())
	if err != nil {
		t.Fatalf("schedule follow-ups: %v", err)
	}
	if scheduled != 4 {
		t.Fatalf("expected 4 scheduled, got %d", scheduled)
	}

	expect := map[uuid.UUID]int{urgent.ID: 1, warm.ID: 3, cool.ID: 7, cold.ID: 14}
	for id, days := range expect {
		got := leads.leads[id].NextFollowUpAt
		if got == nil {
			t.Fatalf("lead %s has no follow-up", id)
		}
		if want := now.AddDate(0, 0, days); !got.Equal(want) {
			t.Fatalf("lead %s: expected follow-up %v, got %v", id, want, *got)
		}
	}
}

func TestBulkRecalculateSkipsFailures(t *testing.T) {
	leads := newFakeLeadStore()
	leads.add(leadsrepo.Lead{Score: 10})
	leads.add(leadsrepo.Lead{Score: 20})
	bad := leads.add(leadsrepo.Lead{Score: 30})

	scorer := &fakeScorer{failOn: map[uuid.UUID]bool{bad.ID: true}}
	auto := newTestAutomation(leads, &fakeUserStore{}, scorer)

	processed, err := auto.BulkRecalculate(context.Background())
	if err != nil {
		t.Fatalf("bulk recalculate: %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected 2 processed with 1 skip, got %d", processed)
	}
}

func TestSweepRunsEveryWorkflow(t *testing.T) {
	leads := newFakeLeadStore()
	// Unassigned above the default profile's threshold: assigned and qualified.
	leads.add(leadsrepo.Lead{Score: 85})
	// Above the qualify cutoff only.
	leads.add(leadsrepo.Lead{Score: 72})
	leads.add(leadsrepo.Lead{Score: 30})

	users := &fakeUserStore{salespeople: []authrepo.User{salesperson("Ana")}}
	auto := newTestAutomation(leads, users, &fakeScorer{})

	result, err := auto.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Recalculated != 3 {
		t.Fatalf("expected 3 rescored, got %d", result.Recalculated)
	}
	if result.Assigned != 1 {
		t.Fatalf("expected 1 assigned, got %d", result.Assigned)
	}
	if result.Qualified != 2 {
		t.Fatalf("expected 2 qualified at cutoff 70, got %d", result.Qualified)
	}
	if result.FollowUpsScheduled != 3 {
		t.Fatalf("expected 3 follow-ups, got %d", result.FollowUpsScheduled)
	}
	if result.PrioritiesUpdated == 0 {
		t.Fatal("expected priority updates")
	}
}

func TestPriorityForScore(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, leadsrepo.PriorityHot},
		{80, leadsrepo.PriorityHot},
		{79, leadsrepo.PriorityHigh},
		{60, leadsrepo.PriorityHigh},
		{59, leadsrepo.PriorityMedium},
		{40, leadsrepo.PriorityMedium},
		{39, leadsrepo.PriorityLow},
		{0, leadsrepo.PriorityLow},
	}
	for _, tc := range cases {
		if got := PriorityForScore(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestAssignThresholdFallsBackToConfig(t *testing.T) {
	leads := newFakeLeadStore()
	log := logger.New("development")
	bus := platformevents.NewInMemoryBus(log)
	cfg := fakeAutomationConfig{autoAssign: 65, qualify: 70}

	profiles := &fakeProfileStore{err: repository.ErrNotFound}
	auto := New(leads, &fakeUserStore{}, profiles, &fakeScorer{}, cfg, bus, log)
	if got := auto.AssignThreshold(context.Background()); got != 65 {
		t.Fatalf("expected configured fallback 65, got %d", got)
	}

	profiles = &fakeProfileStore{profile: repository.Profile{
		ID: uuid.New(), Name: "Default", IsDefault: true, IsActive: true,
		AutoAssignThreshold: 80, HotLeadThreshold: 75,
	}}
	auto = New(leads, &fakeUserStore{}, profiles, &fakeScorer{}, cfg, bus, log)
	if got := auto.AssignThreshold(context.Background()); got != 80 {
		t.Fatalf("expected profile threshold 80, got %d", got)
	}
}

func TestSweepSurvivesMissingDefaultProfile(t *testing.T) {
	leads := newFakeLeadStore()
	leads.add(leadsrepo.Lead{Score: 72})

	log := logger.New("development")
	bus := platformevents.NewInMemoryBus(log)
	cfg := fakeAutomationConfig{autoAssign: 80, qualify: 70}
	profiles := &fakeProfileStore{err: repository.ErrNotFound}
	users := &fakeUserStore{salespeople: []authrepo.User{salesperson("Ada")}}
	auto := New(leads, users, profiles, &fakeScorer{}, cfg, bus, log)

	result, err := auto.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Assigned != 0 {
		t.Fatalf("score 72 is below the fallback threshold, got %d assigned", result.Assigned)
	}
	if result.Qualified != 1 {
		t.Fatalf("expected 1 qualified, got %d", result.Qualified)
	}
}
