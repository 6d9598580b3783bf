package engine

import (
	"testing"
	"time"

	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/repository"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func activityAt(activityType, outcome string, daysAgo int) leadsrepo.Activity {
	return leadsrepo.Activity{
		ActivityType: activityType,
		Outcome:      outcome,
		CreatedAt:    testNow.AddDate(0, 0, -daysAgo),
	}
}

func callRule(points, decayDays int, decayRate float64) repository.ActivityRule {
	return repository.ActivityRule{
		Name:              "Successful Call",
		ActivityType:      leadsrepo.ActivityCall,
		Outcome:           leadsrepo.OutcomeSuccessful,
		PointsPerActivity: points,
		MaxPointsPerDay:   points * 3,
		DecayDays:         decayDays,
		DecayRate:         decayRate,
	}
}

func TestBehavioralScoreFullPointsInsideDecayWindow(t *testing.T) {
	rules := []repository.ActivityRule{callRule(10, 30, 0.10)}
	activities := []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, 5),
	}

	if got := behavioralScore(activities, rules, testNow); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestBehavioralScoreDecaysPastWindow(t *testing.T) {
	// 40 days old with a 30-day window and rate 0.10: 10 * e^-1 truncates to 3.
	rules := []repository.ActivityRule{callRule(10, 30, 0.10)}
	activities := []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, 40),
	}

	if got := behavioralScore(activities, rules, testNow); got != 3 {
		t.Fatalf("expected decayed score 3, got %d", got)
	}
}

func TestBehavioralScoreRuleFilters(t *testing.T) {
	rules := []repository.ActivityRule{callRule(10, 30, 0.10)}

	// Wrong type and wrong outcome both miss the rule.
	activities := []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityEmail, leadsrepo.OutcomeSuccessful, 1),
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeNoResponse, 1),
	}
	if got := behavioralScore(activities, rules, testNow); got != 0 {
		t.Fatalf("expected 0 for non-matching activities, got %d", got)
	}

	// An empty type filter matches any activity type with the outcome.
	wildcard := repository.ActivityRule{
		Name:              "Showed Interest",
		Outcome:           leadsrepo.OutcomeInterested,
		PointsPerActivity: 12,
		DecayDays:         30,
		DecayRate:         0.10,
	}
	activities = []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityMeeting, leadsrepo.OutcomeInterested, 2),
	}
	if got := behavioralScore(activities, []repository.ActivityRule{wildcard}, testNow); got != 12 {
		t.Fatalf("expected 12 via wildcard type, got %d", got)
	}
}

func TestBehavioralScoreClampsAtHundred(t *testing.T) {
	rules := []repository.ActivityRule{callRule(20, 30, 0.10)}
	activities := make([]leadsrepo.Activity, 0, 8)
	for i := 0; i < 8; i++ {
		activities = append(activities, activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, 1))
	}

	if got := behavioralScore(activities, rules, testNow); got != 100 {
		t.Fatalf("expected clamp at 100, got %d", got)
	}
}

func TestEngagementScoreNoActivity(t *testing.T) {
	if got := engagementScore(nil, testNow); got != 0 {
		t.Fatalf("expected 0 for no activity, got %d", got)
	}
}

func TestEngagementScoreRecencyBuckets(t *testing.T) {
	cases := []struct {
		daysAgo int
		want    int
	}{
		{0, 40},
		{1, 40},
		{2, 30},
		{3, 30},
		{5, 20},
		{10, 10},
		{20, 0},
	}
	for _, tc := range cases {
		activities := []leadsrepo.Activity{
			activityAt(leadsrepo.ActivityNote, leadsrepo.OutcomeNoResponse, tc.daysAgo),
		}
		if got := engagementScore(activities, testNow); got != tc.want {
			t.Fatalf("activity %d days ago: expected %d, got %d", tc.daysAgo, tc.want, got)
		}
	}
}

func TestEngagementScoreFrequencyAndQuality(t *testing.T) {
	// Five recent activities, two with positive outcomes, latest 2 days ago:
	// recency 30 + frequency 20 + quality 20 = 70.
	activities := []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeInterested, 2),
		activityAt(leadsrepo.ActivityEmail, leadsrepo.OutcomeNoResponse, 4),
		activityAt(leadsrepo.ActivityMeeting, leadsrepo.OutcomeMeetingScheduled, 6),
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeNoResponse, 8),
		activityAt(leadsrepo.ActivityNote, leadsrepo.OutcomeNoResponse, 12),
	}

	if got := engagementScore(activities, testNow); got != 70 {
		t.Fatalf("expected 70, got %d", got)
	}
}

func TestEngagementScoreIgnoresActivityOlderThanThirtyDays(t *testing.T) {
	// Only the 45-day-old activity exists: recency 0, frequency 0, quality 0.
	activities := []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeInterested, 45),
	}
	if got := engagementScore(activities, testNow); got != 0 {
		t.Fatalf("expected 0 for stale activity, got %d", got)
	}

	// A recent one alongside it counts alone: recency 30, frequency 0
	// (one recent activity), quality 10.
	activities = append(activities, activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeInterested, 2))
	if got := engagementScore(activities, testNow); got != 40 {
		t.Fatalf("expected 40, got %d", got)
	}
}

func TestEngagementQualityCapsAtThirty(t *testing.T) {
	activities := make([]leadsrepo.Activity, 0, 5)
	for i := 0; i < 5; i++ {
		activities = append(activities, activityAt(leadsrepo.ActivityMeeting, leadsrepo.OutcomeInterested, 2))
	}

	// recency 30 + frequency 20 + quality capped at 30 = 80.
	if got := engagementScore(activities, testNow); got != 80 {
		t.Fatalf("expected 80, got %d", got)
	}
}

func TestBehavioralScoreDecayNeverIncreasesWithAge(t *testing.T) {
	rules := []repository.ActivityRule{callRule(10, 30, 0.10)}

	prev := behavioralScore([]leadsrepo.Activity{
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, 30),
	}, rules, testNow)
	if prev != 10 {
		t.Fatalf("expected full points at the decay boundary, got %d", prev)
	}

	for age := 31; age <= 120; age++ {
		got := behavioralScore([]leadsrepo.Activity{
			activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, age),
		}, rules, testNow)
		if got > prev {
			t.Fatalf("decayed score rose from %d to %d at age %d", prev, got, age)
		}
		prev = got
	}

	// Representative points where truncation leaves room for a strict drop:
	// 10*e^-0.1 = 9, 10*e^-1 = 3, 10*e^-2 = 1, 10*e^-3 = 0.
	for _, tc := range []struct {
		age  int
		want int
	}{
		{31, 9},
		{40, 3},
		{50, 1},
		{60, 0},
	} {
		got := behavioralScore([]leadsrepo.Activity{
			activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, tc.age),
		}, rules, testNow)
		if got != tc.want {
			t.Fatalf("age %d: expected %d, got %d", tc.age, tc.want, got)
		}
	}
}

func TestBehavioralScoreNegativePenaltyRules(t *testing.T) {
	rules := []repository.ActivityRule{
		callRule(10, 30, 0.10),
		{
			Name:              "No Response Penalty",
			Outcome:           leadsrepo.OutcomeNoResponse,
			PointsPerActivity: -5,
			DecayDays:         30,
			DecayRate:         0.10,
		},
	}

	// Two successful calls and one ignored email: 10 + 10 - 5.
	activities := []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, 2),
		activityAt(leadsrepo.ActivityCall, leadsrepo.OutcomeSuccessful, 4),
		activityAt(leadsrepo.ActivityEmail, leadsrepo.OutcomeNoResponse, 3),
	}
	if got := behavioralScore(activities, rules, testNow); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}

	// Penalties alone floor at zero.
	activities = []leadsrepo.Activity{
		activityAt(leadsrepo.ActivityEmail, leadsrepo.OutcomeNoResponse, 1),
		activityAt(leadsrepo.ActivityEmail, leadsrepo.OutcomeNoResponse, 2),
	}
	if got := behavioralScore(activities, rules, testNow); got != 0 {
		t.Fatalf("expected floor at 0, got %d", got)
	}
}
