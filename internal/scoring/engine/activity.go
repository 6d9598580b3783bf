package engine

import (
	"math"
	"time"

	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/repository"
)

// positiveOutcomes are the activity outcomes counted toward engagement quality.
var positiveOutcomes = map[string]bool{
	leadsrepo.OutcomeInterested:        true,
	leadsrepo.OutcomeMeetingScheduled:  true,
	leadsrepo.OutcomeProposalRequested: true,
}

// behavioralScore sums points across every activity and every matching
// activity rule. A rule matches when its type and outcome filters are each
// empty or equal to the activity's. Points decay exponentially once the
// activity's age exceeds the rule's decay window; decayed points are
// truncated to integers. The total is clamped to [0, 100].
func behavioralScore(activities []leadsrepo.Activity, activityRules []repository.ActivityRule, now time.Time) int {
	total := 0

	for _, activity := range activities {
		ageDays := daysBetween(activity.CreatedAt, now)

		for _, rule := range activityRules {
			if rule.ActivityType != "" && rule.ActivityType != activity.ActivityType {
				continue
			}
			if rule.Outcome != "" && rule.Outcome != activity.Outcome {
				continue
			}

			points := rule.PointsPerActivity
			if ageDays > rule.DecayDays {
				decay := math.Exp(-rule.DecayRate * float64(ageDays-rule.DecayDays))
				points = int(float64(points) * decay)
			}
			total += points
		}
	}

	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// engagementScore combines recency, frequency and quality of recent
// activities. Leads with no activity score zero.
func engagementScore(activities []leadsrepo.Activity, now time.Time) int {
	if len(activities) == 0 {
		return 0
	}

	var latest time.Time
	for _, a := range activities {
		if a.CreatedAt.After(latest) {
			latest = a.CreatedAt
		}
	}

	recency := 0
	switch days := daysBetween(latest, now); {
	case days <= 1:
		recency = 40
	case days <= 3:
		recency = 30
	case days <= 7:
		recency = 20
	case days <= 14:
		recency = 10
	}

	cutoff := now.AddDate(0, 0, -30)
	recentCount := 0
	positiveCount := 0
	for _, a := range activities {
		if a.CreatedAt.Before(cutoff) {
			continue
		}
		recentCount++
		if positiveOutcomes[a.Outcome] {
			positiveCount++
		}
	}

	frequency := 0
	switch {
	case recentCount >= 10:
		frequency = 30
	case recentCount >= 5:
		frequency = 20
	case recentCount >= 2:
		frequency = 10
	}

	quality := positiveCount * 10
	if quality > 30 {
		quality = 30
	}

	return recency + frequency + quality
}

// daysBetween counts whole elapsed days from t to now.
func daysBetween(t, now time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}
