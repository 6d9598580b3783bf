package engine

import (
	"context"
	"time"

	"leadgen_backend/internal/scoring/rules"

	"github.com/google/uuid"
)

// MatchedRule is one rule that contributed points to a criterion.
type MatchedRule struct {
	FieldName string `json:"fieldName"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
	Points    int    `json:"points"`
}

// CriterionExplanation shows one criterion's contribution and which of its
// rules matched.
type CriterionExplanation struct {
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	Score         float64       `json:"score"`
	MatchingRules []MatchedRule `json:"matchingRules"`
}

// Explanation is the full "why this score" breakdown for a lead.
type Explanation struct {
	LeadID            uuid.UUID              `json:"leadId"`
	TotalScore        int                    `json:"totalScore"`
	CriteriaBreakdown []CriterionExplanation `json:"criteriaBreakdown"`
	ActivityImpact    int                    `json:"activityImpact"`
	EngagementImpact  int                    `json:"engagementImpact"`
}

// Explain reports how a lead's current score decomposes without persisting
// anything.
func (e *Engine) Explain(ctx context.Context, leadID uuid.UUID) (Explanation, error) {
	profile, err := e.resolveProfile(ctx)
	if err != nil {
		return Explanation{}, err
	}

	lead, err := e.leads.GetByID(ctx, leadID)
	if err != nil {
		return Explanation{}, err
	}

	snap := e.buildSnapshot(ctx, lead)

	explanation := Explanation{
		LeadID:            leadID,
		TotalScore:        lead.Score,
		CriteriaBreakdown: make([]CriterionExplanation, 0),
	}

	criteriaRows, err := e.cfg.ListEnabledProfileCriteria(ctx, profile.ID)
	if err != nil {
		return Explanation{}, err
	}

	for _, row := range criteriaRows {
		category := rules.Category(row.Criteria.Category)
		if category == rules.CategoryBehavioral || category == rules.CategoryEngagement {
			continue
		}

		contribution, err := e.evaluateCriterion(ctx, snap, row)
		if err != nil {
			return Explanation{}, err
		}

		ruleRows, err := e.cfg.ListActiveRulesByCriteria(ctx, row.Criteria.ID)
		if err != nil {
			return Explanation{}, err
		}

		matching := make([]MatchedRule, 0)
		for _, rr := range ruleRows {
			points := rules.Evaluate(snap, rules.Rule{
				FieldName: rr.FieldName,
				Operator:  rules.Operator(rr.Operator),
				Value:     rules.ParseValue(rr.Value),
				Points:    rr.Points,
			})
			if points > 0 {
				matching = append(matching, MatchedRule{
					FieldName: rr.FieldName,
					Operator:  rr.Operator,
					Value:     rr.Value,
					Points:    points,
				})
			}
		}

		explanation.CriteriaBreakdown = append(explanation.CriteriaBreakdown, CriterionExplanation{
			Name:          row.Criteria.Name,
			Category:      row.Criteria.Category,
			Score:         contribution,
			MatchingRules: matching,
		})
	}

	activities, err := e.leads.ListActivitiesSince(ctx, leadID, time.Time{})
	if err != nil {
		return Explanation{}, err
	}
	activityRules, err := e.cfg.ListActiveActivityRules(ctx)
	if err != nil {
		return Explanation{}, err
	}

	now := e.now()
	explanation.ActivityImpact = behavioralScore(activities, activityRules, now)
	explanation.EngagementImpact = engagementScore(activities, now)

	return explanation, nil
}
