package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityRule awards points per matching activity with optional time decay.
// Empty type or outcome filters match any activity.
type ActivityRule struct {
	ID                uuid.UUID
	Name              string
	ActivityType      string
	Outcome           string
	PointsPerActivity int
	MaxPointsPerDay   int
	DecayDays         int
	DecayRate         float64
	IsActive          bool
	CreatedAt         time.Time
}

type CreateActivityRuleParams struct {
	Name              string
	ActivityType      string
	Outcome           string
	PointsPerActivity int
	MaxPointsPerDay   int
	DecayDays         int
	DecayRate         float64
}

func (r *Repository) CreateActivityRule(ctx context.Context, params CreateActivityRuleParams) (ActivityRule, error) {
	var rule ActivityRule
	err := r.pool.QueryRow(ctx, `
		INSERT INTO activity_scoring_rules
			(name, activity_type, outcome, points_per_activity, max_points_per_day, decay_days, decay_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, activity_type, outcome, points_per_activity, max_points_per_day, decay_days, decay_rate, is_active, created_at
	`,
		params.Name, params.ActivityType, params.Outcome, params.PointsPerActivity,
		params.MaxPointsPerDay, params.DecayDays, params.DecayRate,
	).Scan(
		&rule.ID, &rule.Name, &rule.ActivityType, &rule.Outcome, &rule.PointsPerActivity,
		&rule.MaxPointsPerDay, &rule.DecayDays, &rule.DecayRate, &rule.IsActive, &rule.CreatedAt,
	)
	return rule, err
}

func (r *Repository) ListActiveActivityRules(ctx context.Context) ([]ActivityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, activity_type, outcome, points_per_activity, max_points_per_day, decay_days, decay_rate, is_active, created_at
		FROM activity_scoring_rules
		WHERE is_active = true
		ORDER BY activity_type ASC, outcome ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ActivityRule, 0)
	for rows.Next() {
		var rule ActivityRule
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.ActivityType, &rule.Outcome, &rule.PointsPerActivity,
			&rule.MaxPointsPerDay, &rule.DecayDays, &rule.DecayRate, &rule.IsActive, &rule.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rule)
	}
	return items, rows.Err()
}

func (r *Repository) SetActivityRuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE activity_scoring_rules SET is_active = $1 WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
