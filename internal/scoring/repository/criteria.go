package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Criteria struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Description string
	Weight      float64
	MaxScore    int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateCriteriaParams struct {
	Name        string
	Category    string
	Description string
	Weight      float64
	MaxScore    int
}

func (r *Repository) CreateCriteria(ctx context.Context, params CreateCriteriaParams) (Criteria, error) {
	var c Criteria
	err := r.pool.QueryRow(ctx, `
		INSERT INTO scoring_criteria (name, category, description, weight, max_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, category, description, weight, max_score, is_active, created_at, updated_at
	`, params.Name, params.Category, params.Description, params.Weight, params.MaxScore).Scan(
		&c.ID, &c.Name, &c.Category, &c.Description, &c.Weight, &c.MaxScore, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *Repository) GetCriteriaByID(ctx context.Context, id uuid.UUID) (Criteria, error) {
	var c Criteria
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, category, description, weight, max_score, is_active, created_at, updated_at
		FROM scoring_criteria WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.Weight, &c.MaxScore, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Criteria{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) ListCriteria(ctx context.Context) ([]Criteria, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category, description, weight, max_score, is_active, created_at, updated_at
		FROM scoring_criteria
		ORDER BY category ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Criteria, 0)
	for rows.Next() {
		var c Criteria
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.Weight, &c.MaxScore, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

type UpdateCriteriaParams struct {
	Name        *string
	Description *string
	Weight      *float64
	MaxScore    *int
	IsActive    *bool
}

func (r *Repository) UpdateCriteria(ctx context.Context, id uuid.UUID, params UpdateCriteriaParams) (Criteria, error) {
	var c Criteria
	err := r.pool.QueryRow(ctx, `
		UPDATE scoring_criteria
		SET name = COALESCE($1, name),
			description = COALESCE($2, description),
			weight = COALESCE($3, weight),
			max_score = COALESCE($4, max_score),
			is_active = COALESCE($5, is_active),
			updated_at = now()
		WHERE id = $6
		RETURNING id, name, category, description, weight, max_score, is_active, created_at, updated_at
	`, params.Name, params.Description, params.Weight, params.MaxScore, params.IsActive, id).Scan(
		&c.ID, &c.Name, &c.Category, &c.Description, &c.Weight, &c.MaxScore, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Criteria{}, ErrNotFound
	}
	return c, err
}

type Rule struct {
	ID          uuid.UUID
	CriteriaID  uuid.UUID
	FieldName   string
	Operator    string
	Value       string
	Points      int
	Description string
	IsActive    bool
	EvalOrder   int
	CreatedAt   time.Time
}

type CreateRuleParams struct {
	CriteriaID  uuid.UUID
	FieldName   string
	Operator    string
	Value       string
	Points      int
	Description string
	EvalOrder   int
}

func (r *Repository) CreateRule(ctx context.Context, params CreateRuleParams) (Rule, error) {
	var rule Rule
	err := r.pool.QueryRow(ctx, `
		INSERT INTO scoring_rules (criteria_id, field_name, operator, value, points, description, eval_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, criteria_id, field_name, operator, value, points, description, is_active, eval_order, created_at
	`, params.CriteriaID, params.FieldName, params.Operator, params.Value, params.Points, params.Description, params.EvalOrder).Scan(
		&rule.ID, &rule.CriteriaID, &rule.FieldName, &rule.Operator, &rule.Value,
		&rule.Points, &rule.Description, &rule.IsActive, &rule.EvalOrder, &rule.CreatedAt,
	)
	return rule, err
}

// ListActiveRulesByCriteria returns active rules for a criterion in display order.
func (r *Repository) ListActiveRulesByCriteria(ctx context.Context, criteriaID uuid.UUID) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, criteria_id, field_name, operator, value, points, description, is_active, eval_order, created_at
		FROM scoring_rules
		WHERE criteria_id = $1 AND is_active = true
		ORDER BY eval_order ASC, id ASC
	`, criteriaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRules(rows)
}

func (r *Repository) ListRulesByCriteria(ctx context.Context, criteriaID uuid.UUID) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, criteria_id, field_name, operator, value, points, description, is_active, eval_order, created_at
		FROM scoring_rules
		WHERE criteria_id = $1
		ORDER BY eval_order ASC, id ASC
	`, criteriaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRules(rows)
}

func (r *Repository) SetRuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE scoring_rules SET is_active = $1 WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scoring_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectRules(rows pgx.Rows) ([]Rule, error) {
	items := make([]Rule, 0)
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.ID, &rule.CriteriaID, &rule.FieldName, &rule.Operator, &rule.Value,
			&rule.Points, &rule.Description, &rule.IsActive, &rule.EvalOrder, &rule.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, rule)
	}
	return items, rows.Err()
}
