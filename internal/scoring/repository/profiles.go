package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Profile struct {
	ID                  uuid.UUID
	Name                string
	Description         string
	IsDefault           bool
	IsActive            bool
	AutoAssignThreshold int
	HotLeadThreshold    int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ProfileCriteria links a profile to a criterion with a profile-local weight.
type ProfileCriteria struct {
	ProfileID        uuid.UUID
	CriteriaID       uuid.UUID
	WeightMultiplier float64
	IsEnabled        bool
}

type CreateProfileParams struct {
	Name                string
	Description         string
	AutoAssignThreshold int
	HotLeadThreshold    int
}

func (r *Repository) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		INSERT INTO scoring_profiles (name, description, auto_assign_threshold, hot_lead_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, is_default, is_active, auto_assign_threshold, hot_lead_threshold, created_at, updated_at
	`, params.Name, params.Description, params.AutoAssignThreshold, params.HotLeadThreshold).Scan(
		&p.ID, &p.Name, &p.Description, &p.IsDefault, &p.IsActive,
		&p.AutoAssignThreshold, &p.HotLeadThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetDefaultProfile returns the active default profile.
func (r *Repository) GetDefaultProfile(ctx context.Context) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_default, is_active, auto_assign_threshold, hot_lead_threshold, created_at, updated_at
		FROM scoring_profiles
		WHERE is_default = true AND is_active = true
		LIMIT 1
	`).Scan(
		&p.ID, &p.Name, &p.Description, &p.IsDefault, &p.IsActive,
		&p.AutoAssignThreshold, &p.HotLeadThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *Repository) GetProfileByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_default, is_active, auto_assign_threshold, hot_lead_threshold, created_at, updated_at
		FROM scoring_profiles WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.IsDefault, &p.IsActive,
		&p.AutoAssignThreshold, &p.HotLeadThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *Repository) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, is_default, is_active, auto_assign_threshold, hot_lead_threshold, created_at, updated_at
		FROM scoring_profiles
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Profile, 0)
	for rows.Next() {
		var p Profile
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.IsDefault, &p.IsActive,
			&p.AutoAssignThreshold, &p.HotLeadThreshold, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type UpdateProfileParams struct {
	Name                *string
	Description         *string
	IsActive            *bool
	AutoAssignThreshold *int
	HotLeadThreshold    *int
}

func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		UPDATE scoring_profiles
		SET name = COALESCE($1, name),
			description = COALESCE($2, description),
			is_active = COALESCE($3, is_active),
			auto_assign_threshold = COALESCE($4, auto_assign_threshold),
			hot_lead_threshold = COALESCE($5, hot_lead_threshold),
			updated_at = now()
		WHERE id = $6
		RETURNING id, name, description, is_default, is_active, auto_assign_threshold, hot_lead_threshold, created_at, updated_at
	`, params.Name, params.Description, params.IsActive, params.AutoAssignThreshold, params.HotLeadThreshold, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.IsDefault, &p.IsActive,
		&p.AutoAssignThreshold, &p.HotLeadThreshold, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// PromoteDefaultProfile makes the given profile the default and demotes any
// previous default in the same transaction.
func (r *Repository) PromoteDefaultProfile(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE scoring_profiles SET is_default = false, updated_at = now() WHERE is_default = true AND id <> $1
	`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE scoring_profiles SET is_default = true, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// AttachCriteria links a criterion to a profile, upserting the weight multiplier.
func (r *Repository) AttachCriteria(ctx context.Context, profileID, criteriaID uuid.UUID, weightMultiplier float64, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profile_criteria (profile_id, criteria_id, weight_multiplier, is_enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile_id, criteria_id)
		DO UPDATE SET weight_multiplier = EXCLUDED.weight_multiplier, is_enabled = EXCLUDED.is_enabled
	`, profileID, criteriaID, weightMultiplier, enabled)
	return err
}

// ProfileCriteriaRow joins a profile link with its criterion.
type ProfileCriteriaRow struct {
	Criteria         Criteria
	WeightMultiplier float64
}

// ListEnabledProfileCriteria returns a profile's enabled links whose criteria
// are themselves active.
func (r *Repository) ListEnabledProfileCriteria(ctx context.Context, profileID uuid.UUID) ([]ProfileCriteriaRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.category, c.description, c.weight, c.max_score, c.is_active, c.created_at, c.updated_at,
			pc.weight_multiplier
		FROM profile_criteria pc
		JOIN scoring_criteria c ON c.id = pc.criteria_id
		WHERE pc.profile_id = $1 AND pc.is_enabled = true AND c.is_active = true
		ORDER BY c.category ASC, c.name ASC
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ProfileCriteriaRow, 0)
	for rows.Next() {
		var row ProfileCriteriaRow
		if err := rows.Scan(
			&row.Criteria.ID, &row.Criteria.Name, &row.Criteria.Category, &row.Criteria.Description,
			&row.Criteria.Weight, &row.Criteria.MaxScore, &row.Criteria.IsActive,
			&row.Criteria.CreatedAt, &row.Criteria.UpdatedAt, &row.WeightMultiplier,
		); err != nil {
			return nil, err
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
