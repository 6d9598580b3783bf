package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrSourceNotFound = errors.New("lead source not found")

type Source struct {
	ID          uuid.UUID
	Name        string
	SourceType  string
	Description string
	CostPerLead float64
	IsActive    bool
	CreatedAt   time.Time
}

type CreateSourceParams struct {
	Name        string
	SourceType  string
	Description string
	CostPerLead float64
}

func (r *Repository) CreateSource(ctx context.Context, params CreateSourceParams) (Source, error) {
	var s Source
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_sources (name, source_type, description, cost_per_lead)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, source_type, description, cost_per_lead, is_active, created_at
	`, params.Name, params.SourceType, params.Description, params.CostPerLead).Scan(
		&s.ID, &s.Name, &s.SourceType, &s.Description, &s.CostPerLead, &s.IsActive, &s.CreatedAt,
	)
	return s, err
}

func (r *Repository) GetSourceByID(ctx context.Context, id uuid.UUID) (Source, error) {
	var s Source
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, source_type, description, cost_per_lead, is_active, created_at
		FROM lead_sources WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.SourceType, &s.Description, &s.CostPerLead, &s.IsActive, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Source{}, ErrSourceNotFound
	}
	return s, err
}

func (r *Repository) ListSources(ctx context.Context, activeOnly bool) ([]Source, error) {
	query := `
		SELECT id, name, source_type, description, cost_per_lead, is_active, created_at
		FROM lead_sources`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Source, 0)
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Name, &s.SourceType, &s.Description, &s.CostPerLead, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *Repository) SetSourceActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_sources SET is_active = $1 WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSourceNotFound
	}
	return nil
}
