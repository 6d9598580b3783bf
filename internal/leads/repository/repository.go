package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// Lead statuses.
const (
	StatusNew          = "new"
	StatusContacted    = "contacted"
	StatusQualified    = "qualified"
	StatusProposalSent = "proposal_sent"
	StatusNegotiating  = "negotiating"
	StatusConverted    = "converted"
	StatusLost         = "lost"
	StatusUnqualified  = "unqualified"
)

// Lead priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityHot    = "hot"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID              uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	CompanyName     string
	JobTitle        string
	Address         string
	City            string
	Territory       string
	Industry        string
	CompanySize     string
	AnnualRevenue   string
	BudgetRange     string
	Timeline        string
	InitialInterest string
	Requirements    string
	Notes           string
	Status          string
	Priority        string
	SourceID        uuid.UUID
	AssignedTo      *uuid.UUID
	Score           int
	IsQualified     bool
	IsActive        bool
	FirstContactAt  *time.Time
	LastContactAt   *time.Time
	NextFollowUpAt  *time.Time
	ConvertedAt     *time.Time
	ConversionValue *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const leadColumns = `id, first_name, last_name, email, phone, company_name, job_title,
	address, city, territory, industry, company_size, annual_revenue, budget_range, timeline,
	initial_interest, requirements, notes, status, priority, source_id, assigned_to, score,
	is_qualified, is_active, first_contact_at, last_contact_at, next_follow_up_at,
	converted_at, conversion_value, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.CompanyName, &l.JobTitle,
		&l.Address, &l.City, &l.Territory, &l.Industry, &l.CompanySize, &l.AnnualRevenue, &l.BudgetRange, &l.Timeline,
		&l.InitialInterest, &l.Requirements, &l.Notes, &l.Status, &l.Priority, &l.SourceID, &l.AssignedTo, &l.Score,
		&l.IsQualified, &l.IsActive, &l.FirstContactAt, &l.LastContactAt, &l.NextFollowUpAt,
		&l.ConvertedAt, &l.ConversionValue, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

type CreateLeadParams struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	CompanyName     string
	JobTitle        string
	Address         string
	City            string
	Territory       string
	Industry        string
	CompanySize     string
	AnnualRevenue   string
	BudgetRange     string
	Timeline        string
	InitialInterest string
	Requirements    string
	Notes           string
	SourceID        uuid.UUID
	AssignedTo      *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			first_name, last_name, email, phone, company_name, job_title,
			address, city, territory, industry, company_size, annual_revenue, budget_range, timeline,
			initial_interest, requirements, notes, source_id, assigned_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+leadColumns,
		params.FirstName, params.LastName, params.Email, params.Phone, params.CompanyName, params.JobTitle,
		params.Address, params.City, params.Territory, params.Industry, params.CompanySize, params.AnnualRevenue,
		params.BudgetRange, params.Timeline, params.InitialInterest, params.Requirements, params.Notes,
		params.SourceID, params.AssignedTo,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

type UpdateLeadParams struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Phone           *string
	CompanyName     *string
	JobTitle        *string
	Address         *string
	City            *string
	Territory       *string
	Industry        *string
	CompanySize     *string
	AnnualRevenue   *string
	BudgetRange     *string
	Timeline        *string
	InitialInterest *string
	Requirements    *string
	Notes           *string
	SourceID        *uuid.UUID
	NextFollowUpAt  *time.Time
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := make([]string, 0, 20)
	args := make([]interface{}, 0, 20)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.FirstName != nil {
		add("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		add("last_name", *params.LastName)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.CompanyName != nil {
		add("company_name", *params.CompanyName)
	}
	if params.JobTitle != nil {
		add("job_title", *params.JobTitle)
	}
	if params.Address != nil {
		add("address", *params.Address)
	}
	if params.City != nil {
		add("city", *params.City)
	}
	if params.Territory != nil {
		add("territory", *params.Territory)
	}
	if params.Industry != nil {
		add("industry", *params.Industry)
	}
	if params.CompanySize != nil {
		add("company_size", *params.CompanySize)
	}
	if params.AnnualRevenue != nil {
		add("annual_revenue", *params.AnnualRevenue)
	}
	if params.BudgetRange != nil {
		add("budget_range", *params.BudgetRange)
	}
	if params.Timeline != nil {
		add("timeline", *params.Timeline)
	}
	if params.InitialInterest != nil {
		add("initial_interest", *params.InitialInterest)
	}
	if params.Requirements != nil {
		add("requirements", *params.Requirements)
	}
	if params.Notes != nil {
		add("notes", *params.Notes)
	}
	if params.SourceID != nil {
		add("source_id", *params.SourceID)
	}
	if params.NextFollowUpAt != nil {
		add("next_follow_up_at", *params.NextFollowUpAt)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE leads SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), leadColumns,
	)
	return scanLead(r.pool.QueryRow(ctx, query, args...))
}

type ListFilter struct {
	Status     string
	Priority   string
	AssignedTo *uuid.UUID
	SourceID   *uuid.UUID
	MinScore   *int
	Search     string
	Limit      int
	Offset     int
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	conds := []string{"is_active = true"}
	args := make([]interface{}, 0, 8)
	add := func(cond string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Priority != "" {
		add("priority = $%d", filter.Priority)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.SourceID != nil {
		add("source_id = $%d", *filter.SourceID)
	}
	if filter.MinScore != nil {
		add("score >= $%d", *filter.MinScore)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email ILIKE $%[1]d OR company_name ILIKE $%[1]d)",
			len(args),
		))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(
		"SELECT %s FROM leads WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		leadColumns, strings.Join(conds, " AND "), limit, filter.Offset,
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListHot returns active leads at or above the given score, highest first.
func (r *Repository) ListHot(ctx context.Context, minScore int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE is_active = true AND score >= $1
		ORDER BY score DESC, created_at DESC
	`, minScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListActive returns every active lead. Used by bulk recalculation.
func (r *Repository) ListActive(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE is_active = true ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListUnassignedAbove returns active, unassigned leads at or above the score threshold.
func (r *Repository) ListUnassignedAbove(ctx context.Context, minScore int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE is_active = true AND assigned_to IS NULL AND score >= $1
		ORDER BY score DESC, created_at ASC
	`, minScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// ListWithoutFollowUp returns active new or contacted leads lacking a follow-up date.
func (r *Repository) ListWithoutFollowUp(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE is_active = true AND next_follow_up_at IS NULL AND status IN ($1, $2)
		ORDER BY created_at ASC
	`, StatusNew, StatusContacted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

func (r *Repository) Assign(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET assigned_to = $1, updated_at = now() WHERE id = $2
	`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScore writes only the score column. The most recent calculation wins.
func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET score = $1, updated_at = now() WHERE id = $2
	`, score, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdatePriority(ctx context.Context, id uuid.UUID, priority string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET priority = $1, updated_at = now() WHERE id = $2 AND priority <> $1
	`, priority, id)
	return err
}

// MarkQualified flips is_qualified on. The flag is never cleared automatically.
func (r *Repository) MarkQualified(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET is_qualified = true, updated_at = now() WHERE id = $1 AND is_qualified = false
	`, id)
	return err
}

func (r *Repository) SetNextFollowUp(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET next_follow_up_at = $1, updated_at = now() WHERE id = $2
	`, at, id)
	return err
}

// Deactivate soft-deletes a lead.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET is_active = false, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) touchContactDates(ctx context.Context, leadID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET last_contact_at = $1,
			first_contact_at = COALESCE(first_contact_at, $1),
			updated_at = now()
		WHERE id = $2
	`, at, leadID)
	return err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.CompanyName, &l.JobTitle,
			&l.Address, &l.City, &l.Territory, &l.Industry, &l.CompanySize, &l.AnnualRevenue, &l.BudgetRange, &l.Timeline,
			&l.InitialInterest, &l.Requirements, &l.Notes, &l.Status, &l.Priority, &l.SourceID, &l.AssignedTo, &l.Score,
			&l.IsQualified, &l.IsActive, &l.FirstContactAt, &l.LastContactAt, &l.NextFollowUpAt,
			&l.ConvertedAt, &l.ConversionValue, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
