package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Activity types.
const (
	ActivityCall         = "call"
	ActivityEmail        = "email"
	ActivityMeeting      = "meeting"
	ActivityDemo         = "demo"
	ActivityProposal     = "proposal"
	ActivityFollowUp     = "follow_up"
	ActivityResearch     = "research"
	ActivityNote         = "note"
	ActivityStatusChange = "status_change"
)

// Activity outcomes.
const (
	OutcomeSuccessful        = "successful"
	OutcomeNoResponse        = "no_response"
	OutcomeInterested        = "interested"
	OutcomeNotInterested     = "not_interested"
	OutcomeFollowUpNeeded    = "follow_up_needed"
	OutcomeMeetingScheduled  = "meeting_scheduled"
	OutcomeProposalRequested = "proposal_requested"
)

type Activity struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	ActivityType string
	Title        string
	Description  string
	Outcome      string
	PerformedBy  *uuid.UUID
	CreatedAt    time.Time
}

type CreateActivityParams struct {
	LeadID       uuid.UUID
	ActivityType string
	Title        string
	Description  string
	Outcome      string
	PerformedBy  *uuid.UUID
}

// CreateActivity appends an activity and advances the lead's contact dates.
func (r *Repository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	var a Activity
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_activities (lead_id, activity_type, title, description, outcome, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, activity_type, title, description, outcome, performed_by, created_at
	`,
		params.LeadID, params.ActivityType, params.Title, params.Description, params.Outcome, params.PerformedBy,
	).Scan(&a.ID, &a.LeadID, &a.ActivityType, &a.Title, &a.Description, &a.Outcome, &a.PerformedBy, &a.CreatedAt)
	if err != nil {
		return Activity{}, err
	}

	if err := r.touchContactDates(ctx, params.LeadID, a.CreatedAt); err != nil {
		return Activity{}, err
	}

	return a, nil
}

func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID, limit int) ([]Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, activity_type, title, description, outcome, performed_by, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

// ListActivitiesSince returns a lead's activities created at or after the cutoff,
// newest first. The scoring engine reads these for behavioral and engagement scores.
func (r *Repository) ListActivitiesSince(ctx context.Context, leadID uuid.UUID, since time.Time) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, activity_type, title, description, outcome, performed_by, created_at
		FROM lead_activities
		WHERE lead_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`, leadID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func collectActivities(rows pgx.Rows) ([]Activity, error) {
	items := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.LeadID, &a.ActivityType, &a.Title, &a.Description,
			&a.Outcome, &a.PerformedBy, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
