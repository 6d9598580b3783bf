package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Alert types.
const (
	AlertHotLead          = "hot_lead"
	AlertScoreIncrease    = "score_increase"
	AlertScoreDecrease    = "score_decrease"
	AlertThresholdReached = "threshold_reached"
	AlertAssignmentNeeded = "assignment_needed"
)

// Alert priorities.
const (
	AlertPriorityLow    = "low"
	AlertPriorityMedium = "medium"
	AlertPriorityHigh   = "high"
	AlertPriorityUrgent = "urgent"
)

type Alert struct {
	ID                uuid.UUID
	LeadID            uuid.UUID
	AlertType         string
	Priority          string
	Title             string
	Message           string
	ThresholdValue    *int
	CurrentScore      int
	AssignedTo        *uuid.UUID
	NotifySupervisors bool
	IsRead            bool
	IsAcknowledged    bool
	AcknowledgedBy    *uuid.UUID
	AcknowledgedAt    *time.Time
	CreatedAt         time.Time
}

type CreateAlertParams struct {
	LeadID            uuid.UUID
	AlertType         string
	Priority          string
	Title             string
	Message           string
	ThresholdValue    *int
	CurrentScore      int
	AssignedTo        *uuid.UUID
	NotifySupervisors bool
}

func (r *Repository) CreateAlert(ctx context.Context, params CreateAlertParams) (Alert, error) {
	var a Alert
	err := r.pool.QueryRow(ctx, `
		INSERT INTO scoring_alerts (
			lead_id, alert_type, priority, title, message,
			threshold_value, current_score, assigned_to, notify_supervisors
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, lead_id, alert_type, priority, title, message, threshold_value, current_score,
			assigned_to, notify_supervisors, is_read, is_acknowledged, acknowledged_by, acknowledged_at, created_at
	`,
		params.LeadID, params.AlertType, params.Priority, params.Title, params.Message,
		params.ThresholdValue, params.CurrentScore, params.AssignedTo, params.NotifySupervisors,
	).Scan(
		&a.ID, &a.LeadID, &a.AlertType, &a.Priority, &a.Title, &a.Message, &a.ThresholdValue, &a.CurrentScore,
		&a.AssignedTo, &a.NotifySupervisors, &a.IsRead, &a.IsAcknowledged, &a.AcknowledgedBy, &a.AcknowledgedAt, &a.CreatedAt,
	)
	return a, err
}

type AlertFilter struct {
	UnreadOnly bool
	LeadID     *uuid.UUID
	AlertType  string
	AssignedTo *uuid.UUID
	Limit      int
}

func (r *Repository) ListAlerts(ctx context.Context, filter AlertFilter) ([]Alert, error) {
	query := `
		SELECT id, lead_id, alert_type, priority, title, message, threshold_value, current_score,
			assigned_to, notify_supervisors, is_read, is_acknowledged, acknowledged_by, acknowledged_at, created_at
		FROM scoring_alerts
		WHERE 1=1`
	args := make([]interface{}, 0, 4)

	if filter.UnreadOnly {
		query += ` AND is_read = false`
	}
	if filter.LeadID != nil {
		args = append(args, *filter.LeadID)
		query += ` AND lead_id = $` + strconv.Itoa(len(args))
	}
	if filter.AlertType != "" {
		args = append(args, filter.AlertType)
		query += ` AND alert_type = $` + strconv.Itoa(len(args))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += ` AND assigned_to = $` + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Alert, 0)
	for rows.Next() {
		var a Alert
		if err := rows.Scan(
			&a.ID, &a.LeadID, &a.AlertType, &a.Priority, &a.Title, &a.Message, &a.ThresholdValue, &a.CurrentScore,
			&a.AssignedTo, &a.NotifySupervisors, &a.IsRead, &a.IsAcknowledged, &a.AcknowledgedBy, &a.AcknowledgedAt, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *Repository) MarkAlertRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE scoring_alerts SET is_read = true WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AcknowledgeAlert marks an alert acknowledged by the given user.
func (r *Repository) AcknowledgeAlert(ctx context.Context, id, userID uuid.UUID) (Alert, error) {
	var a Alert
	err := r.pool.QueryRow(ctx, `
		UPDATE scoring_alerts
		SET is_acknowledged = true, is_read = true, acknowledged_by = $1, acknowledged_at = now()
		WHERE id = $2
		RETURNING id, lead_id, alert_type, priority, title, message, threshold_value, current_score,
			assigned_to, notify_supervisors, is_read, is_acknowledged, acknowledged_by, acknowledged_at, created_at
	`, userID, id).Scan(
		&a.ID, &a.LeadID, &a.AlertType, &a.Priority, &a.Title, &a.Message, &a.ThresholdValue, &a.CurrentScore,
		&a.AssignedTo, &a.NotifySupervisors, &a.IsRead, &a.IsAcknowledged, &a.AcknowledgedBy, &a.AcknowledgedAt, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Alert{}, ErrNotFound
	}
	return a, err
}
