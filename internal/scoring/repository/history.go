package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry records one scoring pass for a lead.
type HistoryEntry struct {
	ID                 uuid.UUID
	LeadID             uuid.UUID
	TotalScore         int
	DemographicScore   int
	FirmographicScore  int
	BehavioralScore    int
	EngagementScore    int
	SourceScore        int
	TemporalScore      int
	ProfileID          *uuid.UUID
	CalculationDetails map[string]float64
	ScoreChange        int
	ChangeReason       string
	TriggeredBy        string
	CreatedAt          time.Time
}

type CreateHistoryParams struct {
	LeadID             uuid.UUID
	TotalScore         int
	DemographicScore   int
	FirmographicScore  int
	BehavioralScore    int
	EngagementScore    int
	SourceScore        int
	TemporalScore      int
	ProfileID          *uuid.UUID
	CalculationDetails map[string]float64
	ScoreChange        int
	ChangeReason       string
	TriggeredBy        string
}

func (r *Repository) CreateHistoryEntry(ctx context.Context, params CreateHistoryParams) error {
	details, err := json.Marshal(params.CalculationDetails)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO lead_score_history (
			lead_id, total_score, demographic_score, firmographic_score, behavioral_score,
			engagement_score, source_score, temporal_score, profile_id, calculation_details,
			score_change, change_reason, triggered_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		params.LeadID, params.TotalScore, params.DemographicScore, params.FirmographicScore,
		params.BehavioralScore, params.EngagementScore, params.SourceScore, params.TemporalScore,
		params.ProfileID, details, params.ScoreChange, params.ChangeReason, params.TriggeredBy,
	)
	return err
}

func (r *Repository) ListHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, total_score, demographic_score, firmographic_score, behavioral_score,
			engagement_score, source_score, temporal_score, profile_id, calculation_details,
			score_change, change_reason, triggered_by, created_at
		FROM lead_score_history
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			entry   HistoryEntry
			details []byte
		)
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.TotalScore, &entry.DemographicScore, &entry.FirmographicScore,
			&entry.BehavioralScore, &entry.EngagementScore, &entry.SourceScore, &entry.TemporalScore,
			&entry.ProfileID, &details, &entry.ScoreChange, &entry.ChangeReason, &entry.TriggeredBy, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.CalculationDetails); err != nil {
				return nil, err
			}
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}
