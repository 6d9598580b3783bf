// Package transport defines the scoring module's request and response types.
package transport

import (
	"time"

	"leadgen_backend/internal/scoring/engine"
	"leadgen_backend/internal/scoring/repository"

	"github.com/google/uuid"
)

type CreateCriteriaRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Category    string  `json:"category" validate:"required,oneof=demographic firmographic behavioral engagement source temporal"`
	Description string  `json:"description" validate:"max=500"`
	Weight      float64 `json:"weight" validate:"required,gt=0,lte=10"`
	MaxScore    int     `json:"maxScore" validate:"required,gt=0,lte=100"`
}

type UpdateCriteriaRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Weight      *float64 `json:"weight" validate:"omitempty,gt=0,lte=10"`
	MaxScore    *int     `json:"maxScore" validate:"omitempty,gt=0,lte=100"`
	IsActive    *bool    `json:"isActive"`
}

type CreateRuleRequest struct {
	FieldName   string `json:"fieldName" validate:"required"`
	Operator    string `json:"operator" validate:"required"`
	Value       string `json:"value" validate:"required"`
	Points      int    `json:"points" validate:"gte=-100,lte=100"`
	Description string `json:"description" validate:"max=500"`
	EvalOrder   int    `json:"evalOrder" validate:"gte=0"`
}

type CreateProfileRequest struct {
	Name                string `json:"name" validate:"required,min=2,max=100"`
	Description         string `json:"description" validate:"max=500"`
	AutoAssignThreshold int    `json:"autoAssignThreshold" validate:"gte=0,lte=100"`
	HotLeadThreshold    int    `json:"hotLeadThreshold" validate:"gte=0,lte=100"`
}

type UpdateProfileRequest struct {
	Name                *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description         *string `json:"description" validate:"omitempty,max=500"`
	IsActive            *bool   `json:"isActive"`
	AutoAssignThreshold *int    `json:"autoAssignThreshold" validate:"omitempty,gte=0,lte=100"`
	HotLeadThreshold    *int    `json:"hotLeadThreshold" validate:"omitempty,gte=0,lte=100"`
}

type AttachCriteriaRequest struct {
	CriteriaID       string  `json:"criteriaId" validate:"required,uuid"`
	WeightMultiplier float64 `json:"weightMultiplier" validate:"required,gt=0,lte=10"`
	IsEnabled        *bool   `json:"isEnabled"`
}

type CreateActivityRuleRequest struct {
	Name              string  `json:"name" validate:"required,min=2,max=100"`
	ActivityType      string  `json:"activityType" validate:"omitempty,oneof=call email meeting demo proposal follow_up research note status_change"`
	Outcome           string  `json:"outcome" validate:"omitempty,oneof=successful no_response interested not_interested follow_up_needed meeting_scheduled proposal_requested"`
	PointsPerActivity int     `json:"pointsPerActivity" validate:"gte=-100,lte=100"`
	MaxPointsPerDay   int     `json:"maxPointsPerDay" validate:"required,gt=0,lte=300"`
	DecayDays         int     `json:"decayDays" validate:"gte=0"`
	DecayRate         float64 `json:"decayRate" validate:"gte=0,lte=1"`
}

type CriteriaResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Weight      float64   `json:"weight"`
	MaxScore    int       `json:"maxScore"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToCriteriaResponse(c repository.Criteria) CriteriaResponse {
	return CriteriaResponse{
		ID:          c.ID,
		Name:        c.Name,
		Category:    c.Category,
		Description: c.Description,
		Weight:      c.Weight,
		MaxScore:    c.MaxScore,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type RuleResponse struct {
	ID          uuid.UUID `json:"id"`
	CriteriaID  uuid.UUID `json:"criteriaId"`
	FieldName   string    `json:"fieldName"`
	Operator    string    `json:"operator"`
	Value       string    `json:"value"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	EvalOrder   int       `json:"evalOrder"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ToRuleResponse(r repository.Rule) RuleResponse {
	return RuleResponse{
		ID:          r.ID,
		CriteriaID:  r.CriteriaID,
		FieldName:   r.FieldName,
		Operator:    r.Operator,
		Value:       r.Value,
		Points:      r.Points,
		Description: r.Description,
		IsActive:    r.IsActive,
		EvalOrder:   r.EvalOrder,
		CreatedAt:   r.CreatedAt,
	}
}

type ProfileResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	IsDefault           bool      `json:"isDefault"`
	IsActive            bool      `json:"isActive"`
	AutoAssignThreshold int       `json:"autoAssignThreshold"`
	HotLeadThreshold    int       `json:"hotLeadThreshold"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func ToProfileResponse(p repository.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		IsDefault:           p.IsDefault,
		IsActive:            p.IsActive,
		AutoAssignThreshold: p.AutoAssignThreshold,
		HotLeadThreshold:    p.HotLeadThreshold,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

type ActivityRuleResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	ActivityType      string    `json:"activityType,omitempty"`
	Outcome           string    `json:"outcome,omitempty"`
	PointsPerActivity int       `json:"pointsPerActivity"`
	MaxPointsPerDay   int       `json:"maxPointsPerDay"`
	DecayDays         int       `json:"decayDays"`
	DecayRate         float64   `json:"decayRate"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
}

func ToActivityRuleResponse(r repository.ActivityRule) ActivityRuleResponse {
	return ActivityRuleResponse{
		ID:                r.ID,
		Name:              r.Name,
		ActivityType:      r.ActivityType,
		Outcome:           r.Outcome,
		PointsPerActivity: r.PointsPerActivity,
		MaxPointsPerDay:   r.MaxPointsPerDay,
		DecayDays:         r.DecayDays,
		DecayRate:         r.DecayRate,
		IsActive:          r.IsActive,
		CreatedAt:         r.CreatedAt,
	}
}

// ScoreResponse reports one completed scoring pass.
type ScoreResponse struct {
	LeadID    uuid.UUID        `json:"leadId"`
	Breakdown engine.Breakdown `json:"breakdown"`
}

type HistoryResponse struct {
	ID                 uuid.UUID          `json:"id"`
	LeadID             uuid.UUID          `json:"leadId"`
	TotalScore         int                `json:"totalScore"`
	DemographicScore   int                `json:"demographicScore"`
	FirmographicScore  int                `json:"firmographicScore"`
	BehavioralScore    int                `json:"behavioralScore"`
	EngagementScore    int                `json:"engagementScore"`
	SourceScore        int                `json:"sourceScore"`
	TemporalScore      int                `json:"temporalScore"`
	ProfileID          *uuid.UUID         `json:"profileId,omitempty"`
	CalculationDetails map[string]float64 `json:"calculationDetails"`
	ScoreChange        int                `json:"scoreChange"`
	ChangeReason       string             `json:"changeReason"`
	TriggeredBy        string             `json:"triggeredBy"`
	CreatedAt          time.Time          `json:"createdAt"`
}

func ToHistoryResponse(e repository.HistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:                 e.ID,
		LeadID:             e.LeadID,
		TotalScore:         e.TotalScore,
		DemographicScore:   e.DemographicScore,
		FirmographicScore:  e.FirmographicScore,
		BehavioralScore:    e.BehavioralScore,
		EngagementScore:    e.EngagementScore,
		SourceScore:        e.SourceScore,
		TemporalScore:      e.TemporalScore,
		ProfileID:          e.ProfileID,
		CalculationDetails: e.CalculationDetails,
		ScoreChange:        e.ScoreChange,
		ChangeReason:       e.ChangeReason,
		TriggeredBy:        e.TriggeredBy,
		CreatedAt:          e.CreatedAt,
	}
}

type AlertResponse struct {
	ID                uuid.UUID  `json:"id"`
	LeadID            uuid.UUID  `json:"leadId"`
	AlertType         string     `json:"alertType"`
	Priority          string     `json:"priority"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	ThresholdValue    *int       `json:"thresholdValue,omitempty"`
	CurrentScore      int        `json:"currentScore"`
	AssignedTo        *uuid.UUID `json:"assignedTo,omitempty"`
	NotifySupervisors bool       `json:"notifySupervisors"`
	IsRead            bool       `json:"isRead"`
	IsAcknowledged    bool       `json:"isAcknowledged"`
	AcknowledgedBy    *uuid.UUID `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt    *time.Time `json:"acknowledgedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func ToAlertResponse(a repository.Alert) AlertResponse {
	return AlertResponse{
		ID:                a.ID,
		LeadID:            a.LeadID,
		AlertType:         a.AlertType,
		Priority:          a.Priority,
		Title:             a.Title,
		Message:           a.Message,
		ThresholdValue:    a.ThresholdValue,
		CurrentScore:      a.CurrentScore,
		AssignedTo:        a.AssignedTo,
		NotifySupervisors: a.NotifySupervisors,
		IsRead:            a.IsRead,
		IsAcknowledged:    a.IsAcknowledged,
		AcknowledgedBy:    a.AcknowledgedBy,
		AcknowledgedAt:    a.AcknowledgedAt,
		CreatedAt:         a.CreatedAt,
	}
}

// FieldCatalogResponse lists what rule authors can reference.
type FieldCatalogResponse struct {
	Fields     []string `json:"fields"`
	Operators  []string `json:"operators"`
	Categories []string `json:"categories"`
}
