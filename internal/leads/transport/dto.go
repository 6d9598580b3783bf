package transport

import (
	"time"

	"leadgen_backend/internal/leads/repository"
)

type CreateLeadRequest struct {
	FirstName       string  `json:"firstName" validate:"required,max=100"`
	LastName        string  `json:"lastName" validate:"required,max=100"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           string  `json:"phone" validate:"max=20"`
	CompanyName     string  `json:"companyName" validate:"max=200"`
	JobTitle        string  `json:"jobTitle" validate:"max=100"`
	Address         string  `json:"address"`
	City            string  `json:"city" validate:"max=100"`
	Territory       string  `json:"territory" validate:"max=50"`
	Industry        string  `json:"industry" validate:"max=50"`
	CompanySize     string  `json:"companySize" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	AnnualRevenue   string  `json:"annualRevenue" validate:"omitempty,oneof=under_1m 1m_5m 5m_10m 10m_50m 50m_100m over_100m"`
	BudgetRange     string  `json:"budgetRange" validate:"omitempty,oneof=under_10k 10k_50k 50k_100k 100k_500k 500k_1m over_1m"`
	Timeline        string  `json:"timeline" validate:"omitempty,oneof=immediate short_term medium_term long_term no_timeline"`
	InitialInterest string  `json:"initialInterest"`
	Requirements    string  `json:"requirements"`
	Notes           string  `json:"notes"`
	SourceID        string  `json:"sourceId" validate:"required,uuid"`
	AssignedTo      *string `json:"assignedTo" validate:"omitempty,uuid"`
}

type UpdateLeadRequest struct {
	FirstName       *string    `json:"firstName" validate:"omitempty,max=100"`
	LastName        *string    `json:"lastName" validate:"omitempty,max=100"`
	Email           *string    `json:"email" validate:"omitempty,email"`
	Phone           *string    `json:"phone" validate:"omitempty,max=20"`
	CompanyName     *string    `json:"companyName" validate:"omitempty,max=200"`
	JobTitle        *string    `json:"jobTitle" validate:"omitempty,max=100"`
	Address         *string    `json:"address"`
	City            *string    `json:"city" validate:"omitempty,max=100"`
	Territory       *string    `json:"territory" validate:"omitempty,max=50"`
	Industry        *string    `json:"industry" validate:"omitempty,max=50"`
	CompanySize     *string    `json:"companySize" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	AnnualRevenue   *string    `json:"annualRevenue" validate:"omitempty,oneof=under_1m 1m_5m 5m_10m 10m_50m 50m_100m over_100m"`
	BudgetRange     *string    `json:"budgetRange" validate:"omitempty,oneof=under_10k 10k_50k 50k_100k 100k_500k 500k_1m over_1m"`
	Timeline        *string    `json:"timeline" validate:"omitempty,oneof=immediate short_term medium_term long_term no_timeline"`
	InitialInterest *string    `json:"initialInterest"`
	Requirements    *string    `json:"requirements"`
	Notes           *string    `json:"notes"`
	SourceID        *string    `json:"sourceId" validate:"omitempty,uuid"`
	NextFollowUpAt  *time.Time `json:"nextFollowUpAt"`
}

type AssignLeadRequest struct {
	AssignedTo *string `json:"assignedTo" validate:"omitempty,uuid"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified proposal_sent negotiating converted lost unqualified"`
}

type LogActivityRequest struct {
	ActivityType string `json:"activityType" validate:"required,oneof=call email meeting demo proposal follow_up research note status_change"`
	Title        string `json:"title" validate:"max=200"`
	Description  string `json:"description"`
	Outcome      string `json:"outcome" validate:"omitempty,oneof=successful no_response interested not_interested follow_up_needed meeting_scheduled proposal_requested"`
}

type CreateSourceRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	SourceType  string  `json:"sourceType" validate:"required,oneof=website social_media referral cold_calling email_marketing advertising trade_show webinar content_marketing seo paid_search partner other"`
	Description string  `json:"description"`
	CostPerLead float64 `json:"costPerLead" validate:"gte=0"`
}

type LeadResponse struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	CompanyName     string     `json:"companyName,omitempty"`
	JobTitle        string     `json:"jobTitle,omitempty"`
	Address         string     `json:"address,omitempty"`
	City            string     `json:"city,omitempty"`
	Territory       string     `json:"territory,omitempty"`
	Industry        string     `json:"industry,omitempty"`
	CompanySize     string     `json:"companySize,omitempty"`
	AnnualRevenue   string     `json:"annualRevenue,omitempty"`
	BudgetRange     string     `json:"budgetRange,omitempty"`
	Timeline        string     `json:"timeline,omitempty"`
	InitialInterest string     `json:"initialInterest,omitempty"`
	Requirements    string     `json:"requirements,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	SourceID        string     `json:"sourceId"`
	AssignedTo      *string    `json:"assignedTo,omitempty"`
	Score           int        `json:"score"`
	IsQualified     bool       `json:"isQualified"`
	IsActive        bool       `json:"isActive"`
	FirstContactAt  *time.Time `json:"firstContactAt,omitempty"`
	LastContactAt   *time.Time `json:"lastContactAt,omitempty"`
	NextFollowUpAt  *time.Time `json:"nextFollowUpAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type ActivityResponse struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"leadId"`
	ActivityType string    `json:"activityType"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	Outcome      string    `json:"outcome,omitempty"`
	PerformedBy  *string   `json:"performedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SourceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SourceType  string    `json:"sourceType"`
	Description string    `json:"description,omitempty"`
	CostPerLead float64   `json:"costPerLead"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func ToLeadResponse(l repository.Lead) LeadResponse {
	resp := LeadResponse{
		ID:              l.ID.String(),
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Email:           l.Email,
		Phone:           l.Phone,
		CompanyName:     l.CompanyName,
		JobTitle:        l.JobTitle,
		Address:         l.Address,
		City:            l.City,
		Territory:       l.Territory,
		Industry:        l.Industry,
		CompanySize:     l.CompanySize,
		AnnualRevenue:   l.AnnualRevenue,
		BudgetRange:     l.BudgetRange,
		Timeline:        l.Timeline,
		InitialInterest: l.InitialInterest,
		Requirements:    l.Requirements,
		Notes:           l.Notes,
		Status:          l.Status,
		Priority:        l.Priority,
		SourceID:        l.SourceID.String(),
		Score:           l.Score,
		IsQualified:     l.IsQualified,
		IsActive:        l.IsActive,
		FirstContactAt:  l.FirstContactAt,
		LastContactAt:   l.LastContactAt,
		NextFollowUpAt:  l.NextFollowUpAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
	if l.AssignedTo != nil {
		id := l.AssignedTo.String()
		resp.AssignedTo = &id
	}
	return resp
}

func ToActivityResponse(a repository.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:           a.ID.String(),
		LeadID:       a.LeadID.String(),
		ActivityType: a.ActivityType,
		Title:        a.Title,
		Description:  a.Description,
		Outcome:      a.Outcome,
		CreatedAt:    a.CreatedAt,
	}
	if a.PerformedBy != nil {
		id := a.PerformedBy.String()
		resp.PerformedBy = &id
	}
	return resp
}

func ToSourceResponse(s repository.Source) SourceResponse {
	return SourceResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		SourceType:  s.SourceType,
		Description: s.Description,
		CostPerLead: s.CostPerLead,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}
