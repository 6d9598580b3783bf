// Package service contains lead management business logic.
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"leadgen_backend/internal/events"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

func New(repo *repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		return transport.LeadResponse{}, apperr.Validation("invalid source id")
	}
	if _, err := s.repo.GetSourceByID(ctx, sourceID); err != nil {
		if errors.Is(err, repository.ErrSourceNotFound) {
			return transport.LeadResponse{}, apperr.Validation("unknown lead source")
		}
		return transport.LeadResponse{}, err
	}

	params := repository.CreateLeadParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		CompanyName:     req.CompanyName,
		JobTitle:        req.JobTitle,
		Address:         req.Address,
		City:            req.City,
		Territory:       req.Territory,
		Industry:        req.Industry,
		CompanySize:     req.CompanySize,
		AnnualRevenue:   req.AnnualRevenue,
		BudgetRange:     req.BudgetRange,
		Timeline:        req.Timeline,
		InitialInterest: req.InitialInterest,
		Requirements:    req.Requirements,
		Notes:           req.Notes,
		SourceID:        sourceID,
	}

	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			return transport.LeadResponse{}, apperr.Validation("invalid assignee id")
		}
		params.AssignedTo = &assignee
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		SourceID:   lead.SourceID,
		AssignedTo: lead.AssignedTo,
	})

	return transport.ToLeadResponse(lead), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]transport.LeadResponse, error) {
	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toLeadResponses(leads), nil
}

// ListHot returns active leads at or above minScore, highest score first.
func (s *Service) ListHot(ctx context.Context, minScore int) ([]transport.LeadResponse, error) {
	leads, err := s.repo.ListHot(ctx, minScore)
	if err != nil {
		return nil, err
	}
	return toLeadResponses(leads), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		CompanyName:     req.CompanyName,
		JobTitle:        req.JobTitle,
		Address:         req.Address,
		City:            req.City,
		Territory:       req.Territory,
		Industry:        req.Industry,
		CompanySize:     req.CompanySize,
		AnnualRevenue:   req.AnnualRevenue,
		BudgetRange:     req.BudgetRange,
		Timeline:        req.Timeline,
		InitialInterest: req.InitialInterest,
		Requirements:    req.Requirements,
		Notes:           req.Notes,
		NextFollowUpAt:  req.NextFollowUpAt,
	}

	if req.SourceID != nil {
		sourceID, err := uuid.Parse(*req.SourceID)
		if err != nil {
			return transport.LeadResponse{}, apperr.Validation("invalid source id")
		}
		params.SourceID = &sourceID
	}

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}
	return nil
}

func (s *Service) Assign(ctx context.Context, id uuid.UUID, assignee *uuid.UUID) error {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}

	if err := s.repo.Assign(ctx, id, assignee); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        id,
		PreviousOwner: lead.AssignedTo,
		NewOwner:      assignee,
	})
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}
	return nil
}

func (s *Service) LogActivity(ctx context.Context, leadID uuid.UUID, req transport.LogActivityRequest, performedBy *uuid.UUID) (transport.ActivityResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ActivityResponse{}, apperr.NotFound("lead not found")
		}
		return transport.ActivityResponse{}, err
	}

	activity, err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:       leadID,
		ActivityType: req.ActivityType,
		Title:        req.Title,
		Description:  req.Description,
		Outcome:      req.Outcome,
		PerformedBy:  performedBy,
	})
	if err != nil {
		return transport.ActivityResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadActivityLogged{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       leadID,
		ActivityID:   activity.ID,
		ActivityType: activity.ActivityType,
		Outcome:      activity.Outcome,
		PerformedBy:  performedBy,
	})

	return transport.ToActivityResponse(activity), nil
}

func (s *Service) ListActivities(ctx context.Context, leadID uuid.UUID, limit int) ([]transport.ActivityResponse, error) {
	items, err := s.repo.ListActivities(ctx, leadID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, transport.ToActivityResponse(a))
	}
	return out, nil
}

func (s *Service) CreateSource(ctx context.Context, req transport.CreateSourceRequest) (transport.SourceResponse, error) {
	source, err := s.repo.CreateSource(ctx, repository.CreateSourceParams{
		Name:        req.Name,
		SourceType:  req.SourceType,
		Description: req.Description,
		CostPerLead: req.CostPerLead,
	})
	if err != nil {
		return transport.SourceResponse{}, err
	}
	return transport.ToSourceResponse(source), nil
}

func (s *Service) ListSources(ctx context.Context, activeOnly bool) ([]transport.SourceResponse, error) {
	sources, err := s.repo.ListSources(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]transport.SourceResponse, 0, len(sources))
	for _, src := range sources {
		out = append(out, transport.ToSourceResponse(src))
	}
	return out, nil
}

func (s *Service) SetSourceActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetSourceActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrSourceNotFound) {
			return apperr.NotFound("lead source not found")
		}
		return err
	}
	return nil
}

var exportHeader = []string{
	"id", "first_name", "last_name", "email", "phone", "company_name", "job_title",
	"city", "industry", "company_size", "annual_revenue", "budget_range", "timeline",
	"status", "priority", "score", "is_qualified", "assigned_to", "created_at",
}

// ExportCSV streams the filtered leads as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filter repository.ListFilter) error {
	filter.Limit = 500
	filter.Offset = 0

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for {
		leads, err := s.repo.List(ctx, filter)
		if err != nil {
			return err
		}
		for _, l := range leads {
			assigned := ""
			if l.AssignedTo != nil {
				assigned = l.AssignedTo.String()
			}
			record := []string{
				l.ID.String(), l.FirstName, l.LastName, l.Email, l.Phone, l.CompanyName, l.JobTitle,
				l.City, l.Industry, l.CompanySize, l.AnnualRevenue, l.BudgetRange, l.Timeline,
				l.Status, l.Priority, strconv.Itoa(l.Score), fmt.Sprintf("%t", l.IsQualified),
				assigned, l.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		if len(leads) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	cw.Flush()
	return cw.Error()
}

func toLeadResponses(leads []repository.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, transport.ToLeadResponse(l))
	}
	return out
}
