// Package service contains scoring configuration and orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"

	"leadgen_backend/internal/scoring/automation"
	"leadgen_backend/internal/scoring/engine"
	"leadgen_backend/internal/scoring/repository"
	"leadgen_backend/internal/scoring/rules"
	"leadgen_backend/internal/scoring/transport"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo   *repository.Repository
	engine *engine.Engine
	auto   *automation.Automation
	log    *logger.Logger
}

func New(repo *repository.Repository, eng *engine.Engine, auto *automation.Automation, log *logger.Logger) *Service {
	return &Service{repo: repo, engine: eng, auto: auto, log: log}
}

// ---------------------------------------------------------------------------
// Criteria

func (s *Service) CreateCriteria(ctx context.Context, req transport.CreateCriteriaRequest) (transport.CriteriaResponse, error) {
	if !rules.Category(req.Category).Valid() {
		return transport.CriteriaResponse{}, apperr.Validation("unknown criteria category")
	}

	c, err := s.repo.CreateCriteria(ctx, repository.CreateCriteriaParams{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Weight:      req.Weight,
		MaxScore:    req.MaxScore,
	})
	if err != nil {
		return transport.CriteriaResponse{}, err
	}
	return transport.ToCriteriaResponse(c), nil
}

func (s *Service) GetCriteria(ctx context.Context, id uuid.UUID) (transport.CriteriaResponse, error) {
	c, err := s.repo.GetCriteriaByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CriteriaResponse{}, apperr.NotFound("criteria not found")
		}
		return transport.CriteriaResponse{}, err
	}
	return transport.ToCriteriaResponse(c), nil
}

func (s *Service) ListCriteria(ctx context.Context) ([]transport.CriteriaResponse, error) {
	criteria, err := s.repo.ListCriteria(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CriteriaResponse, 0, len(criteria))
	for _, c := range criteria {
		out = append(out, transport.ToCriteriaResponse(c))
	}
	return out, nil
}

func (s *Service) UpdateCriteria(ctx context.Context, id uuid.UUID, req transport.UpdateCriteriaRequest) (transport.CriteriaResponse, error) {
	c, err := s.repo.UpdateCriteria(ctx, id, repository.UpdateCriteriaParams{
		Name:        req.Name,
		Description: req.Description,
		Weight:      req.Weight,
		MaxScore:    req.MaxScore,
		IsActive:    req.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CriteriaResponse{}, apperr.NotFound("criteria not found")
		}
		return transport.CriteriaResponse{}, err
	}
	return transport.ToCriteriaResponse(c), nil
}

// ---------------------------------------------------------------------------
// Rules

func (s *Service) CreateRule(ctx context.Context, criteriaID uuid.UUID, req transport.CreateRuleRequest) (transport.RuleResponse, error) {
	if err := rules.Resolve(req.FieldName); err != nil {
		return transport.RuleResponse{}, apperr.Validation(fmt.Sprintf("unknown field %q", req.FieldName))
	}
	if !rules.Operator(req.Operator).Valid() {
		return transport.RuleResponse{}, apperr.Validation(fmt.Sprintf("unknown operator %q", req.Operator))
	}
	if _, err := s.repo.GetCriteriaByID(ctx, criteriaID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.RuleResponse{}, apperr.NotFound("criteria not found")
		}
		return transport.RuleResponse{}, err
	}

	r, err := s.repo.CreateRule(ctx, repository.CreateRuleParams{
		CriteriaID:  criteriaID,
		FieldName:   req.FieldName,
		Operator:    req.Operator,
		Value:       req.Value,
		Points:      req.Points,
		Description: req.Description,
		EvalOrder:   req.EvalOrder,
	})
	if err != nil {
		return transport.RuleResponse{}, err
	}
	return transport.ToRuleResponse(r), nil
}

func (s *Service) ListRules(ctx context.Context, criteriaID uuid.UUID) ([]transport.RuleResponse, error) {
	ruleRows, err := s.repo.ListRulesByCriteria(ctx, criteriaID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.RuleResponse, 0, len(ruleRows))
	for _, r := range ruleRows {
		out = append(out, transport.ToRuleResponse(r))
	}
	return out, nil
}

func (s *Service) SetRuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetRuleActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("rule not found")
		}
		return err
	}
	return nil
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("rule not found")
		}
		return err
	}
	return nil
}

// FieldCatalog lists the fields, operators and categories rule authors can use.
func (s *Service) FieldCatalog() transport.FieldCatalogResponse {
	operators := make([]string, 0, len(rules.Operators))
	for _, op := range rules.Operators {
		operators = append(operators, string(op))
	}
	categories := make([]string, 0, len(rules.Categories))
	for _, c := range rules.Categories {
		categories = append(categories, string(c))
	}
	return transport.FieldCatalogResponse{
		Fields:     rules.FieldNames(),
		Operators:  operators,
		Categories: categories,
	}
}

// ---------------------------------------------------------------------------
// Profiles

func (s *Service) CreateProfile(ctx context.Context, req transport.CreateProfileRequest) (transport.ProfileResponse, error) {
	p, err := s.repo.CreateProfile(ctx, repository.CreateProfileParams{
		Name:                req.Name,
		Description:         req.Description,
		AutoAssignThreshold: req.AutoAssignThreshold,
		HotLeadThreshold:    req.HotLeadThreshold,
	})
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return transport.ToProfileResponse(p), nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (transport.ProfileResponse, error) {
	p, err := s.repo.GetProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProfileResponse{}, apperr.NotFound("profile not found")
		}
		return transport.ProfileResponse{}, err
	}
	return transport.ToProfileResponse(p), nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]transport.ProfileResponse, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, transport.ToProfileResponse(p))
	}
	return out, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.UpdateProfileRequest) (transport.ProfileResponse, error) {
	p, err := s.repo.UpdateProfile(ctx, id, repository.UpdateProfileParams{
		Name:                req.Name,
		Description:         req.Description,
		IsActive:            req.IsActive,
		AutoAssignThreshold: req.AutoAssignThreshold,
		HotLeadThreshold:    req.HotLeadThreshold,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProfileResponse{}, apperr.NotFound("profile not found")
		}
		return transport.ProfileResponse{}, err
	}
	return transport.ToProfileResponse(p), nil
}

// PromoteDefault makes the profile the single default used by scoring passes.
func (s *Service) PromoteDefault(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.PromoteDefaultProfile(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("profile not found")
		}
		return err
	}
	return nil
}

func (s *Service) AttachCriteria(ctx context.Context, profileID uuid.UUID, req transport.AttachCriteriaRequest) error {
	criteriaID, err := uuid.Parse(req.CriteriaID)
	if err != nil {
		return apperr.Validation("invalid criteria id")
	}
	if _, err := s.repo.GetProfileByID(ctx, profileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("profile not found")
		}
		return err
	}
	if _, err := s.repo.GetCriteriaByID(ctx, criteriaID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("criteria not found")
		}
		return err
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	return s.repo.AttachCriteria(ctx, profileID, criteriaID, req.WeightMultiplier, enabled)
}

// ---------------------------------------------------------------------------
// Activity rules

func (s *Service) CreateActivityRule(ctx context.Context, req transport.CreateActivityRuleRequest) (transport.ActivityRuleResponse, error) {
	r, err := s.repo.CreateActivityRule(ctx, repository.CreateActivityRuleParams{
		Name:              req.Name,
		ActivityType:      req.ActivityType,
		Outcome:           req.Outcome,
		PointsPerActivity: req.PointsPerActivity,
		MaxPointsPerDay:   req.MaxPointsPerDay,
		DecayDays:         req.DecayDays,
		DecayRate:         req.DecayRate,
	})
	if err != nil {
		return transport.ActivityRuleResponse{}, err
	}
	return transport.ToActivityRuleResponse(r), nil
}

func (s *Service) ListActivityRules(ctx context.Context) ([]transport.ActivityRuleResponse, error) {
	ruleRows, err := s.repo.ListActiveActivityRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ActivityRuleResponse, 0, len(ruleRows))
	for _, r := range ruleRows {
		out = append(out, transport.ToActivityRuleResponse(r))
	}
	return out, nil
}

func (s *Service) SetActivityRuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActivityRuleActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("activity rule not found")
		}
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scoring

func (s *Service) Recalculate(ctx context.Context, leadID uuid.UUID) (transport.ScoreResponse, error) {
	breakdown, err := s.engine.Calculate(ctx, leadID, "manual")
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	return transport.ScoreResponse{LeadID: leadID, Breakdown: breakdown}, nil
}

func (s *Service) Explain(ctx context.Context, leadID uuid.UUID) (engine.Explanation, error) {
	return s.engine.Explain(ctx, leadID)
}

func (s *Service) History(ctx context.Context, leadID uuid.UUID, limit int) ([]transport.HistoryResponse, error) {
	entries, err := s.repo.ListHistory(ctx, leadID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]transport.HistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, transport.ToHistoryResponse(e))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Alerts

func (s *Service) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]transport.AlertResponse, error) {
	alerts, err := s.repo.ListAlerts(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]transport.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, transport.ToAlertResponse(a))
	}
	return out, nil
}

func (s *Service) MarkAlertRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkAlertRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("alert not found")
		}
		return err
	}
	return nil
}

func (s *Service) AcknowledgeAlert(ctx context.Context, id, userID uuid.UUID) (transport.AlertResponse, error) {
	alert, err := s.repo.AcknowledgeAlert(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AlertResponse{}, apperr.NotFound("alert not found")
		}
		return transport.AlertResponse{}, err
	}
	return transport.ToAlertResponse(alert), nil
}

// ---------------------------------------------------------------------------
// Automation

func (s *Service) RunSweep(ctx context.Context) (automation.SweepResult, error) {
	return s.auto.Sweep(ctx)
}

func (s *Service) AutoAssign(ctx context.Context) (int, error) {
	return s.auto.AutoAssignLeads(ctx, s.auto.AssignThreshold(ctx))
}

func (s *Service) UpdatePriorities(ctx context.Context) (int, error) {
	return s.auto.UpdateLeadPriorities(ctx)
}

func (s *Service) MarkQualified(ctx context.Context) (int, error) {
	return s.auto.MarkQualifiedLeads(ctx, s.auto.QualifyThreshold())
}

func (s *Service) ScheduleFollowUps(ctx context.Context) (int, error) {
	return s.auto.ScheduleFollowUps(ctx)
}

func (s *Service) BulkRecalculate(ctx context.Context) (int, error) {
	return s.auto.BulkRecalculate(ctx)
}
