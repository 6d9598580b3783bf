package handler

import (
	"net/http"
	"strconv"

	"leadgen_backend/internal/scoring/repository"
	"leadgen_backend/internal/scoring/service"
	"leadgen_backend/internal/scoring/transport"
	"leadgen_backend/platform/httpkit"
	"leadgen_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// ---------------------------------------------------------------------------
// Criteria

func (h *Handler) CreateCriteria(c *gin.Context) {
	var req transport.CreateCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	criteria, err := h.svc.CreateCriteria(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, criteria)
}

func (h *Handler) GetCriteria(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	criteria, err := h.svc.GetCriteria(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, criteria)
}

func (h *Handler) ListCriteria(c *gin.Context) {
	criteria, err := h.svc.ListCriteria(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, criteria)
}

func (h *Handler) UpdateCriteria(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	criteria, err := h.svc.UpdateCriteria(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, criteria)
}

// ---------------------------------------------------------------------------
// Rules

func (h *Handler) CreateRule(c *gin.Context) {
	criteriaID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rule, err := h.svc.CreateRule(c.Request.Context(), criteriaID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, rule)
}

func (h *Handler) ListRules(c *gin.Context) {
	criteriaID, ok := parseID(c)
	if !ok {
		return
	}

	rules, err := h.svc.ListRules(c.Request.Context(), criteriaID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rules)
}

func (h *Handler) SetRuleActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"isActive" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.SetRuleActive(c.Request.Context(), id, *req.IsActive)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "isActive": *req.IsActive})
}

func (h *Handler) DeleteRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteRule(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) FieldCatalog(c *gin.Context) {
	httpkit.OK(c, h.svc.FieldCatalog())
}

// ---------------------------------------------------------------------------
// Profiles

func (h *Handler) CreateProfile(c *gin.Context) {
	var req transport.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	profile, err := h.svc.CreateProfile(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, profile)
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.svc.ListProfiles(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profiles)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

func (h *Handler) PromoteDefaultProfile(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.PromoteDefault(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "isDefault": true})
}

func (h *Handler) AttachCriteria(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.AttachCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.AttachCriteria(c.Request.Context(), id, req)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Activity rules

func (h *Handler) CreateActivityRule(c *gin.Context) {
	var req transport.CreateActivityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rule, err := h.svc.CreateActivityRule(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, rule)
}

func (h *Handler) ListActivityRules(c *gin.Context) {
	rules, err := h.svc.ListActivityRules(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, rules)
}

func (h *Handler) SetActivityRuleActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"isActive" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.SetActivityRuleActive(c.Request.Context(), id, *req.IsActive)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "isActive": *req.IsActive})
}

// ---------------------------------------------------------------------------
// Scoring

func (h *Handler) Recalculate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	score, err := h.svc.Recalculate(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, score)
}

func (h *Handler) Explain(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	explanation, err := h.svc.Explain(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, explanation)
}

func (h *Handler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = n
	}

	history, err := h.svc.History(c.Request.Context(), id, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, history)
}

// ---------------------------------------------------------------------------
// Alerts

func (h *Handler) ListAlerts(c *gin.Context) {
	filter := repository.AlertFilter{
		UnreadOnly: c.Query("unread") == "true",
		AlertType:  c.Query("type"),
	}

	if raw := c.Query("leadId"); raw != "" {
		leadID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
			return
		}
		filter.LeadID = &leadID
	}
	if raw := c.Query("assignedTo"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
			return
		}
		filter.AssignedTo = &userID
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		filter.Limit = n
	}

	alerts, err := h.svc.ListAlerts(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, alerts)
}

func (h *Handler) MarkAlertRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.MarkAlertRead(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "isRead": true})
}

func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID := httpkit.MustGetUserID(c)
	if userID == uuid.Nil {
		return
	}

	alert, err := h.svc.AcknowledgeAlert(c.Request.Context(), id, userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, alert)
}

// ---------------------------------------------------------------------------
// Automation

func (h *Handler) RunSweep(c *gin.Context) {
	result, err := h.svc.RunSweep(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) AutoAssign(c *gin.Context) {
	assigned, err := h.svc.AutoAssign(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"assigned": assigned})
}

func (h *Handler) UpdatePriorities(c *gin.Context) {
	updated, err := h.svc.UpdatePriorities(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"updated": updated})
}

func (h *Handler) MarkQualified(c *gin.Context) {
	qualified, err := h.svc.MarkQualified(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"qualified": qualified})
}

func (h *Handler) ScheduleFollowUps(c *gin.Context) {
	scheduled, err := h.svc.ScheduleFollowUps(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"scheduled": scheduled})
}

func (h *Handler) BulkRecalculate(c *gin.Context) {
	processed, err := h.svc.BulkRecalculate(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"processed": processed})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
