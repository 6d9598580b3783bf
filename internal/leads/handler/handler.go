package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/internal/leads/transport"
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

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) List(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	leads, err := h.svc.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) ListHot(c *gin.Context) {
	minScore := 80
	if raw := c.Query("minScore"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 100 {
			httpkit.Error(c, http.StatusBadRequest, "invalid minScore", nil)
			return
		}
		minScore = v
	}

	leads, err := h.svc.ListHot(c.Request.Context(), minScore)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "lead deactivated"})
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var assignee *uuid.UUID
	if req.AssignedTo != nil {
		parsed, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		assignee = &parsed
	}

	if err := h.svc.Assign(c.Request.Context(), id, assignee); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "lead assigned"})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "status updated"})
}

func (h *Handler) LogActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var performedBy *uuid.UUID
	if userID := httpkit.MustGetUserID(c); userID != uuid.Nil {
		performedBy = &userID
	} else {
		return
	}

	activity, err := h.svc.LogActivity(c.Request.Context(), id, req, performedBy)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, activity)
}

func (h *Handler) ListActivities(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	items, err := h.svc.ListActivities(c.Request.Context(), id, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) CreateSource(c *gin.Context) {
	var req transport.CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	source, err := h.svc.CreateSource(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, source)
}

func (h *Handler) ListSources(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	sources, err := h.svc.ListSources(c.Request.Context(), activeOnly)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, sources)
}

func (h *Handler) SetSourceActive(c *gin.Context) {
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

	if err := h.svc.SetSourceActive(c.Request.Context(), id, *req.IsActive); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"id": id.String(), "isActive": *req.IsActive})
}

func (h *Handler) ExportCSV(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.svc.ExportCSV(c.Request.Context(), c.Writer, filter); err != nil {
		_ = c.Error(err)
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseListFilter(c *gin.Context) (repository.ListFilter, bool) {
	filter := repository.ListFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("q"),
	}

	if raw := c.Query("assignedTo"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid assignedTo", nil)
			return repository.ListFilter{}, false
		}
		filter.AssignedTo = &id
	}
	if raw := c.Query("sourceId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid sourceId", nil)
			return repository.ListFilter{}, false
		}
		filter.SourceID = &id
	}
	if raw := c.Query("minScore"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid minScore", nil)
			return repository.ListFilter{}, false
		}
		filter.MinScore = &v
	}
	if raw := c.Query("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("offset"); raw != "" {
		filter.Offset, _ = strconv.Atoi(raw)
	}

	return filter, true
}
