// Package leads provides the lead management bounded context module.
package leads

import (
	"leadgen_backend/internal/events"
	apphttp "leadgen_backend/internal/http"
	"leadgen_backend/internal/leads/handler"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger, validate *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, validate)

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes lead data access for the scoring module.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.GET("", m.handler.List)
	leads.POST("", m.handler.Create)
	leads.GET("/hot", m.handler.ListHot)
	leads.GET("/export", m.handler.ExportCSV)
	leads.GET("/:id", m.handler.Get)
	leads.PATCH("/:id", m.handler.Update)
	leads.DELETE("/:id", m.handler.Delete)
	leads.PUT("/:id/assign", m.handler.Assign)
	leads.PUT("/:id/status", m.handler.UpdateStatus)
	leads.GET("/:id/activities", m.handler.ListActivities)
	leads.POST("/:id/activities", m.handler.LogActivity)

	sources := ctx.Protected.Group("/lead-sources")
	sources.GET("", m.handler.ListSources)

	adminSources := ctx.Admin.Group("/lead-sources")
	adminSources.POST("", m.handler.CreateSource)
	adminSources.PUT("/:id/active", m.handler.SetSourceActive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
