// Package scoring provides the lead scoring bounded context module:
// configurable criteria and rules, scoring profiles, activity-based
// scoring, alerts and batch automation.
package scoring

import (
	"context"

	authrepo "leadgen_backend/internal/auth/repository"
	"leadgen_backend/internal/events"
	apphttp "leadgen_backend/internal/http"
	leadsrepo "leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/scoring/automation"
	"leadgen_backend/internal/scoring/engine"
	"leadgen_backend/internal/scoring/handler"
	"leadgen_backend/internal/scoring/repository"
	"leadgen_backend/internal/scoring/service"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecalculateScheduler hands a scoring pass off to the background worker.
type RecalculateScheduler interface {
	ScheduleRecalculate(ctx context.Context, leadID uuid.UUID, triggeredBy string) error
}

// Module is the scoring bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	engine     *engine.Engine
	automation *automation.Automation
	repository *repository.Repository
	enqueue    RecalculateScheduler
}

// NewModule creates and initializes the scoring module. It reads lead data
// through the leads repository and assignment candidates through the auth
// repository.
func NewModule(pool *pgxpool.Pool, leads *leadsrepo.Repository, users *authrepo.Repository, cfg config.AutomationConfig, bus events.Bus, log *logger.Logger, validate *validator.Validator) *Module {
	repo := repository.New(pool)
	eng := engine.New(repo, leads, bus, log)
	auto := automation.New(leads, users, repo, eng, cfg, bus, log)
	svc := service.New(repo, eng, auto, log)
	h := handler.New(svc, validate)

	return &Module{
		handler:    h,
		service:    svc,
		engine:     eng,
		automation: auto,
		repository: repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scoring"
}

// Engine exposes the calculation engine for the scheduler worker.
func (m *Module) Engine() *engine.Engine {
	return m.engine
}

// Automation exposes the batch workflows for the scheduler worker.
func (m *Module) Automation() *automation.Automation {
	return m.automation
}

// Bootstrap seeds the built-in scoring configuration when none exists yet.
func (m *Module) Bootstrap(ctx context.Context) error {
	return m.engine.EnsureDefaultProfile(ctx)
}

// RegisterHandlers subscribes to lead events that trigger rescoring. With a
// nil scheduler the pass runs inline on the event goroutine.
func (m *Module) RegisterHandlers(bus events.Bus, enq RecalculateScheduler) {
	m.enqueue = enq
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadActivityLogged{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.recalculate(ctx, e.LeadID, "lead_created")
	case events.LeadActivityLogged:
		return m.recalculate(ctx, e.LeadID, "activity_logged")
	default:
		return nil
	}
}

func (m *Module) recalculate(ctx context.Context, leadID uuid.UUID, triggeredBy string) error {
	if m.enqueue != nil {
		return m.enqueue.ScheduleRecalculate(ctx, leadID, triggeredBy)
	}
	_, err := m.engine.Calculate(ctx, leadID, triggeredBy)
	return err
}

// RegisterRoutes mounts scoring routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	scoring := ctx.Protected.Group("/scoring")
	scoring.GET("/fields", m.handler.FieldCatalog)
	scoring.GET("/criteria", m.handler.ListCriteria)
	scoring.GET("/criteria/:id", m.handler.GetCriteria)
	scoring.GET("/criteria/:id/rules", m.handler.ListRules)
	scoring.GET("/profiles", m.handler.ListProfiles)
	scoring.GET("/profiles/:id", m.handler.GetProfile)
	scoring.GET("/activity-rules", m.handler.ListActivityRules)
	scoring.POST("/leads/:id/recalculate", m.handler.Recalculate)
	scoring.GET("/leads/:id/explanation", m.handler.Explain)
	scoring.GET("/leads/:id/history", m.handler.History)
	scoring.GET("/alerts", m.handler.ListAlerts)
	scoring.PUT("/alerts/:id/read", m.handler.MarkAlertRead)
	scoring.PUT("/alerts/:id/acknowledge", m.handler.AcknowledgeAlert)

	admin := ctx.Admin.Group("/scoring")
	admin.POST("/criteria", m.handler.CreateCriteria)
	admin.PATCH("/criteria/:id", m.handler.UpdateCriteria)
	admin.POST("/criteria/:id/rules", m.handler.CreateRule)
	admin.PUT("/rules/:id/active", m.handler.SetRuleActive)
	admin.DELETE("/rules/:id", m.handler.DeleteRule)
	admin.POST("/profiles", m.handler.CreateProfile)
	admin.PATCH("/profiles/:id", m.handler.UpdateProfile)
	admin.PUT("/profiles/:id/default", m.handler.PromoteDefaultProfile)
	admin.PUT("/profiles/:id/criteria", m.handler.AttachCriteria)
	admin.POST("/activity-rules", m.handler.CreateActivityRule)
	admin.PUT("/activity-rules/:id/active", m.handler.SetActivityRuleActive)
	admin.POST("/automation/sweep", m.handler.RunSweep)
	admin.POST("/automation/auto-assign", m.handler.AutoAssign)
	admin.POST("/automation/priorities", m.handler.UpdatePriorities)
	admin.POST("/automation/qualify", m.handler.MarkQualified)
	admin.POST("/automation/follow-ups", m.handler.ScheduleFollowUps)
	admin.POST("/automation/recalculate", m.handler.BulkRecalculate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
