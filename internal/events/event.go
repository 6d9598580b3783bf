// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadgen_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is captured.
type LeadCreated struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	SourceID   uuid.UUID  `json:"sourceId"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadActivityLogged is published when an activity is recorded against a lead.
type LeadActivityLogged struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	ActivityID   uuid.UUID  `json:"activityId"`
	ActivityType string     `json:"activityType"`
	Outcome      string     `json:"outcome,omitempty"`
	PerformedBy  *uuid.UUID `json:"performedBy,omitempty"`
}

func (e LeadActivityLogged) EventName() string { return "leads.activity.logged" }

// LeadAssigned is published when a lead is assigned to a salesperson.
type LeadAssigned struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	PreviousOwner *uuid.UUID `json:"previousOwner,omitempty"`
	NewOwner      *uuid.UUID `json:"newOwner,omitempty"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// =============================================================================
// Scoring Domain Events
// =============================================================================

// LeadScored is published after every completed scoring pass.
type LeadScored struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	OldScore int       `json:"oldScore"`
	NewScore int       `json:"newScore"`
	Profile  string    `json:"profile"`
}

func (e LeadScored) EventName() string { return "scoring.lead.scored" }

// HotLeadDetected is published when a lead crosses the hot-lead threshold.
type HotLeadDetected struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	Score      int        `json:"score"`
	Threshold  int        `json:"threshold"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
}

func (e HotLeadDetected) EventName() string { return "scoring.lead.hot" }
