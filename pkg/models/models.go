// Package models defines the domain models for the operations dashboard.
package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// AgentStatus represents the operational state of an agent
type AgentStatus string

const (
	AgentStatusIdle    AgentStatus = "idle"
	AgentStatusWorking AgentStatus = "working"
	AgentStatusPaused  AgentStatus = "paused"
	AgentStatusError   AgentStatus = "error"
)

// TaskStatus represents the lifecycle state of an execution task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// LeadStatus represents where a lead sits in the pipeline
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// RevenueType classifies a revenue event
type RevenueType string

const (
	RevenueTypeSubscription RevenueType = "subscription"
	RevenueTypeOneTime      RevenueType = "one_time"
	RevenueTypeExpansion    RevenueType = "expansion"
	RevenueTypeRefund       RevenueType = "refund"
)

// ApprovalStatus represents the decision state of an approval request
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// ActionStatus represents the decision/execution state of an autonomous action
type ActionStatus string

const (
	ActionStatusPending      ActionStatus = "pending"
	ActionStatusApproved     ActionStatus = "approved"
	ActionStatusRejected     ActionStatus = "rejected"
	ActionStatusAutoExecuted ActionStatus = "auto_executed"
)

// ContentStatus represents the publication state of scheduled content
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusScheduled ContentStatus = "scheduled"
	ContentStatusPublished ContentStatus = "published"
)

// LicenseTier is the white-label plan of a licensed sub-tenant
type LicenseTier string

const (
	LicenseTierStarter    LicenseTier = "starter"
	LicenseTierGrowth     LicenseTier = "growth"
	LicenseTierEnterprise LicenseTier = "enterprise"
)

// AgentState is the last-known state of one autonomous agent.
// Metrics is an opaque blob owned by the agent runtime; the dashboard
// never interprets it.
type AgentState struct {
	ID           string      `json:"id" db:"id"`
	OrgID        string      `json:"org_id" db:"org_id"`
	Name         string      `json:"name" db:"name"`
	AgentType    string      `json:"agent_type" db:"agent_type"`
	Status       AgentStatus `json:"status" db:"status"`
	CurrentTask  *string     `json:"current_task,omitempty" db:"current_task"`
	LastAction   *string     `json:"last_action,omitempty" db:"last_action"`
	Metrics      []byte      `json:"metrics,omitempty" db:"metrics"` // JSONB
	LastActiveAt *time.Time  `json:"last_active_at,omitempty" db:"last_active_at"`
	Version      int64       `json:"version" db:"version"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// ExecutionTask is one unit of work an agent ran or will run.
type ExecutionTask struct {
	ID           string     `json:"id" db:"id"`
	OrgID        string     `json:"org_id" db:"org_id"`
	TaskType     string     `json:"task_type" db:"task_type"`
	Status       TaskStatus `json:"status" db:"status"`
	Priority     int        `json:"priority" db:"priority"`
	RetryCount   int        `json:"retry_count" db:"retry_count"`
	ParentTaskID *string    `json:"parent_task_id,omitempty" db:"parent_task_id"`
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Version      int64      `json:"version" db:"version"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Lead is a CRM lead. Embedding is the intent vector used for
// similarity lookup; it is never exposed over the API.
type Lead struct {
	ID        string          `json:"id" db:"id"`
	OrgID     string          `json:"org_id" db:"org_id"`
	Name      string          `json:"name" db:"name"`
	Email     *string         `json:"email,omitempty" db:"email"`
	Source    *string         `json:"source,omitempty" db:"source"`
	Status    LeadStatus      `json:"status" db:"status"`
	Score     float64         `json:"score" db:"score"`
	Embedding pgvector.Vector `json:"-" db:"embedding"`
	Version   int64           `json:"version" db:"version"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// RevenueEvent records money movement. AmountCents is negative for refunds.
type RevenueEvent struct {
	ID          string      `json:"id" db:"id"`
	OrgID       string      `json:"org_id" db:"org_id"`
	AmountCents int64       `json:"amount_cents" db:"amount_cents"`
	EventType   RevenueType `json:"event_type" db:"event_type"`
	LeadID      *string     `json:"lead_id,omitempty" db:"lead_id"`
	OccurredAt  time.Time   `json:"occurred_at" db:"occurred_at"`
	Version     int64       `json:"version" db:"version"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// ApprovalRequest is a spend or action awaiting a human decision.
type ApprovalRequest struct {
	ID          string         `json:"id" db:"id"`
	OrgID       string         `json:"org_id" db:"org_id"`
	ActionType  string         `json:"action_type" db:"action_type"`
	Description string         `json:"description" db:"description"`
	AmountCents int64          `json:"amount_cents" db:"amount_cents"`
	Status      ApprovalStatus `json:"status" db:"status"`
	DecidedBy   *string        `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt   *time.Time     `json:"decided_at,omitempty" db:"decided_at"`
	Version     int64          `json:"version" db:"version"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// AutonomousAction is a decision an agent took (or proposes to take).
// Reasoning is free text produced by the agent; the dashboard only
// displays it.
type AutonomousAction struct {
	ID               string       `json:"id" db:"id"`
	OrgID            string       `json:"org_id" db:"org_id"`
	AgentName        string       `json:"agent_name" db:"agent_name"`
	Decision         string       `json:"decision" db:"decision"`
	Reasoning        *string      `json:"reasoning,omitempty" db:"reasoning"`
	Confidence       float64      `json:"confidence" db:"confidence"`
	ValueImpactCents int64        `json:"value_impact_cents" db:"value_impact_cents"`
	Status           ActionStatus `json:"status" db:"status"`
	DecidedBy        *string      `json:"decided_by,omitempty" db:"decided_by"`
	ApprovedAt       *time.Time   `json:"approved_at,omitempty" db:"approved_at"`
	ExecutedAt       *time.Time   `json:"executed_at,omitempty" db:"executed_at"`
	Version          int64        `json:"version" db:"version"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// LicenseTenant is a white-label sub-tenant licensed under an organization.
// Branding is an opaque config blob rendered by the front end.
type LicenseTenant struct {
	ID              string      `json:"id" db:"id"`
	OrgID           string      `json:"org_id" db:"org_id"`
	Name            string      `json:"name" db:"name"`
	Tier            LicenseTier `json:"tier" db:"tier"`
	ActiveSeats     int         `json:"active_seats" db:"active_seats"`
	SeatLimit       int         `json:"seat_limit" db:"seat_limit"`
	SubOrgCount     int         `json:"sub_org_count" db:"sub_org_count"`
	SubOrgLimit     int         `json:"sub_org_limit" db:"sub_org_limit"`
	Branding        []byte      `json:"branding,omitempty" db:"branding"` // JSONB
	MonthlyFeeCents int64       `json:"monthly_fee_cents" db:"monthly_fee_cents"`
	Version         int64       `json:"version" db:"version"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// ScheduledContent is one piece of content in the publishing calendar.
type ScheduledContent struct {
	ID           string        `json:"id" db:"id"`
	OrgID        string        `json:"org_id" db:"org_id"`
	Title        string        `json:"title" db:"title"`
	Platform     string        `json:"platform" db:"platform"`
	ContentType  string        `json:"content_type" db:"content_type"`
	Status       ContentStatus `json:"status" db:"status"`
	ScheduledFor *time.Time    `json:"scheduled_for,omitempty" db:"scheduled_for"`
	PublishedAt  *time.Time    `json:"published_at,omitempty" db:"published_at"`
	Version      int64         `json:"version" db:"version"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// MetricSnapshot is a point-in-time rollup of one organization's dashboard
// metrics, written by the snapshot worker.
type MetricSnapshot struct {
	ID                string    `json:"id" db:"id"`
	OrgID             string    `json:"org_id" db:"org_id"`
	CapturedAt        time.Time `json:"captured_at" db:"captured_at"`
	TasksTotal        int       `json:"tasks_total" db:"tasks_total"`
	TasksCompleted    int       `json:"tasks_completed" db:"tasks_completed"`
	TasksFailed       int       `json:"tasks_failed" db:"tasks_failed"`
	SuccessRate       float64   `json:"success_rate" db:"success_rate"`
	ErrorRate         float64   `json:"error_rate" db:"error_rate"`
	LeadsTotal        int       `json:"leads_total" db:"leads_total"`
	QualificationRate float64   `json:"qualification_rate" db:"qualification_rate"`
	MRRCents          int64     `json:"mrr_cents" db:"mrr_cents"`
	PendingApprovals  int       `json:"pending_approvals" db:"pending_approvals"`
}
