package repository

import (
	"context"
	"errors"
	"time"

	"opsboard/pkg/models"
)

// ErrNotFound is returned when a query matches no row. Mutations return it
// when the target row does not exist for the org or is not in the required
// prior status, so a lost race never reports silent success.
var ErrNotFound = errors.New("repository: not found")

// ListOptions narrows a tenant-scoped list query. Status is an optional
// equality filter; OrderBy must be one of the columns the entity allows
// (unknown keys fall back to the entity default). Limit <= 0 applies the
// default of 100.
type ListOptions struct {
	Status  string
	OrderBy string
	Desc    bool
	Limit   int
}

// Store is the persistence interface for the dashboard. Every tenant-scoped
// method takes an explicit orgID; there is no ambient tenant state.
type Store interface {
	Ping(ctx context.Context) error

	// Organizations
	GetOrganizationByDomain(ctx context.Context, domain string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, org *models.Organization) error
	ListOrganizations(ctx context.Context) ([]*models.Organization, error)

	// Tenant-scoped reads
	ListAgentStates(ctx context.Context, orgID string, opts ListOptions) ([]*models.AgentState, error)
	ListExecutionTasks(ctx context.Context, orgID string, opts ListOptions) ([]*models.ExecutionTask, error)
	ListLeads(ctx context.Context, orgID string, opts ListOptions) ([]*models.Lead, error)
	GetLead(ctx context.Context, orgID, id string) (*models.Lead, error)
	FindSimilarLeads(ctx context.Context, orgID string, embedding []float32, limit int) ([]*models.Lead, error)
	ListRevenueEvents(ctx context.Context, orgID string, opts ListOptions) ([]*models.RevenueEvent, error)
	ListApprovalRequests(ctx context.Context, orgID string, opts ListOptions) ([]*models.ApprovalRequest, error)
	ListAutonomousActions(ctx context.Context, orgID string, opts ListOptions) ([]*models.AutonomousAction, error)
	ListLicenseTenants(ctx context.Context, orgID string, opts ListOptions) ([]*models.LicenseTenant, error)
	ListScheduledContent(ctx context.Context, orgID string, opts ListOptions) ([]*models.ScheduledContent, error)

	// Mutations. Each is a single status-guarded UPDATE returning the
	// authoritative post-write row.
	ApproveAutonomousAction(ctx context.Context, orgID, id, decidedBy string) (*models.AutonomousAction, error)
	RejectAutonomousAction(ctx context.Context, orgID, id, decidedBy string) (*models.AutonomousAction, error)
	DecideApprovalRequest(ctx context.Context, orgID, id, decidedBy string, approve bool) (*models.ApprovalRequest, error)
	ScheduleContent(ctx context.Context, orgID, id string, when time.Time) (*models.ScheduledContent, error)
	PublishContent(ctx context.Context, orgID, id string) (*models.ScheduledContent, error)

	// Writes used by seeding and by external ingestion.
	CreateAgentState(ctx context.Context, a *models.AgentState) error
	CreateExecutionTask(ctx context.Context, t *models.ExecutionTask) error
	CreateLead(ctx context.Context, l *models.Lead) error
	CreateRevenueEvent(ctx context.Context, r *models.RevenueEvent) error
	CreateApprovalRequest(ctx context.Context, a *models.ApprovalRequest) error
	CreateAutonomousAction(ctx context.Context, a *models.AutonomousAction) error
	CreateLicenseTenant(ctx context.Context, l *models.LicenseTenant) error
	CreateScheduledContent(ctx context.Context, c *models.ScheduledContent) error

	// Analytics snapshots
	UpsertMetricSnapshot(ctx context.Context, s *models.MetricSnapshot) error
	GetMetricSnapshot(ctx context.Context, orgID string) (*models.MetricSnapshot, error)
}
