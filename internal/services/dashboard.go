// Package services composes repository reads and writes into the operations
// the API and MCP surfaces expose.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"opsboard/internal/metrics"
	"opsboard/internal/repository"
	"opsboard/pkg/models"
)

// Dashboard is the aggregated view for one organization. Each section is
// computed independently; a failure in any fetch fails the whole request.
type Dashboard struct {
	Tasks     metrics.TaskSummary    `json:"tasks"`
	Leads     metrics.LeadSummary    `json:"leads"`
	Revenue   metrics.RevenueSummary `json:"revenue"`
	Licenses  metrics.LicenseSummary `json:"licenses"`
	Content   metrics.ContentSummary `json:"content"`
	Approvals int                    `json:"pending_approvals"`
	Agents    []*models.AgentState   `json:"agents"`
}

// DashboardService aggregates tenant rows into dashboard metrics.
type DashboardService struct {
	store     repository.Store
	embedding EmbeddingClient
	now       func() time.Time
}

// NewDashboardService creates a new DashboardService. embedding may be nil;
// SimilarLeads then reports an error.
func NewDashboardService(store repository.Store, embedding EmbeddingClient) *DashboardService {
	return &DashboardService{store: store, embedding: embedding, now: time.Now}
}

// Get fetches the org's rows concurrently and aggregates them. Metric
// aggregation mixes no rows from other orgs; every fetch is scoped by orgID.
func (s *DashboardService) Get(ctx context.Context, orgID string) (*Dashboard, error) {
	var (
		tasks     []*models.ExecutionTask
		leads     []*models.Lead
		revenue   []*models.RevenueEvent
		approvals []*models.ApprovalRequest
		licenses  []*models.LicenseTenant
		content   []*models.ScheduledContent
		agents    []*models.AgentState
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tasks, err = s.store.ListExecutionTasks(gctx, orgID, repository.ListOptions{Limit: 1000})
		return err
	})
	g.Go(func() (err error) {
		leads, err = s.store.ListLeads(gctx, orgID, repository.ListOptions{Limit: 1000})
		return err
	})
	g.Go(func() (err error) {
		revenue, err = s.store.ListRevenueEvents(gctx, orgID, repository.ListOptions{Limit: 1000})
		return err
	})
	g.Go(func() (err error) {
		approvals, err = s.store.ListApprovalRequests(gctx, orgID, repository.ListOptions{Limit: 1000})
		return err
	})
	g.Go(func() (err error) {
		licenses, err = s.store.ListLicenseTenants(gctx, orgID, repository.ListOptions{Limit: 1000})
		return err
	})
	g.Go(func() (err error) {
		content, err = s.store.ListScheduledContent(gctx, orgID, repository.ListOptions{Limit: 1000})
		return err
	})
	g.Go(func() (err error) {
		agents, err = s.store.ListAgentStates(gctx, orgID, repository.ListOptions{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard fetch: %w", err)
	}

	return &Dashboard{
		Tasks:     metrics.TaskMetrics(tasks),
		Leads:     metrics.LeadMetrics(leads),
		Revenue:   metrics.RevenueMetrics(revenue, s.now()),
		Licenses:  metrics.LicenseMetrics(licenses),
		Content:   metrics.ContentMetrics(content),
		Approvals: metrics.PendingApprovals(approvals),
		Agents:    agents,
	}, nil
}

// SimilarLeads embeds the query text and returns the org's nearest leads by
// cosine distance.
func (s *DashboardService) SimilarLeads(ctx context.Context, orgID, query string, limit int) ([]*models.Lead, error) {
	if s.embedding == nil {
		return nil, fmt.Errorf("similar leads: no embedding client configured")
	}
	vec, err := s.embedding.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("similar leads: %w", err)
	}
	return s.store.FindSimilarLeads(ctx, orgID, vec, limit)
}

// SimilarToLead returns the org's leads nearest to one existing lead,
// excluding the lead itself. A lead without an embedding has no neighbors.
func (s *DashboardService) SimilarToLead(ctx context.Context, orgID, leadID string, limit int) ([]*models.Lead, error) {
	lead, err := s.store.GetLead(ctx, orgID, leadID)
	if err != nil {
		return nil, err
	}
	vec := lead.Embedding.Slice()
	if len(vec) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	// Fetch one extra; the lead itself is its own nearest neighbor.
	found, err := s.store.FindSimilarLeads(ctx, orgID, vec, limit+1)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Lead, 0, limit)
	for _, l := range found {
		if l.ID == leadID {
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
