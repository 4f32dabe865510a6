package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/metrics"
	"opsboard/internal/otel"
	"opsboard/internal/repository"
	"opsboard/pkg/models"
)

// SnapshotService recomputes an organization's metric rollup and persists
// it. The snapshot worker calls Recompute on change events; the CLI calls
// RecomputeAll.
type SnapshotService struct {
	store repository.Store
	now   func() time.Time
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(store repository.Store) *SnapshotService {
	return &SnapshotService{store: store, now: time.Now}
}

// Recompute aggregates the org's current rows and upserts its snapshot.
func (s *SnapshotService) Recompute(ctx context.Context, orgID string) (*models.MetricSnapshot, error) {
	tasks, err := s.store.ListExecutionTasks(ctx, orgID, repository.ListOptions{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("snapshot tasks: %w", err)
	}
	leads, err := s.store.ListLeads(ctx, orgID, repository.ListOptions{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("snapshot leads: %w", err)
	}
	revenue, err := s.store.ListRevenueEvents(ctx, orgID, repository.ListOptions{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("snapshot revenue: %w", err)
	}
	approvals, err := s.store.ListApprovalRequests(ctx, orgID, repository.ListOptions{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("snapshot approvals: %w", err)
	}

	taskSummary := metrics.TaskMetrics(tasks)
	leadSummary := metrics.LeadMetrics(leads)
	revenueSummary := metrics.RevenueMetrics(revenue, s.now())

	snap := &models.MetricSnapshot{
		ID:                uuid.New().String(),
		OrgID:             orgID,
		CapturedAt:        s.now().UTC(),
		TasksTotal:        taskSummary.Total,
		TasksCompleted:    taskSummary.Completed,
		TasksFailed:       taskSummary.Failed,
		SuccessRate:       taskSummary.SuccessRate,
		ErrorRate:         taskSummary.ErrorRate,
		LeadsTotal:        leadSummary.Total,
		QualificationRate: leadSummary.QualificationRate,
		MRRCents:          revenueSummary.MRRCents,
		PendingApprovals:  metrics.PendingApprovals(approvals),
	}
	if err := s.store.UpsertMetricSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("snapshot upsert: %w", err)
	}
	otel.RecordSnapshotRecompute(ctx)
	return snap, nil
}

// RecomputeAll recomputes snapshots for every organization.
func (s *SnapshotService) RecomputeAll(ctx context.Context) error {
	orgs, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("snapshot orgs: %w", err)
	}
	for _, org := range orgs {
		if _, err := s.Recompute(ctx, org.ID); err != nil {
			return fmt.Errorf("snapshot org %s: %w", org.ID, err)
		}
	}
	return nil
}
