package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/repository"
	"opsboard/pkg/models"
)

// fakeStore embeds the Store interface so tests only override the methods
// they exercise; calling anything else panics.
type fakeStore struct {
	repository.Store

	tasks     []*models.ExecutionTask
	leads     []*models.Lead
	revenue   []*models.RevenueEvent
	approvals []*models.ApprovalRequest
	licenses  []*models.LicenseTenant
	content   []*models.ScheduledContent
	agents    []*models.AgentState

	orgIDs []string
	err    error
}

func (f *fakeStore) ListExecutionTasks(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.ExecutionTask, error) {
	f.orgIDs = append(f.orgIDs, orgID)
	return f.tasks, f.err
}

func (f *fakeStore) ListLeads(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.Lead, error) {
	return f.leads, f.err
}

func (f *fakeStore) ListRevenueEvents(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.RevenueEvent, error) {
	return f.revenue, f.err
}

func (f *fakeStore) ListApprovalRequests(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.ApprovalRequest, error) {
	return f.approvals, f.err
}

func (f *fakeStore) ListLicenseTenants(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.LicenseTenant, error) {
	return f.licenses, f.err
}

func (f *fakeStore) ListScheduledContent(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.ScheduledContent, error) {
	return f.content, f.err
}

func (f *fakeStore) ListAgentStates(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.AgentState, error) {
	return f.agents, f.err
}

type fakeEmbedding struct {
	vec  []float32
	err  error
	seen string
}

func (f *fakeEmbedding) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.seen = text
	return f.vec, f.err
}

func taskRows(completed, failed, other int) []*models.ExecutionTask {
	var out []*models.ExecutionTask
	for i := 0; i < completed; i++ {
		out = append(out, &models.ExecutionTask{Status: models.TaskStatusCompleted})
	}
	for i := 0; i < failed; i++ {
		out = append(out, &models.ExecutionTask{Status: models.TaskStatusFailed})
	}
	for i := 0; i < other; i++ {
		out = append(out, &models.ExecutionTask{Status: models.TaskStatusPending})
	}
	return out
}

func TestDashboardGet(t *testing.T) {
	now := time.Now()
	store := &fakeStore{
		tasks: taskRows(6, 2, 2),
		leads: []*models.Lead{
			{Status: models.LeadStatusQualified},
			{Status: models.LeadStatusNew},
		},
		revenue: []*models.RevenueEvent{
			{AmountCents: 10000, EventType: models.RevenueTypeSubscription, OccurredAt: now},
		},
		approvals: []*models.ApprovalRequest{
			{Status: models.ApprovalStatusPending},
			{Status: models.ApprovalStatusApproved},
		},
		licenses: []*models.LicenseTenant{{ActiveSeats: 5, MonthlyFeeCents: 9900}},
		content:  []*models.ScheduledContent{{Status: models.ContentStatusScheduled}},
		agents:   []*models.AgentState{{Name: "scout", Status: models.AgentStatusWorking}},
	}

	svc := NewDashboardService(store, nil)
	d, err := svc.Get(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, 10, d.Tasks.Total)
	assert.Equal(t, 60.0, d.Tasks.SuccessRate)
	assert.Equal(t, 20.0, d.Tasks.ErrorRate)
	assert.Equal(t, 50.0, d.Leads.QualificationRate)
	assert.Equal(t, int64(10000), d.Revenue.MRRCents)
	assert.Equal(t, 5, d.Licenses.ActiveSeats)
	assert.Equal(t, 1, d.Content.Scheduled)
	assert.Equal(t, 1, d.Approvals)
	require.Len(t, d.Agents, 1)
	assert.Equal(t, "scout", d.Agents[0].Name)

	// Every fetch carried the caller's org.
	assert.Equal(t, []string{"org-1"}, store.orgIDs)
}

func TestDashboardGetPropagatesFetchError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection reset")}
	svc := NewDashboardService(store, nil)

	_, err := svc.Get(context.Background(), "org-1")
	assert.Error(t, err)
}

func TestSimilarLeads(t *testing.T) {
	store := &similarStore{leads: []*models.Lead{{ID: "l1", Name: "Near"}}}
	emb := &fakeEmbedding{vec: []float32{0.1, 0.2}}

	svc := NewDashboardService(store, emb)
	got, err := svc.SimilarLeads(context.Background(), "org-1", "enterprise crm buyer", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "l1", got[0].ID)
	assert.Equal(t, "enterprise crm buyer", emb.seen)
	assert.Equal(t, []float32{0.1, 0.2}, store.vec)
	assert.Equal(t, "org-1", store.orgID)
}

func TestSimilarLeadsWithoutClient(t *testing.T) {
	svc := NewDashboardService(&fakeStore{}, nil)
	_, err := svc.SimilarLeads(context.Background(), "org-1", "query", 5)
	assert.Error(t, err)
}

type similarStore struct {
	repository.Store
	leads []*models.Lead
	vec   []float32
	orgID string
}

func (s *similarStore) FindSimilarLeads(ctx context.Context, orgID string, embedding []float32, limit int) ([]*models.Lead, error) {
	s.orgID = orgID
	s.vec = embedding
	return s.leads, nil
}
