// Seed populates a local database with a demo organization and a plausible
// spread of rows across every tenant table. Safe to rerun; it skips seeding
// when the demo org already exists.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/config"
	"opsboard/internal/db"
	"opsboard/internal/db/migrate"
	"opsboard/internal/logging"
	"opsboard/internal/repository"
	"opsboard/pkg/models"
)

func main() {
	ctx := context.Background()
	logger := logging.NewLogger()

	// Load config
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := migrate.Run(cfg.DatabaseURL(), "up"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	store := repository.NewPostgresStore(pool)

	// 1. Ensure the demo org exists
	domain := "localhost"
	org, err := store.GetOrganizationByDomain(ctx, domain)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Info("Creating demo organization", "domain", domain)
		org = &models.Organization{
			ID:     uuid.New().String(),
			Name:   "Local Dev Org",
			Domain: domain,
		}
		if err := store.CreateOrganization(ctx, org); err != nil {
			log.Fatalf("Failed to create organization: %v", err)
		}
	} else if err != nil {
		log.Fatalf("Failed to look up organization: %v", err)
	} else {
		logger.Info("Found existing organization, skipping seed", "id", org.ID)
		return
	}

	now := time.Now().UTC()

	// 2. Agents
	working := "enriching inbound leads"
	agents := []*models.AgentState{
		{ID: uuid.New().String(), OrgID: org.ID, Name: "scout", AgentType: "research", Status: models.AgentStatusWorking, CurrentTask: &working},
		{ID: uuid.New().String(), OrgID: org.ID, Name: "closer", AgentType: "sales", Status: models.AgentStatusIdle},
		{ID: uuid.New().String(), OrgID: org.ID, Name: "publisher", AgentType: "content", Status: models.AgentStatusPaused},
	}
	for _, a := range agents {
		ts := now
		a.LastActiveAt = &ts
		if err := store.CreateAgentState(ctx, a); err != nil {
			log.Fatalf("Failed to seed agent %s: %v", a.Name, err)
		}
	}

	// 3. Tasks: 6 completed, 2 failed, 1 running, 1 pending
	taskStatuses := []models.TaskStatus{
		models.TaskStatusCompleted, models.TaskStatusCompleted, models.TaskStatusCompleted,
		models.TaskStatusCompleted, models.TaskStatusCompleted, models.TaskStatusCompleted,
		models.TaskStatusFailed, models.TaskStatusFailed,
		models.TaskStatusRunning, models.TaskStatusPending,
	}
	for i, st := range taskStatuses {
		task := &models.ExecutionTask{
			ID:       uuid.New().String(),
			OrgID:    org.ID,
			TaskType: "lead_enrichment",
			Status:   st,
			Priority: i % 3,
		}
		if st == models.TaskStatusCompleted || st == models.TaskStatusFailed {
			started := now.Add(-time.Duration(i+1) * time.Hour)
			done := started.Add(10 * time.Minute)
			task.StartedAt = &started
			task.CompletedAt = &done
		}
		if err := store.CreateExecutionTask(ctx, task); err != nil {
			log.Fatalf("Failed to seed task: %v", err)
		}
	}

	// 4. Leads
	leadRows := []struct {
		name   string
		email  string
		status models.LeadStatus
		score  float64
	}{
		{"Dana Whitfield", "dana@example.com", models.LeadStatusQualified, 0.91},
		{"Marcus Oyelaran", "marcus@example.com", models.LeadStatusContacted, 0.64},
		{"Priya Natarajan", "priya@example.com", models.LeadStatusConverted, 0.97},
		{"Jon Bekker", "jon@example.com", models.LeadStatusNew, 0.38},
		{"Sofia Arruda", "sofia@example.com", models.LeadStatusLost, 0.22},
	}
	leadIDs := make([]string, 0, len(leadRows))
	for _, lr := range leadRows {
		email := lr.email
		source := "inbound"
		l := &models.Lead{
			ID:     uuid.New().String(),
			OrgID:  org.ID,
			Name:   lr.name,
			Email:  &email,
			Source: &source,
			Status: lr.status,
			Score:  lr.score,
		}
		if err := store.CreateLead(ctx, l); err != nil {
			log.Fatalf("Failed to seed lead %s: %v", lr.name, err)
		}
		leadIDs = append(leadIDs, l.ID)
	}

	// 5. Revenue: recurring this month, a one-off and a refund
	revenue := []*models.RevenueEvent{
		{ID: uuid.New().String(), OrgID: org.ID, AmountCents: 49900, EventType: models.RevenueTypeSubscription, LeadID: &leadIDs[2], OccurredAt: now.AddDate(0, 0, -3)},
		{ID: uuid.New().String(), OrgID: org.ID, AmountCents: 12500, EventType: models.RevenueTypeExpansion, OccurredAt: now.AddDate(0, 0, -1)},
		{ID: uuid.New().String(), OrgID: org.ID, AmountCents: 80000, EventType: models.RevenueTypeOneTime, OccurredAt: now.AddDate(0, -1, 0)},
		{ID: uuid.New().String(), OrgID: org.ID, AmountCents: -9900, EventType: models.RevenueTypeRefund, OccurredAt: now.AddDate(0, 0, -2)},
	}
	for _, r := range revenue {
		if err := store.CreateRevenueEvent(ctx, r); err != nil {
			log.Fatalf("Failed to seed revenue event: %v", err)
		}
	}

	// 6. Approvals and autonomous actions awaiting decisions
	approvals := []*models.ApprovalRequest{
		{ID: uuid.New().String(), OrgID: org.ID, ActionType: "ad_spend", Description: "Boost Q3 launch campaign", AmountCents: 150000},
		{ID: uuid.New().String(), OrgID: org.ID, ActionType: "contract", Description: "Annual renewal discount for Priya Natarajan", AmountCents: 60000},
	}
	for _, a := range approvals {
		if err := store.CreateApprovalRequest(ctx, a); err != nil {
			log.Fatalf("Failed to seed approval request: %v", err)
		}
	}

	reasoning := "High-intent signals from the last two sessions"
	actions := []*models.AutonomousAction{
		{ID: uuid.New().String(), OrgID: org.ID, AgentName: "closer", Decision: "Offer 10% discount to Dana Whitfield", Reasoning: &reasoning, Confidence: 0.88, ValueImpactCents: 45000},
		{ID: uuid.New().String(), OrgID: org.ID, AgentName: "scout", Decision: "Archive cold leads older than 90 days", Confidence: 0.72, ValueImpactCents: 0},
	}
	for _, a := range actions {
		if err := store.CreateAutonomousAction(ctx, a); err != nil {
			log.Fatalf("Failed to seed autonomous action: %v", err)
		}
	}

	// 7. License tenants
	tenants := []*models.LicenseTenant{
		{ID: uuid.New().String(), OrgID: org.ID, Name: "Northwind Agency", Tier: models.LicenseTierGrowth, ActiveSeats: 14, SeatLimit: 25, SubOrgCount: 2, SubOrgLimit: 5, MonthlyFeeCents: 49900},
		{ID: uuid.New().String(), OrgID: org.ID, Name: "Beacon Labs", Tier: models.LicenseTierStarter, ActiveSeats: 3, SeatLimit: 5, SubOrgCount: 0, SubOrgLimit: 1, MonthlyFeeCents: 9900},
	}
	for _, lt := range tenants {
		if err := store.CreateLicenseTenant(ctx, lt); err != nil {
			log.Fatalf("Failed to seed license tenant: %v", err)
		}
	}

	// 8. Publishing calendar
	slot := now.Add(48 * time.Hour)
	content := []*models.ScheduledContent{
		{ID: uuid.New().String(), OrgID: org.ID, Title: "Launch announcement", Platform: "linkedin", ContentType: "post", Status: models.ContentStatusScheduled, ScheduledFor: &slot},
		{ID: uuid.New().String(), OrgID: org.ID, Title: "Feature deep dive", Platform: "blog", ContentType: "article", Status: models.ContentStatusDraft},
	}
	for _, c := range content {
		if err := store.CreateScheduledContent(ctx, c); err != nil {
			log.Fatalf("Failed to seed content: %v", err)
		}
	}

	logger.Info("Seeding complete!", "org_id", org.ID)
}
