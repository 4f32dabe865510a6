package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"opsboard/pkg/models"
)

// defaultLimit caps list queries when the caller does not ask for a limit.
const defaultLimit = 100

// PostgresStore is the PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// orderClause resolves the requested ordering key against the entity's
// allowed columns, falling back to def for unknown keys.
func orderClause(allowed map[string]bool, key, def string, desc bool) string {
	col := def
	if allowed[key] {
		col = key
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return col + " " + dir
}

func limitOf(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

// ---- organizations ----

// GetOrganizationByDomain returns the organization owning the given email
// domain, or ErrNotFound.
func (s *PostgresStore) GetOrganizationByDomain(ctx context.Context, domain string) (*models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRow(ctx,
		`SELECT id, name, domain, created_at, updated_at FROM organizations WHERE domain = $1`,
		domain,
	).Scan(&o.ID, &o.Name, &o.Domain, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// CreateOrganization persists the organization. The ID must be set.
func (s *PostgresStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO organizations (id, name, domain) VALUES ($1, $2, $3)`,
		org.ID, org.Name, org.Domain)
	return err
}

// ListOrganizations returns every organization. Used by the snapshot
// recompute-all path, not by tenant-facing endpoints.
func (s *PostgresStore) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, domain, created_at, updated_at FROM organizations ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Domain, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// ---- agent states ----

const agentStateCols = `id, org_id, name, agent_type, status, current_task, last_action, metrics, last_active_at, version, created_at, updated_at`

func scanAgentState(r rowScanner) (*models.AgentState, error) {
	var a models.AgentState
	err := r.Scan(&a.ID, &a.OrgID, &a.Name, &a.AgentType, &a.Status, &a.CurrentTask,
		&a.LastAction, &a.Metrics, &a.LastActiveAt, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAgentStates returns agent states for the org, most recently updated first
// by default.
func (s *PostgresStore) ListAgentStates(ctx context.Context, orgID string, opts ListOptions) ([]*models.AgentState, error) {
	q := `SELECT ` + agentStateCols + ` FROM agent_states WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND status = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"name": true, "updated_at": true, "last_active_at": true},
		opts.OrderBy, "updated_at", opts.OrderBy == "" || opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AgentState
	for rows.Next() {
		a, err := scanAgentState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAgentState persists the agent state. The ID must be set.
func (s *PostgresStore) CreateAgentState(ctx context.Context, a *models.AgentState) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO agent_states (id, org_id, name, agent_type, status, current_task, last_action, metrics, last_active_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.OrgID, a.Name, a.AgentType, a.Status, a.CurrentTask, a.LastAction, a.Metrics, a.LastActiveAt)
	return err
}

// ---- execution tasks ----

const taskCols = `id, org_id, task_type, status, priority, retry_count, parent_task_id, started_at, completed_at, version, created_at, updated_at`

func scanTask(r rowScanner) (*models.ExecutionTask, error) {
	var t models.ExecutionTask
	err := r.Scan(&t.ID, &t.OrgID, &t.TaskType, &t.Status, &t.Priority, &t.RetryCount,
		&t.ParentTaskID, &t.StartedAt, &t.CompletedAt, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListExecutionTasks returns tasks for the org, newest first by default.
func (s *PostgresStore) ListExecutionTasks(ctx context.Context, orgID string, opts ListOptions) ([]*models.ExecutionTask, error) {
	q := `SELECT ` + taskCols + ` FROM execution_tasks WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND status = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"created_at": true, "priority": true, "completed_at": true},
		opts.OrderBy, "created_at", opts.OrderBy == "" || opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ExecutionTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateExecutionTask persists the task. The ID must be set.
func (s *PostgresStore) CreateExecutionTask(ctx context.Context, t *models.ExecutionTask) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO execution_tasks (id, org_id, task_type, status, priority, retry_count, parent_task_id, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.OrgID, t.TaskType, t.Status, t.Priority, t.RetryCount, t.ParentTaskID, t.StartedAt, t.CompletedAt)
	return err
}

// ---- leads ----

const leadCols = `id, org_id, name, email, source, status, score, embedding, version, created_at, updated_at`

func scanLead(r rowScanner) (*models.Lead, error) {
	var l models.Lead
	var emb *pgvector.Vector
	err := r.Scan(&l.ID, &l.OrgID, &l.Name, &l.Email, &l.Source, &l.Status, &l.Score,
		&emb, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if emb != nil {
		l.Embedding = *emb
	}
	return &l, nil
}

// ListLeads returns leads for the org, newest first by default.
func (s *PostgresStore) ListLeads(ctx context.Context, orgID string, opts ListOptions) ([]*models.Lead, error) {
	q := `SELECT ` + leadCols + ` FROM leads WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND status = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"created_at": true, "score": true, "name": true},
		opts.OrderBy, "created_at", opts.OrderBy == "" || opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetLead returns one lead by id, or ErrNotFound.
func (s *PostgresStore) GetLead(ctx context.Context, orgID, id string) (*models.Lead, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+leadCols+` FROM leads WHERE id = $1 AND org_id = $2`, id, orgID)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// FindSimilarLeads returns the org's leads nearest to the query embedding
// by cosine distance. Leads without an embedding are excluded.
func (s *PostgresStore) FindSimilarLeads(ctx context.Context, orgID string, embedding []float32, limit int) ([]*models.Lead, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+leadCols+` FROM leads
		 WHERE org_id = $1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		orgID, pgvector.NewVector(embedding), limitOf(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateLead persists the lead. The ID must be set.
func (s *PostgresStore) CreateLead(ctx context.Context, l *models.Lead) error {
	var emb any
	if len(l.Embedding.Slice()) > 0 {
		emb = l.Embedding
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO leads (id, org_id, name, email, source, status, score, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.OrgID, l.Name, l.Email, l.Source, l.Status, l.Score, emb)
	return err
}

// ---- revenue events ----

const revenueCols = `id, org_id, amount_cents, event_type, lead_id, occurred_at, version, created_at, updated_at`

func scanRevenue(r rowScanner) (*models.RevenueEvent, error) {
	var ev models.RevenueEvent
	err := r.Scan(&ev.ID, &ev.OrgID, &ev.AmountCents, &ev.EventType, &ev.LeadID,
		&ev.OccurredAt, &ev.Version, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListRevenueEvents returns revenue events for the org, most recent first
// by default.
func (s *PostgresStore) ListRevenueEvents(ctx context.Context, orgID string, opts ListOptions) ([]*models.RevenueEvent, error) {
	q := `SELECT ` + revenueCols + ` FROM revenue_events WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND event_type = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"occurred_at": true, "amount_cents": true},
		opts.OrderBy, "occurred_at", opts.OrderBy == "" || opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RevenueEvent
	for rows.Next() {
		ev, err := scanRevenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CreateRevenueEvent persists the revenue event. The ID must be set.
func (s *PostgresStore) CreateRevenueEvent(ctx context.Context, r *models.RevenueEvent) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO revenue_events (id, org_id, amount_cents, event_type, lead_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.OrgID, r.AmountCents, r.EventType, r.LeadID, r.OccurredAt)
	return err
}

// ---- approval requests ----

const approvalCols = `id, org_id, action_type, description, amount_cents, status, decided_by, decided_at, version, created_at, updated_at`

func scanApproval(r rowScanner) (*models.ApprovalRequest, error) {
	var a models.ApprovalRequest
	err := r.Scan(&a.ID, &a.OrgID, &a.ActionType, &a.Description, &a.AmountCents,
		&a.Status, &a.DecidedBy, &a.DecidedAt, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListApprovalRequests returns approval requests for the org, newest first
// by default.
func (s *PostgresStore) ListApprovalRequests(ctx context.Context, orgID string, opts ListOptions) ([]*models.ApprovalRequest, error) {
	q := `SELECT ` + approvalCols + ` FROM approval_requests WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND status = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"created_at": true, "amount_cents": true},
		opts.OrderBy, "created_at", opts.OrderBy == "" || opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ApprovalRequest
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DecideApprovalRequest approves or rejects a pending request, recording who
// decided and when. Returns the authoritative post-write row, or ErrNotFound
// if the request does not exist for the org or was already decided.
func (s *PostgresStore) DecideApprovalRequest(ctx context.Context, orgID, id, decidedBy string, approve bool) (*models.ApprovalRequest, error) {
	status := models.ApprovalStatusRejected
	if approve {
		status = models.ApprovalStatusApproved
	}
	row := s.db.QueryRow(ctx,
		`UPDATE approval_requests
		 SET status = $4, decided_by = $3, decided_at = now()
		 WHERE id = $1 AND org_id = $2 AND status = 'pending'
		 RETURNING `+approvalCols,
		id, orgID, decidedBy, status)
	a, err := scanApproval(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// CreateApprovalRequest persists the approval request. The ID must be set.
func (s *PostgresStore) CreateApprovalRequest(ctx context.Context, a *models.ApprovalRequest) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO approval_requests (id, org_id, action_type, description, amount_cents, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.OrgID, a.ActionType, a.Description, a.AmountCents, statusOrDefault(string(a.Status), string(models.ApprovalStatusPending)))
	return err
}

// ---- autonomous actions ----

const actionCols = `id, org_id, agent_name, decision, reasoning, confidence, value_impact_cents, status, decided_by, approved_at, executed_at, version, created_at, updated_at`

func scanAction(r rowScanner) (*models.AutonomousAction, error) {
	var a models.AutonomousAction
	err := r.Scan(&a.ID, &a.OrgID, &a.AgentName, &a.Decision, &a.Reasoning, &a.Confidence,
		&a.ValueImpactCents, &a.Status, &a.DecidedBy, &a.ApprovedAt, &a.ExecutedAt,
		&a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAutonomousActions returns autonomous actions for the org, newest first
// by default.
func (s *PostgresStore) ListAutonomousActions(ctx context.Context, orgID string, opts ListOptions) ([]*models.AutonomousAction, error) {
	q := `SELECT ` + actionCols + ` FROM autonomous_actions WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND status = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"created_at": true, "confidence": true, "value_impact_cents": true},
		opts.OrderBy, "created_at", opts.OrderBy == "" || opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AutonomousAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ApproveAutonomousAction marks a pending action approved, stamping both the
// approval and execution timestamps. Returns the authoritative post-write
// row, or ErrNotFound if the action is missing or not pending.
func (s *PostgresStore) ApproveAutonomousAction(ctx context.Context, orgID, id, decidedBy string) (*models.AutonomousAction, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE autonomous_actions
		 SET status = 'approved', decided_by = $3, approved_at = now(), executed_at = now()
		 WHERE id = $1 AND org_id = $2 AND status = 'pending'
		 RETURNING `+actionCols,
		id, orgID, decidedBy)
	a, err := scanAction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// RejectAutonomousAction marks a pending action rejected. The row is kept;
// it simply stops matching pending-filtered views.
func (s *PostgresStore) RejectAutonomousAction(ctx context.Context, orgID, id, decidedBy string) (*models.AutonomousAction, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE autonomous_actions
		 SET status = 'rejected', decided_by = $3
		 WHERE id = $1 AND org_id = $2 AND status = 'pending'
		 RETURNING `+actionCols,
		id, orgID, decidedBy)
	a, err := scanAction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// CreateAutonomousAction persists the action. The ID must be set.
func (s *PostgresStore) CreateAutonomousAction(ctx context.Context, a *models.AutonomousAction) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO autonomous_actions (id, org_id, agent_name, decision, reasoning, confidence, value_impact_cents, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.OrgID, a.AgentName, a.Decision, a.Reasoning, a.Confidence, a.ValueImpactCents,
		statusOrDefault(string(a.Status), string(models.ActionStatusPending)))
	return err
}

// ---- license tenants ----

const licenseCols = `id, org_id, name, tier, active_seats, seat_limit, sub_org_count, sub_org_limit, branding, monthly_fee_cents, version, created_at, updated_at`

func scanLicense(r rowScanner) (*models.LicenseTenant, error) {
	var l models.LicenseTenant
	err := r.Scan(&l.ID, &l.OrgID, &l.Name, &l.Tier, &l.ActiveSeats, &l.SeatLimit,
		&l.SubOrgCount, &l.SubOrgLimit, &l.Branding, &l.MonthlyFeeCents,
		&l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLicenseTenants returns the org's white-label sub-tenants.
func (s *PostgresStore) ListLicenseTenants(ctx context.Context, orgID string, opts ListOptions) ([]*models.LicenseTenant, error) {
	q := `SELECT ` + licenseCols + ` FROM license_tenants WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND tier = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"name": true, "created_at": true, "monthly_fee_cents": true},
		opts.OrderBy, "name", opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.LicenseTenant
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CreateLicenseTenant persists the license tenant. The ID must be set.
func (s *PostgresStore) CreateLicenseTenant(ctx context.Context, l *models.LicenseTenant) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO license_tenants (id, org_id, name, tier, active_seats, seat_limit, sub_org_count, sub_org_limit, branding, monthly_fee_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.OrgID, l.Name, l.Tier, l.ActiveSeats, l.SeatLimit, l.SubOrgCount, l.SubOrgLimit, l.Branding, l.MonthlyFeeCents)
	return err
}

// ---- scheduled content ----

const contentCols = `id, org_id, title, platform, content_type, status, scheduled_for, published_at, version, created_at, updated_at`

func scanContent(r rowScanner) (*models.ScheduledContent, error) {
	var c models.ScheduledContent
	err := r.Scan(&c.ID, &c.OrgID, &c.Title, &c.Platform, &c.ContentType, &c.Status,
		&c.ScheduledFor, &c.PublishedAt, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListScheduledContent returns content rows for the org, soonest scheduled
// first by default.
func (s *PostgresStore) ListScheduledContent(ctx context.Context, orgID string, opts ListOptions) ([]*models.ScheduledContent, error) {
	q := `SELECT ` + contentCols + ` FROM scheduled_content WHERE org_id = $1`
	args := []any{orgID}
	if opts.Status != "" {
		q += ` AND status = $2`
		args = append(args, opts.Status)
	}
	order := orderClause(map[string]bool{"scheduled_for": true, "published_at": true, "created_at": true},
		opts.OrderBy, "scheduled_for", opts.Desc)
	q += fmt.Sprintf(` ORDER BY %s NULLS LAST LIMIT %d`, order, limitOf(opts.Limit))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ScheduledContent
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ScheduleContent places a draft (or re-slots an already scheduled item)
// into the calendar at the given time. Returns the authoritative post-write
// row, or ErrNotFound if the item is missing or already published.
func (s *PostgresStore) ScheduleContent(ctx context.Context, orgID, id string, when time.Time) (*models.ScheduledContent, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE scheduled_content
		 SET status = 'scheduled', scheduled_for = $3
		 WHERE id = $1 AND org_id = $2 AND status IN ('draft', 'scheduled')
		 RETURNING `+contentCols,
		id, orgID, when)
	c, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// PublishContent transitions a scheduled item to published. Returns the
// authoritative post-write row, or ErrNotFound if the item is missing or
// not currently scheduled.
func (s *PostgresStore) PublishContent(ctx context.Context, orgID, id string) (*models.ScheduledContent, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE scheduled_content
		 SET status = 'published', published_at = now()
		 WHERE id = $1 AND org_id = $2 AND status = 'scheduled'
		 RETURNING `+contentCols,
		id, orgID)
	c, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// CreateScheduledContent persists the content row. The ID must be set.
func (s *PostgresStore) CreateScheduledContent(ctx context.Context, c *models.ScheduledContent) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO scheduled_content (id, org_id, title, platform, content_type, status, scheduled_for, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.OrgID, c.Title, c.Platform, c.ContentType,
		statusOrDefault(string(c.Status), string(models.ContentStatusDraft)), c.ScheduledFor, c.PublishedAt)
	return err
}

// ---- metric snapshots ----

// UpsertMetricSnapshot writes the org's rollup, replacing any prior one.
func (s *PostgresStore) UpsertMetricSnapshot(ctx context.Context, m *models.MetricSnapshot) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO metric_snapshots (id, org_id, captured_at, tasks_total, tasks_completed, tasks_failed,
		                               success_rate, error_rate, leads_total, qualification_rate, mrr_cents, pending_approvals)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (org_id) DO UPDATE SET
		   captured_at = EXCLUDED.captured_at,
		   tasks_total = EXCLUDED.tasks_total,
		   tasks_completed = EXCLUDED.tasks_completed,
		   tasks_failed = EXCLUDED.tasks_failed,
		   success_rate = EXCLUDED.success_rate,
		   error_rate = EXCLUDED.error_rate,
		   leads_total = EXCLUDED.leads_total,
		   qualification_rate = EXCLUDED.qualification_rate,
		   mrr_cents = EXCLUDED.mrr_cents,
		   pending_approvals = EXCLUDED.pending_approvals`,
		m.ID, m.OrgID, m.CapturedAt, m.TasksTotal, m.TasksCompleted, m.TasksFailed,
		m.SuccessRate, m.ErrorRate, m.LeadsTotal, m.QualificationRate, m.MRRCents, m.PendingApprovals)
	return err
}

// GetMetricSnapshot returns the org's latest rollup, or ErrNotFound.
func (s *PostgresStore) GetMetricSnapshot(ctx context.Context, orgID string) (*models.MetricSnapshot, error) {
	var m models.MetricSnapshot
	err := s.db.QueryRow(ctx,
		`SELECT id, org_id, captured_at, tasks_total, tasks_completed, tasks_failed,
		        success_rate, error_rate, leads_total, qualification_rate, mrr_cents, pending_approvals
		 FROM metric_snapshots WHERE org_id = $1`,
		orgID,
	).Scan(&m.ID, &m.OrgID, &m.CapturedAt, &m.TasksTotal, &m.TasksCompleted, &m.TasksFailed,
		&m.SuccessRate, &m.ErrorRate, &m.LeadsTotal, &m.QualificationRate, &m.MRRCents, &m.PendingApprovals)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func statusOrDefault(status, def string) string {
	if status == "" {
		return def
	}
	return status
}
