package services

import (
	"context"
	"time"

	"opsboard/internal/otel"
	"opsboard/internal/repository"
	"opsboard/pkg/models"
)

// MutationService dispatches user-initiated state transitions. Every call
// returns the authoritative post-write row from the database; callers must
// not patch local state from the intent they sent.
type MutationService struct {
	store repository.Store
}

// NewMutationService creates a new MutationService.
func NewMutationService(store repository.Store) *MutationService {
	return &MutationService{store: store}
}

func record(ctx context.Context, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if err == repository.ErrNotFound {
			outcome = "not_found"
		}
	}
	otel.RecordMutation(ctx, op, outcome)
}

// ApproveAction approves a pending autonomous action on behalf of decidedBy.
func (s *MutationService) ApproveAction(ctx context.Context, orgID, id, decidedBy string) (*models.AutonomousAction, error) {
	a, err := s.store.ApproveAutonomousAction(ctx, orgID, id, decidedBy)
	record(ctx, "approve_action", err)
	return a, err
}

// RejectAction rejects a pending autonomous action on behalf of decidedBy.
func (s *MutationService) RejectAction(ctx context.Context, orgID, id, decidedBy string) (*models.AutonomousAction, error) {
	a, err := s.store.RejectAutonomousAction(ctx, orgID, id, decidedBy)
	record(ctx, "reject_action", err)
	return a, err
}

// DecideApproval approves or rejects a pending approval request.
func (s *MutationService) DecideApproval(ctx context.Context, orgID, id, decidedBy string, approve bool) (*models.ApprovalRequest, error) {
	op := "reject_request"
	if approve {
		op = "approve_request"
	}
	a, err := s.store.DecideApprovalRequest(ctx, orgID, id, decidedBy, approve)
	record(ctx, op, err)
	return a, err
}

// ScheduleContent slots a draft or already scheduled item at the given time.
func (s *MutationService) ScheduleContent(ctx context.Context, orgID, id string, when time.Time) (*models.ScheduledContent, error) {
	c, err := s.store.ScheduleContent(ctx, orgID, id, when)
	record(ctx, "schedule_content", err)
	return c, err
}

// PublishContent publishes a scheduled item.
func (s *MutationService) PublishContent(ctx context.Context, orgID, id string) (*models.ScheduledContent, error) {
	c, err := s.store.PublishContent(ctx, orgID, id)
	record(ctx, "publish_content", err)
	return c, err
}
