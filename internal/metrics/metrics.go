// Package metrics computes dashboard rollups from row collections.
// All functions are pure; empty input yields zero values.
package metrics

import (
	"math"
	"time"

	"opsboard/pkg/models"
)

// TaskSummary rolls up execution tasks by outcome.
type TaskSummary struct {
	Total       int     `json:"total"`
	Pending     int     `json:"pending"`
	Running     int     `json:"running"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	ErrorRate   float64 `json:"error_rate"`
}

// LeadSummary rolls up the lead pipeline.
type LeadSummary struct {
	Total             int     `json:"total"`
	New               int     `json:"new"`
	Contacted         int     `json:"contacted"`
	Qualified         int     `json:"qualified"`
	Converted         int     `json:"converted"`
	Lost              int     `json:"lost"`
	QualificationRate float64 `json:"qualification_rate"`
}

// RevenueSummary rolls up revenue events. MRRCents counts subscription and
// expansion events that occurred in the month containing now.
type RevenueSummary struct {
	TotalCents int64 `json:"total_cents"`
	MRRCents   int64 `json:"mrr_cents"`
}

// LicenseSummary rolls up white-label sub-tenants. Seat limits are enforced
// upstream, not here.
type LicenseSummary struct {
	Tenants             int   `json:"tenants"`
	ActiveSeats         int   `json:"active_seats"`
	MonthlyRevenueCents int64 `json:"monthly_revenue_cents"`
}

// ContentSummary rolls up the publishing calendar.
type ContentSummary struct {
	Total     int `json:"total"`
	Draft     int `json:"draft"`
	Scheduled int `json:"scheduled"`
	Published int `json:"published"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// TaskMetrics computes per-status counts and success/error rates as
// percentages rounded to one decimal. Rates are 0 when there are no tasks.
func TaskMetrics(tasks []*models.ExecutionTask) TaskSummary {
	var s TaskSummary
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case models.TaskStatusPending:
			s.Pending++
		case models.TaskStatusRunning:
			s.Running++
		case models.TaskStatusCompleted:
			s.Completed++
		case models.TaskStatusFailed:
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = round1(float64(s.Completed) / float64(s.Total) * 100)
		s.ErrorRate = round1(float64(s.Failed) / float64(s.Total) * 100)
	}
	return s
}

// LeadMetrics computes pipeline counts and the qualification rate, the share
// of leads that reached qualified or converted.
func LeadMetrics(leads []*models.Lead) LeadSummary {
	var s LeadSummary
	for _, l := range leads {
		s.Total++
		switch l.Status {
		case models.LeadStatusNew:
			s.New++
		case models.LeadStatusContacted:
			s.Contacted++
		case models.LeadStatusQualified:
			s.Qualified++
		case models.LeadStatusConverted:
			s.Converted++
		case models.LeadStatusLost:
			s.Lost++
		}
	}
	if s.Total > 0 {
		s.QualificationRate = round1(float64(s.Qualified+s.Converted) / float64(s.Total) * 100)
	}
	return s
}

// RevenueMetrics sums all amounts (refunds carry negative amounts) and the
// recurring portion for the month containing now.
func RevenueMetrics(events []*models.RevenueEvent, now time.Time) RevenueSummary {
	var s RevenueSummary
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	for _, ev := range events {
		s.TotalCents += ev.AmountCents
		recurring := ev.EventType == models.RevenueTypeSubscription || ev.EventType == models.RevenueTypeExpansion
		if recurring && !ev.OccurredAt.Before(monthStart) && ev.OccurredAt.Before(monthEnd) {
			s.MRRCents += ev.AmountCents
		}
	}
	return s
}

// LicenseMetrics sums seats and monthly fees across sub-tenants.
func LicenseMetrics(tenants []*models.LicenseTenant) LicenseSummary {
	var s LicenseSummary
	for _, t := range tenants {
		s.Tenants++
		s.ActiveSeats += t.ActiveSeats
		s.MonthlyRevenueCents += t.MonthlyFeeCents
	}
	return s
}

// PendingApprovals counts requests still awaiting a decision.
func PendingApprovals(reqs []*models.ApprovalRequest) int {
	n := 0
	for _, r := range reqs {
		if r.Status == models.ApprovalStatusPending {
			n++
		}
	}
	return n
}

// ContentMetrics counts calendar items per publication state.
func ContentMetrics(items []*models.ScheduledContent) ContentSummary {
	var s ContentSummary
	for _, c := range items {
		s.Total++
		switch c.Status {
		case models.ContentStatusDraft:
			s.Draft++
		case models.ContentStatusScheduled:
			s.Scheduled++
		case models.ContentStatusPublished:
			s.Published++
		}
	}
	return s
}
