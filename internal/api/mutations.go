package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ApproveAction approves a pending autonomous action
// (POST /api/v1/actions/:id/approve)
func (s *Server) ApproveAction(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	action, err := s.Mutations.ApproveAction(c.Request().Context(), org, c.Param("id"), userEmail(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, action)
}

// RejectAction rejects a pending autonomous action
// (POST /api/v1/actions/:id/reject)
func (s *Server) RejectAction(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	action, err := s.Mutations.RejectAction(c.Request().Context(), org, c.Param("id"), userEmail(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, action)
}

// ApproveRequest approves a pending approval request
// (POST /api/v1/approvals/:id/approve)
func (s *Server) ApproveRequest(c echo.Context) error {
	return s.decideRequest(c, true)
}

// RejectRequest rejects a pending approval request
// (POST /api/v1/approvals/:id/reject)
func (s *Server) RejectRequest(c echo.Context) error {
	return s.decideRequest(c, false)
}

func (s *Server) decideRequest(c echo.Context, approve bool) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	req, err := s.Mutations.DecideApproval(c.Request().Context(), org, c.Param("id"), userEmail(c), approve)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, req)
}

type scheduleRequest struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// ScheduleContent slots a content item into the calendar
// (POST /api/v1/content/:id/schedule)
func (s *Server) ScheduleContent(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	var body scheduleRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	if body.ScheduledFor.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduled_for is required")
	}
	item, err := s.Mutations.ScheduleContent(c.Request().Context(), org, c.Param("id"), body.ScheduledFor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// PublishContent publishes a scheduled content item
// (POST /api/v1/content/:id/publish)
func (s *Server) PublishContent(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	item, err := s.Mutations.PublishContent(c.Request().Context(), org, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}
