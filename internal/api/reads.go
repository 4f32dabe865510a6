package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetDashboard returns the aggregated metrics for the caller's org
// (GET /api/v1/dashboard)
func (s *Server) GetDashboard(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	d, err := s.Dashboard.Get(c.Request().Context(), org)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// ListAgents returns the org's agent states
// (GET /api/v1/agents)
func (s *Server) ListAgents(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	agents, err := s.Store.ListAgentStates(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, agents)
}

// ListTasks returns the org's execution tasks
// (GET /api/v1/tasks)
func (s *Server) ListTasks(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	tasks, err := s.Store.ListExecutionTasks(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// ListLeads returns the org's leads
// (GET /api/v1/leads)
func (s *Server) ListLeads(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	leads, err := s.Store.ListLeads(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, leads)
}

// SimilarLeads returns the leads nearest to one lead by embedding distance
// (GET /api/v1/leads/:id/similar)
func (s *Server) SimilarLeads(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	leads, err := s.Dashboard.SimilarToLead(c.Request().Context(), org, c.Param("id"), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, leads)
}

// ListRevenue returns the org's revenue events
// (GET /api/v1/revenue)
func (s *Server) ListRevenue(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	events, err := s.Store.ListRevenueEvents(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}

// ListApprovals returns the org's approval requests
// (GET /api/v1/approvals?status=pending)
func (s *Server) ListApprovals(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	reqs, err := s.Store.ListApprovalRequests(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reqs)
}

// ListActions returns the org's autonomous actions
// (GET /api/v1/actions?status=pending)
func (s *Server) ListActions(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	actions, err := s.Store.ListAutonomousActions(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, actions)
}

// ListContent returns the org's publishing calendar
// (GET /api/v1/content?status=scheduled)
func (s *Server) ListContent(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	items, err := s.Store.ListScheduledContent(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListLicenseTenants returns the org's white-label sub-tenants
// (GET /api/v1/license)
func (s *Server) ListLicenseTenants(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}
	tenants, err := s.Store.ListLicenseTenants(c.Request().Context(), org, listOptions(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tenants)
}
