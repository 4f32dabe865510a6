// Package api contains the HTTP handlers for the dashboard service
package api

import (
	"github.com/labstack/echo/v4"

	"opsboard/internal/events"
	"opsboard/internal/repository"
	"opsboard/internal/services"
)

// Server holds the dependencies for the API server.
type Server struct {
	Store     repository.Store
	Dashboard *services.DashboardService
	Mutations *services.MutationService
	Hub       *events.Hub
}

// NewServer creates a new Server.
func NewServer(store repository.Store, dashboard *services.DashboardService, mutations *services.MutationService, hub *events.Hub) *Server {
	return &Server{
		Store:     store,
		Dashboard: dashboard,
		Mutations: mutations,
		Hub:       hub,
	}
}

// RegisterRoutes attaches every tenant-scoped route to the group. The group
// must already carry the auth middleware; handlers still refuse requests
// with no resolved org.
func (s *Server) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard", s.GetDashboard)

	g.GET("/agents", s.ListAgents)
	g.GET("/tasks", s.ListTasks)
	g.GET("/leads", s.ListLeads)
	g.GET("/leads/:id/similar", s.SimilarLeads)
	g.GET("/revenue", s.ListRevenue)
	g.GET("/approvals", s.ListApprovals)
	g.GET("/actions", s.ListActions)
	g.GET("/content", s.ListContent)
	g.GET("/license", s.ListLicenseTenants)

	g.POST("/actions/:id/approve", s.ApproveAction)
	g.POST("/actions/:id/reject", s.RejectAction)
	g.POST("/approvals/:id/approve", s.ApproveRequest)
	g.POST("/approvals/:id/reject", s.RejectRequest)
	g.POST("/content/:id/schedule", s.ScheduleContent)
	g.POST("/content/:id/publish", s.PublishContent)

	g.GET("/stream", s.Stream)
}
