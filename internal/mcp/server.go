package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"opsboard/internal/repository"
	"opsboard/internal/services"
)

// Server exposes dashboard operations as MCP tools for agent integrations.
// Tools take an explicit org_id argument; the MCP mount is an internal
// surface and does not go through the HTTP auth middleware.
type Server struct {
	mcpServer *server.MCPServer
	store     repository.Store
	dashboard *services.DashboardService
	mutations *services.MutationService
}

func NewServer(store repository.Store, dashboard *services.DashboardService, mutations *services.MutationService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Operations Board",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		store:     store,
		dashboard: dashboard,
		mutations: mutations,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"dashboard_metrics",
			mcp.WithDescription("Get the aggregated dashboard metrics for an organization"),
			mcp.WithString("org_id", mcp.Required(), mcp.Description("The organization ID")),
		),
		s.handleDashboardMetrics,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"pending_approvals",
			mcp.WithDescription("List approval requests still awaiting a decision"),
			mcp.WithString("org_id", mcp.Required(), mcp.Description("The organization ID")),
		),
		s.handlePendingApprovals,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"approve_action",
			mcp.WithDescription("Approve a pending autonomous action"),
			mcp.WithString("org_id", mcp.Required(), mcp.Description("The organization ID")),
			mcp.WithString("id", mcp.Required(), mcp.Description("The ID of the action")),
			mcp.WithString("decided_by", mcp.Required(), mcp.Description("Who approves the action")),
		),
		s.handleApproveAction,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"similar_leads",
			mcp.WithDescription("Find leads similar to a free-text query"),
			mcp.WithString("org_id", mcp.Required(), mcp.Description("The organization ID")),
			mcp.WithString("query", mcp.Required(), mcp.Description("The query to search for")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of leads to return")),
		),
		s.handleSimilarLeads,
	)
}

func stringArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", mcp.NewToolResultError("Invalid arguments type")
	}
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", mcp.NewToolResultError("Missing required parameter: " + name)
	}
	return v, nil
}

func (s *Server) handleDashboardMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgID, errResult := stringArg(request, "org_id")
	if errResult != nil {
		return errResult, nil
	}

	d, err := s.dashboard.Get(ctx, orgID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get dashboard: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(d)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handlePendingApprovals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgID, errResult := stringArg(request, "org_id")
	if errResult != nil {
		return errResult, nil
	}

	reqs, err := s.store.ListApprovalRequests(ctx, orgID, repository.ListOptions{Status: "pending"})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list approvals: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(reqs)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleApproveAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgID, errResult := stringArg(request, "org_id")
	if errResult != nil {
		return errResult, nil
	}
	id, errResult := stringArg(request, "id")
	if errResult != nil {
		return errResult, nil
	}
	decidedBy, errResult := stringArg(request, "decided_by")
	if errResult != nil {
		return errResult, nil
	}

	action, err := s.mutations.ApproveAction(ctx, orgID, id, decidedBy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to approve action: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(action)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleSimilarLeads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgID, errResult := stringArg(request, "org_id")
	if errResult != nil {
		return errResult, nil
	}
	query, errResult := stringArg(request, "query")
	if errResult != nil {
		return errResult, nil
	}

	limit := 10
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if n, ok := args["limit"].(float64); ok && n > 0 {
			limit = int(n)
		}
	}

	leads, err := s.dashboard.SimilarLeads(ctx, orgID, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find similar leads: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(leads)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
