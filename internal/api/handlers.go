package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"opsboard/internal/repository"
	"opsboard/internal/tenancy"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK)
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "opsboard",
		Version:   "1.0.0",
	}
	writeJSON(w, http.StatusOK, status)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error but can't change response at this point
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// ErrorHandler renders every echo error as an RFC 7807 Problem Details
// document. Install it as the echo HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	status := http.StatusInternalServerError
	detail := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		}
	}
	if c.Response().Committed {
		return
	}
	problem := ProblemDetails{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	c.Response().WriteHeader(status)
	_ = json.NewEncoder(c.Response()).Encode(problem)
}

// orgID pulls the resolved organization out of the request context. Every
// handler calls this before touching the store; no org means no queries.
func orgID(c echo.Context) (string, error) {
	id, ok := tenancy.OrgFromContext(c.Request().Context())
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "no organization resolved")
	}
	return id, nil
}

// userEmail returns the authenticated user, falling back to "unknown" so
// mutation audit fields are never empty.
func userEmail(c echo.Context) string {
	user, ok := tenancy.UserFromContext(c.Request().Context())
	if !ok || user == "" {
		return "unknown"
	}
	return user
}

// listOptions builds repository ListOptions from the common query params.
func listOptions(c echo.Context) repository.ListOptions {
	opts := repository.ListOptions{
		Status:  c.QueryParam("status"),
		OrderBy: c.QueryParam("order"),
		Desc:    c.QueryParam("desc") == "true",
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			opts.Limit = n
		}
	}
	return opts
}

// httpError maps repository errors onto HTTP statuses. ErrNotFound covers
// both missing rows and mutations losing a status-guard race.
func httpError(err error) error {
	if err == repository.ErrNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "no matching row")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
