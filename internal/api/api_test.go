package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsboard/internal/events"
	"opsboard/internal/repository"
	"opsboard/internal/services"
	"opsboard/internal/tenancy"
	"opsboard/pkg/models"
)

// fakeStore counts calls so tests can assert that unauthenticated requests
// never reach the store.
type fakeStore struct {
	repository.Store

	calls   int
	tasks   []*models.ExecutionTask
	actions map[string]*models.AutonomousAction
}

func (f *fakeStore) ListExecutionTasks(ctx context.Context, orgID string, opts repository.ListOptions) ([]*models.ExecutionTask, error) {
	f.calls++
	return f.tasks, nil
}

func (f *fakeStore) ApproveAutonomousAction(ctx context.Context, orgID, id, decidedBy string) (*models.AutonomousAction, error) {
	f.calls++
	a, ok := f.actions[orgID+"/"+id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	decided := decidedBy
	a.Status = models.ActionStatusApproved
	a.DecidedBy = &decided
	a.Version++
	return a, nil
}

func newTestServer(store repository.Store) (*echo.Echo, *Server) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	srv := NewServer(store, services.NewDashboardService(store, nil), services.NewMutationService(store), events.NewHub())
	srv.RegisterRoutes(e.Group("/api/v1"))
	return e, srv
}

// withOrg simulates the auth middleware for one request.
func withOrg(req *http.Request, orgID, user string) *http.Request {
	ctx := tenancy.WithOrg(req.Context(), orgID)
	ctx = tenancy.WithUser(ctx, user)
	return req.WithContext(ctx)
}

func TestHandlersRejectUnresolvedOrg(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestServer(store)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/tasks"},
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodGet, "/api/v1/stream"},
		{http.MethodPost, "/api/v1/actions/a1/approve"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
	assert.Equal(t, 0, store.calls, "no store call may happen without an org")
}

func TestListTasks(t *testing.T) {
	store := &fakeStore{
		tasks: []*models.ExecutionTask{{ID: "t1", OrgID: "org-1", Status: models.TaskStatusCompleted}},
	}
	e, _ := newTestServer(store)

	req := withOrg(httptest.NewRequest(http.MethodGet, "/api/v1/tasks?status=completed&limit=5", nil), "org-1", "user@acme.test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []*models.ExecutionTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestApproveActionReturnsAuthoritativeRow(t *testing.T) {
	store := &fakeStore{
		actions: map[string]*models.AutonomousAction{
			"org-1/a1": {ID: "a1", OrgID: "org-1", Status: models.ActionStatusPending, Version: 1},
		},
	}
	e, _ := newTestServer(store)

	req := withOrg(httptest.NewRequest(http.MethodPost, "/api/v1/actions/a1/approve", nil), "org-1", "ops@acme.test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.AutonomousAction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, models.ActionStatusApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.Equal(t, "ops@acme.test", *got.DecidedBy)
	assert.Equal(t, int64(2), got.Version)
}

func TestApproveActionNotFound(t *testing.T) {
	store := &fakeStore{actions: map[string]*models.AutonomousAction{}}
	e, _ := newTestServer(store)

	req := withOrg(httptest.NewRequest(http.MethodPost, "/api/v1/actions/missing/approve", nil), "org-1", "ops@acme.test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get(echo.HeaderContentType))
}

func TestScheduleContentRequiresBody(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestServer(store)

	req := withOrg(httptest.NewRequest(http.MethodPost, "/api/v1/content/c1/schedule", strings.NewReader(`{}`)), "org-1", "ops@acme.test")
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, store.calls)
}

func TestStreamDeliversOrgChanges(t *testing.T) {
	store := &fakeStore{}
	e, srv := newTestServer(store)

	// Simulate the auth middleware on the live server.
	e.Pre(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(withOrg(c.Request(), "org-1", "user@acme.test"))
			return next(c)
		}
	})

	ts := httptest.NewServer(e)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/stream?tables=leads", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Wait for the subscription before publishing.
	lines := streamLines(resp.Body)
	requireLine(t, ctx, lines, `"type":"connected"`)

	srv.Hub.Publish(events.Change{Table: "leads", Kind: events.Inserted, OrgID: "org-1", RowID: "l1", Version: 1})
	// A change on a filtered-out table must not appear; a later lead change
	// arriving means the tasks one was skipped.
	srv.Hub.Publish(events.Change{Table: "execution_tasks", Kind: events.Updated, OrgID: "org-1", RowID: "t1", Version: 2})
	srv.Hub.Publish(events.Change{Table: "leads", Kind: events.Deleted, OrgID: "org-1", RowID: "l1", Version: 1})

	requireLine(t, ctx, lines, `"row_id":"l1"`)
	requireLine(t, ctx, lines, "event: deleted")
}

// The stream must keep delivering once the server's write deadline window
// has elapsed; each frame write arms a fresh deadline, so a global
// http.Server WriteTimeout set at request start must not cut it off.
func TestStreamOutlivesWriteDeadline(t *testing.T) {
	store := &fakeStore{}
	e, srv := newTestServer(store)

	e.Pre(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(withOrg(c.Request(), "org-1", "user@acme.test"))
			return next(c)
		}
	})

	ts := httptest.NewUnstartedServer(e)
	ts.Config.WriteTimeout = 250 * time.Millisecond
	ts.Start()
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := streamLines(resp.Body)
	requireLine(t, ctx, lines, `"type":"connected"`)

	// Publish only after the deadline set at request start has expired.
	time.Sleep(600 * time.Millisecond)
	srv.Hub.Publish(events.Change{Table: "leads", Kind: events.Updated, OrgID: "org-1", RowID: "l9", Version: 3})

	requireLine(t, ctx, lines, `"row_id":"l9"`)
}

// streamLines feeds each line of an SSE body to a channel, closing it when
// the stream ends.
func streamLines(body io.Reader) <-chan string {
	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func requireLine(t *testing.T, ctx context.Context, lines <-chan string, want string) {
	t.Helper()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before %q", want)
			}
			if strings.Contains(line, want) {
				return
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}
