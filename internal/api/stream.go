package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	keepaliveInterval = 30 * time.Second

	// Per-write deadline for stream frames. The stream outlives any global
	// server write timeout, so each write arms its own deadline instead.
	streamWriteTimeout = 10 * time.Second
)

// Stream serves the org's change feed as Server-Sent Events
// (GET /api/v1/stream?tables=leads,execution_tasks)
func (s *Server) Stream(c echo.Context) error {
	org, err := orgID(c)
	if err != nil {
		return err
	}

	var tables map[string]bool
	if raw := c.QueryParam("tables"); raw != "" {
		tables = make(map[string]bool)
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables[t] = true
			}
		}
	}

	w := c.Response()
	rc := http.NewResponseController(w)
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ch := s.Hub.Subscribe(org)
	defer s.Hub.Unsubscribe(org, ch)

	write := func(format string, args ...any) error {
		_ = rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	// Initial ping so clients know the stream is live.
	if err := write("data: %s\n\n", `{"type":"connected"}`); err != nil {
		return nil
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.C:
			// Comment keepalive.
			if err := write(": keepalive\n\n"); err != nil {
				return nil
			}
		case change, ok := <-ch:
			if !ok {
				return nil
			}
			if tables != nil && !tables[change.Table] {
				continue
			}
			payload, err := json.Marshal(change)
			if err != nil {
				continue
			}
			if err := write("event: %s\ndata: %s\n\n", change.Kind, payload); err != nil {
				return nil
			}
		}
	}
}
