// Package events carries row-level change notifications from Postgres to
// in-process subscribers, the SSE endpoint, and the optional Kafka relay.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Kind is the type of row change. Consumers must handle all three.
type Kind string

const (
	Inserted Kind = "inserted"
	Updated  Kind = "updated"
	Deleted  Kind = "deleted"
)

// Channel is the Postgres NOTIFY channel all change triggers publish to.
const Channel = "opsboard_changes"

// Change is one row-level change. The payload carries identifiers only;
// consumers re-fetch rows they care about.
type Change struct {
	Table   string `json:"table"`
	Kind    Kind   `json:"kind"`
	OrgID   string `json:"org_id"`
	RowID   string `json:"row_id"`
	Version int64  `json:"version"`
}

// Decode parses a NOTIFY payload into a Change.
func Decode(payload []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(payload, &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	switch c.Kind {
	case Inserted, Updated, Deleted:
	default:
		return Change{}, fmt.Errorf("decode change: unknown kind %q", c.Kind)
	}
	if c.Table == "" || c.OrgID == "" || c.RowID == "" {
		return Change{}, fmt.Errorf("decode change: missing table, org_id or row_id")
	}
	return c, nil
}

// VersionGate tracks the highest version seen per row and discards stale
// events, so consumers that reconcile by re-fetching never apply an older
// state over a newer one. Deleted events are always admitted: the delete
// trigger reports the row's last version, which the gate has usually
// already seen.
type VersionGate struct {
	mu   sync.Mutex
	seen map[string]int64
}

// NewVersionGate returns an empty gate.
func NewVersionGate() *VersionGate {
	return &VersionGate{seen: make(map[string]int64)}
}

// Admit reports whether the change is newer than anything seen for its row,
// recording it if so. Deleted changes are admitted unconditionally and clear
// the row's entry.
func (g *VersionGate) Admit(c Change) bool {
	key := c.Table + "/" + c.RowID
	g.mu.Lock()
	defer g.mu.Unlock()
	if c.Kind == Deleted {
		delete(g.seen, key)
		return true
	}
	if last, ok := g.seen[key]; ok && c.Version <= last {
		return false
	}
	g.seen[key] = c.Version
	return true
}
