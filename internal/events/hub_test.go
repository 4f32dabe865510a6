package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestHubFanOutPerOrg(t *testing.T) {
	h := NewHub()
	a1 := h.Subscribe("org-a")
	a2 := h.Subscribe("org-a")
	b := h.Subscribe("org-b")
	defer h.Unsubscribe("org-a", a1)
	defer h.Unsubscribe("org-a", a2)
	defer h.Unsubscribe("org-b", b)

	h.Publish(Change{Table: "leads", Kind: Inserted, OrgID: "org-a", RowID: "r1", Version: 1})

	assert.Equal(t, "r1", recv(t, a1).RowID)
	assert.Equal(t, "r1", recv(t, a2).RowID)

	select {
	case c := <-b:
		t.Fatalf("org-b subscriber received org-a change: %+v", c)
	default:
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe("org-a")
	defer h.Unsubscribe("org-a", ch)

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(Change{Table: "leads", Kind: Updated, OrgID: "org-a", RowID: "r1", Version: int64(i)})
	}

	// Publish never blocks; the buffer holds the first events and the
	// overflow is gone.
	assert.Len(t, ch, subscriberBuffer)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe("org-a")

	h.Unsubscribe("org-a", ch)
	_, ok := <-ch
	require.False(t, ok)

	// Double unsubscribe must not panic.
	h.Unsubscribe("org-a", ch)

	// Publishing to an org with no subscribers is a no-op.
	h.Publish(Change{Table: "leads", Kind: Deleted, OrgID: "org-a", RowID: "r1", Version: 1})
}
