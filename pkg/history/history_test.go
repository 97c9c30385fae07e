package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/trailmind/trailmind/pkg/agents"
	"github.com/trailmind/trailmind/pkg/history"
	"github.com/trailmind/trailmind/pkg/kv"
)

func newStore(t *testing.T) *history.Store {
	t.Helper()
	return history.New(kv.NewMemory())
}

func TestAppendAndMessagesOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	base := time.Now()
	first := agents.NewUserMessage("find trails near Moab")
	first.Timestamp = base
	second := agents.NewAgentMessage(agents.RoleSearch, "Searching for trails near Moab.")
	second.Timestamp = base.Add(time.Second)
	third := agents.NewUserMessage("something easier please")
	third.Timestamp = base.Add(2 * time.Second)

	// Append out of order; reads must still come back chronological.
	if err := store.Append(ctx, "u1", third, first, second); err != nil {
		t.Fatalf("Append: %v", err)
	}

	msgs, err := store.Messages(ctx, "u1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	if msgs[0].ID != first.ID || msgs[1].ID != second.ID || msgs[2].ID != third.ID {
		t.Errorf("order = %s, %s, %s", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
	if msgs[1].AgentRole != agents.RoleSearch {
		t.Errorf("agent role = %q, want search", msgs[1].AgentRole)
	}
}

func TestMessagesRoundTripMetadata(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	msg := agents.NewAgentMessage(agents.RoleTriage, "Handing you to search.")
	msg.Metadata = &agents.Metadata{
		Handoff: &agents.Handoff{
			To:          agents.RoleSearch,
			Reason:      "Search intent detected",
			ContextData: map[string]any{"query": "trails near Moab"},
		},
	}

	if err := store.Append(ctx, "u1", msg); err != nil {
		t.Fatalf("Append: %v", err)
	}
	msgs, err := store.Messages(ctx, "u1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}

	got := msgs[0]
	if got.Metadata == nil || got.Metadata.Handoff == nil {
		t.Fatal("handoff metadata lost")
	}
	if got.Metadata.Handoff.To != agents.RoleSearch {
		t.Errorf("handoff to = %q", got.Metadata.Handoff.To)
	}
	if got.Metadata.Handoff.ContextData["query"] != "trails near Moab" {
		t.Errorf("context = %v", got.Metadata.Handoff.ContextData)
	}
}

func TestMessagesIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	store.Append(ctx, "u1", agents.NewUserMessage("hello from u1"))
	store.Append(ctx, "u2", agents.NewUserMessage("hello from u2"))

	msgs, err := store.Messages(ctx, "u1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello from u1" {
		t.Errorf("u1 messages = %v", msgs)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	store.Append(ctx, "u1", agents.NewUserMessage("one"), agents.NewUserMessage("two"))
	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	msgs, err := store.Messages(ctx, "u1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages after clear = %d, want 0", len(msgs))
	}
}

func TestSaveAndListTrips(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	id, err := store.SaveTrip(ctx, "u1", map[string]any{
		"title":       "Yosemite Weekend",
		"destination": "Yosemite",
	})
	if err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	if id == "" {
		t.Fatal("empty trip ID")
	}

	trips, err := store.SavedTrips(ctx, "u1")
	if err != nil {
		t.Fatalf("SavedTrips: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("trips = %d, want 1", len(trips))
	}
	if trips[0].ID != id {
		t.Errorf("trip ID = %q, want %q", trips[0].ID, id)
	}
	if trips[0].Data["destination"] != "Yosemite" {
		t.Errorf("trip data = %v", trips[0].Data)
	}

	if err := store.DeleteTrip(ctx, "u1", id); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	trips, _ = store.SavedTrips(ctx, "u1")
	if len(trips) != 0 {
		t.Errorf("trips after delete = %d, want 0", len(trips))
	}
}
