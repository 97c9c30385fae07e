package agents_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/trailmind/trailmind/pkg/agents"
)

// failingAgent always errors, for exercising the degraded-response path.
type failingAgent struct{}

func (failingAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	return nil, errors.New("backend unavailable")
}

// recordingAgent returns a canned response and records the request it saw.
type recordingAgent struct {
	role agents.Role
	last *agents.Request
}

func (a *recordingAgent) Handle(ctx context.Context, req *agents.Request) (*agents.Response, error) {
	a.last = req
	return &agents.Response{Message: agents.NewAgentMessage(a.role, "ok")}, nil
}

func userMsg(content string) agents.Message {
	return agents.NewUserMessage(content)
}

func agentMsg(role agents.Role, handoff *agents.Handoff) agents.Message {
	msg := agents.NewAgentMessage(role, "earlier reply")
	if handoff != nil {
		msg.Metadata = &agents.Metadata{Handoff: handoff}
	}
	return msg
}

func TestManager_ColdStartRoutesToTriage(t *testing.T) {
	var routed agents.Role
	m := agents.NewManager(agents.WithRouteTrace(func(role agents.Role, reason string) {
		routed = role
	}))

	// Content that would otherwise look like an account request.
	resp := m.Handle(context.Background(), &agents.Request{
		Messages: []agents.Message{userMsg("book my trip")},
	})

	if routed != agents.RoleTriage {
		t.Fatalf("routed to %q, want triage", routed)
	}
	if resp.Message.AgentRole != agents.RoleTriage {
		t.Fatalf("response agent role = %q, want triage", resp.Message.AgentRole)
	}
}

func TestManager_HandoffWinsAndMergesContext(t *testing.T) {
	search := &recordingAgent{role: agents.RoleSearch}
	m := agents.NewManager(agents.WithAgent(agents.RoleSearch, search))

	req := &agents.Request{
		Messages: []agents.Message{
			userMsg("find hikes near Lake Tahoe"),
			agentMsg(agents.RoleTriage, &agents.Handoff{
				To:          agents.RoleSearch,
				Reason:      "Search intent detected",
				ContextData: map[string]any{"query": "find hikes near Lake Tahoe", "searchType": "adventure"},
			}),
			userMsg("yes please"),
		},
		Context: map[string]any{"existing": "kept"},
	}
	m.Handle(context.Background(), req)

	if search.last == nil {
		t.Fatal("search agent was not invoked")
	}
	if search.last.Context["existing"] != "kept" {
		t.Errorf("prior context was dropped: %v", search.last.Context)
	}
	if search.last.Context["searchType"] != "adventure" {
		t.Errorf("handoff context data was not merged: %v", search.last.Context)
	}
}

func TestManager_StickyAgentFallback(t *testing.T) {
	account := &recordingAgent{role: agents.RoleAccount}
	m := agents.NewManager(agents.WithAgent(agents.RoleAccount, account))

	// No handoff anywhere, but account spoke last.
	req := &agents.Request{
		Messages: []agents.Message{
			userMsg("what about my bookings"),
			agents.NewAgentMessage(agents.RoleAccount, "here they are"),
			userMsg("and the second one?"),
		},
	}
	m.Handle(context.Background(), req)

	if account.last == nil {
		t.Fatal("conversation did not stay with the account agent")
	}
}

func TestManager_DefaultsToTriage(t *testing.T) {
	var routed agents.Role
	m := agents.NewManager(agents.WithRouteTrace(func(role agents.Role, _ string) { routed = role }))

	m.Handle(context.Background(), &agents.Request{
		Messages: []agents.Message{
			{Role: agents.MessageRoleSystem, Content: "session start"},
			userMsg("hello"),
		},
	})

	if routed != agents.RoleTriage {
		t.Fatalf("routed to %q, want triage", routed)
	}
}

func TestManager_DegradesOnAgentError(t *testing.T) {
	m := agents.NewManager(agents.WithAgent(agents.RoleSearch, failingAgent{}))

	req := &agents.Request{
		Messages: []agents.Message{
			userMsg("find hikes"),
			agentMsg(agents.RoleTriage, &agents.Handoff{To: agents.RoleSearch}),
			userMsg("ok"),
		},
	}
	resp := m.Handle(context.Background(), req)

	if resp.Message.AgentRole != agents.RoleSearch {
		t.Errorf("degraded message agent role = %q, want search", resp.Message.AgentRole)
	}
	if !strings.Contains(resp.Message.Content, "search") {
		t.Errorf("degraded message should mention the failing role: %q", resp.Message.Content)
	}
	if resp.Handoff == nil || resp.Handoff.To != agents.RoleKnowledge {
		t.Errorf("degraded response should hand off to knowledge, got %+v", resp.Handoff)
	}
	if resp.Handoff != nil && resp.Handoff.Reason != "Error in agent processing" {
		t.Errorf("handoff reason = %q", resp.Handoff.Reason)
	}
}

func TestManager_UnknownRoleDegrades(t *testing.T) {
	m := agents.NewManager()

	req := &agents.Request{
		Messages: []agents.Message{
			userMsg("hello"),
			agentMsg(agents.RoleTriage, &agents.Handoff{To: agents.Role("concierge")}),
			userMsg("hi"),
		},
	}
	resp := m.Handle(context.Background(), req)

	if resp.Handoff == nil || resp.Handoff.To != agents.RoleKnowledge {
		t.Fatalf("unknown role should degrade to a knowledge handoff, got %+v", resp.Handoff)
	}
}

func TestManager_RouteTraceFires(t *testing.T) {
	var calls int
	m := agents.NewManager(agents.WithRouteTrace(func(agents.Role, string) { calls++ }))

	m.Handle(context.Background(), &agents.Request{Messages: []agents.Message{userMsg("hi")}})
	if calls != 1 {
		t.Fatalf("route trace fired %d times, want 1", calls)
	}
}

// TestManager_EndToEndFirstTurn follows a full first exchange: triage
// classifies, the caller re-routes, and search emits a search action.
func TestManager_EndToEndFirstTurn(t *testing.T) {
	m := agents.NewManager()
	ctx := context.Background()

	first := userMsg("Find me a weekend hiking trip near Lake Tahoe")
	req := &agents.Request{Messages: []agents.Message{first}}

	triaged := m.Handle(ctx, req)
	if triaged.Handoff == nil || triaged.Handoff.To != agents.RoleSearch {
		t.Fatalf("triage should hand off to search, got %+v", triaged.Handoff)
	}
	if triaged.Handoff.ContextData["searchType"] != "adventure" {
		t.Errorf("handoff context = %v", triaged.Handoff.ContextData)
	}

	// Caller accepts the handoff and routes again.
	req.Messages = append(req.Messages, triaged.HistoryMessage())
	req.Messages = append(req.Messages, userMsg("Find me a weekend hiking trip near Lake Tahoe"))
	resp := m.Handle(ctx, req)

	if resp.Handoff != nil {
		t.Fatalf("search should not hand off for a constrained query: %+v", resp.Handoff)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Type != agents.ActionSearch {
		t.Fatalf("want exactly one search action, got %+v", resp.Actions)
	}
	payload := resp.Actions[0].Payload
	if payload["location"] != "Lake Tahoe" {
		t.Errorf("payload location = %v", payload["location"])
	}
	if payload["activity"] != "hiking" {
		t.Errorf("payload activity = %v", payload["activity"])
	}
	if !strings.Contains(resp.Message.Content, "Lake Tahoe") || !strings.Contains(resp.Message.Content, "hiking") {
		t.Errorf("acknowledgment should mention location and activity: %q", resp.Message.Content)
	}
}
