package agents

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
)

// Agent is a single specialized responder: one request in, one response out,
// no shared state between calls.
type Agent interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// RouteTrace observes routing decisions. Used by tests and observability
// sinks; routing behavior does not depend on it.
type RouteTrace func(role Role, reason string)

// Manager routes each conversation turn to one of the four responders.
// It is stateless: all routing inputs come from the request itself.
type Manager struct {
	triage    Agent
	search    Agent
	knowledge Agent
	account   Agent
	trace     RouteTrace
	log       *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithAgent replaces the responder for a role. Unknown roles are ignored.
func WithAgent(role Role, agent Agent) ManagerOption {
	return func(m *Manager) {
		switch role {
		case RoleTriage:
			m.triage = agent
		case RoleSearch:
			m.search = agent
		case RoleKnowledge:
			m.knowledge = agent
		case RoleAccount:
			m.account = agent
		}
	}
}

// WithRouteTrace installs a hook observing every routing decision.
func WithRouteTrace(trace RouteTrace) ManagerOption {
	return func(m *Manager) {
		m.trace = trace
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager creates a Manager with the default responders.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		triage:    &TriageAgent{},
		search:    &SearchAgent{},
		knowledge: &KnowledgeAgent{},
		account:   &AccountAgent{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle picks a responder for the request and returns its response. Errors
// from responders are never propagated: they degrade into an apology tagged
// with the failing role plus a forced handoff to knowledge, so the
// conversation always gets a usable reply.
func (m *Manager) Handle(ctx context.Context, req *Request) *Response {
	role, reason := m.resolve(req)

	m.log.Info("routing conversation turn", "role", role, "reason", reason)
	if m.trace != nil {
		m.trace(role, reason)
	}

	resp, err := m.dispatch(ctx, role, req)
	if err != nil {
		m.log.Warn("agent call failed, degrading", "role", role, "error", err)
		return degradedResponse(role)
	}
	return resp
}

// resolve decides the target role for a request.
func (m *Manager) resolve(req *Request) (Role, string) {
	// Cold start: a lone user message always goes to triage.
	if len(req.Messages) == 1 && req.Messages[0].Role == MessageRoleUser {
		return RoleTriage, "cold start"
	}

	// Most recent agent message carrying a handoff wins; its context data is
	// merged into the request so the target agent sees it.
	for i := len(req.Messages) - 1; i >= 0; i-- {
		msg := req.Messages[i]
		if msg.Role != MessageRoleAgent || msg.Metadata == nil || msg.Metadata.Handoff == nil {
			continue
		}
		h := msg.Metadata.Handoff
		if len(h.ContextData) > 0 {
			if req.Context == nil {
				req.Context = make(map[string]any, len(h.ContextData))
			}
			maps.Copy(req.Context, h.ContextData)
		}
		return h.To, "handoff"
	}

	// Sticky-agent fallback: stay with whichever agent last spoke.
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].AgentRole != "" {
			return req.Messages[i].AgentRole, "sticky"
		}
	}

	return RoleTriage, "default"
}

// dispatch is an exhaustive switch over the closed role enumeration.
func (m *Manager) dispatch(ctx context.Context, role Role, req *Request) (*Response, error) {
	switch role {
	case RoleTriage:
		return m.triage.Handle(ctx, req)
	case RoleSearch:
		return m.search.Handle(ctx, req)
	case RoleKnowledge:
		return m.knowledge.Handle(ctx, req)
	case RoleAccount:
		return m.account.Handle(ctx, req)
	default:
		return nil, &ErrUnknownRole{Role: role}
	}
}

// degradedResponse is the safety net for responder failures: apologize on
// behalf of the failing role and hand the conversation to knowledge, the
// lowest-failure-rate responder.
func degradedResponse(role Role) *Response {
	return &Response{
		Message: NewAgentMessage(role,
			fmt.Sprintf("Sorry, the %s assistant ran into a problem handling that. Let me find another way to help.", string(role))),
		Handoff: &Handoff{
			To:     RoleKnowledge,
			Reason: "Error in agent processing",
		},
	}
}
