package agents

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies one of the four specialized responders.
type Role string

const (
	RoleTriage    Role = "triage"
	RoleSearch    Role = "search"
	RoleKnowledge Role = "knowledge"
	RoleAccount   Role = "account"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTriage, RoleSearch, RoleKnowledge, RoleAccount:
		return true
	}
	return false
}

// MessageRole is the author of a conversation message.
type MessageRole string

const (
	MessageRoleUser   MessageRole = "user"
	MessageRoleAgent  MessageRole = "agent"
	MessageRoleSystem MessageRole = "system"
)

// Message is a single entry in the conversation history. Messages are
// immutable once appended; insertion order is the only sequencing authority.
type Message struct {
	ID        string      `json:"id" msgpack:"id"`
	Role      MessageRole `json:"role" msgpack:"role"`
	Content   string      `json:"content" msgpack:"content"`
	Timestamp time.Time   `json:"timestamp" msgpack:"timestamp"`

	// AgentRole is set on agent messages to record which responder spoke.
	AgentRole Role `json:"agent_role,omitzero" msgpack:"agent_role,omitempty"`

	// Metadata carries per-message extras, including a handoff directive.
	Metadata *Metadata `json:"metadata,omitzero" msgpack:"metadata,omitempty"`
}

// Metadata holds optional message annotations.
type Metadata struct {
	Handoff *Handoff       `json:"handoff,omitzero" msgpack:"handoff,omitempty"`
	Extra   map[string]any `json:"extra,omitzero" msgpack:"extra,omitempty"`
}

// NewUserMessage creates a user message with a fresh ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:        "msg_" + uuid.New().String()[:12],
		Role:      MessageRoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAgentMessage creates an agent message attributed to the given role.
func NewAgentMessage(role Role, content string) Message {
	return Message{
		ID:        "msg_" + uuid.New().String()[:12],
		Role:      MessageRoleAgent,
		Content:   content,
		Timestamp: time.Now(),
		AgentRole: role,
	}
}

// Handoff asks the caller to route the next turn to a different responder.
type Handoff struct {
	To          Role           `json:"to" msgpack:"to"`
	Reason      string         `json:"reason,omitzero" msgpack:"reason,omitempty"`
	ContextData map[string]any `json:"context_data,omitzero" msgpack:"context_data,omitempty"`
}

// ActionType enumerates the side-effect instructions a responder can emit.
type ActionType string

const (
	ActionSearch     ActionType = "search"
	ActionBook       ActionType = "book"
	ActionSave       ActionType = "save"
	ActionFetchData  ActionType = "fetch_data"
	ActionUserPrompt ActionType = "user_prompt"
)

// Action is a typed instruction for the caller to execute out-of-band.
type Action struct {
	Type    ActionType     `json:"type" msgpack:"type"`
	Payload map[string]any `json:"payload,omitzero" msgpack:"payload,omitempty"`
}

// Request is the input to one routing decision. Context accumulates handoff
// payloads across turns; Messages are caller-owned and append-only.
type Request struct {
	Messages []Message      `json:"messages"`
	UserID   string         `json:"user_id,omitzero"`
	Context  map[string]any `json:"context,omitzero"`
}

// LatestUserMessage returns the most recent user message, or the zero
// Message if none exists.
func (r *Request) LatestUserMessage() (Message, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == MessageRoleUser {
			return r.Messages[i], true
		}
	}
	return Message{}, false
}

// Response is the output of one routing step. A handoff, if present, is a
// request for the caller to re-route; actions are for the caller to execute.
type Response struct {
	Message Message  `json:"message"`
	Handoff *Handoff `json:"handoff,omitzero"`
	Actions []Action `json:"actions,omitzero"`
}

// HistoryMessage returns the response message with the handoff directive
// embedded in its metadata, ready to append to conversation history so a
// later routing pass can see it.
func (r *Response) HistoryMessage() Message {
	msg := r.Message
	if r.Handoff != nil {
		msg.Metadata = &Metadata{Handoff: r.Handoff}
	}
	return msg
}

// ErrUnknownRole is returned when dispatch encounters a role outside the
// closed enumeration.
type ErrUnknownRole struct {
	Role Role
}

func (e *ErrUnknownRole) Error() string {
	return fmt.Sprintf("agents: unknown agent role %q", string(e.Role))
}
