package agents

import (
	"context"
	"strings"
)

// TriageAgent classifies intent from the latest user message and always
// hands off; it never produces a terminal answer.
type TriageAgent struct{}

var (
	searchIntentKeywords  = []string{"find", "search", "look for", "discover", "recommend"}
	accountIntentKeywords = []string{"book", "reserve", "my account", "my trip", "my booking"}
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Handle inspects only the most recent user message. Search-intent keywords
// are checked before account-intent keywords, so a message matching both
// buckets routes to search.
func (a *TriageAgent) Handle(ctx context.Context, req *Request) (*Response, error) {
	query := ""
	if msg, ok := req.LatestUserMessage(); ok {
		query = msg.Content
	}
	lower := strings.ToLower(query)

	switch {
	case containsAny(lower, searchIntentKeywords):
		return &Response{
			Message: NewAgentMessage(RoleTriage, "Let me find some adventure options for you."),
			Handoff: &Handoff{
				To:     RoleSearch,
				Reason: "Search intent detected",
				ContextData: map[string]any{
					"query":      query,
					"searchType": "adventure",
				},
			},
		}, nil
	case containsAny(lower, accountIntentKeywords):
		intent := "account_info"
		if strings.Contains(lower, "book") {
			intent = "booking"
		}
		return &Response{
			Message: NewAgentMessage(RoleTriage, "I'll connect you with your account and bookings."),
			Handoff: &Handoff{
				To:     RoleAccount,
				Reason: "Account intent detected",
				ContextData: map[string]any{
					"intent": intent,
				},
			},
		}, nil
	default:
		return &Response{
			Message: NewAgentMessage(RoleTriage, "Let me get you some information on that."),
			Handoff: &Handoff{
				To:     RoleKnowledge,
				Reason: "General question",
				ContextData: map[string]any{
					"query": query,
				},
			},
		}, nil
	}
}
