package agents

import (
	"context"
	"fmt"
	"strings"
)

// SearchAgent turns a constrained query into a search action. It refuses to
// operate on unconstrained queries: with no extracted term it hands off to
// knowledge instead of guessing.
type SearchAgent struct{}

func (a *SearchAgent) Handle(ctx context.Context, req *Request) (*Response, error) {
	query := ""
	if msg, ok := req.LatestUserMessage(); ok {
		query = msg.Content
	}

	terms := ExtractSearchTerms(query)
	if terms.Empty() {
		return &Response{
			Message: NewAgentMessage(RoleSearch,
				"I need a bit more to go on. Could you tell me where you'd like to go, or what kind of activity you're after?"),
			Handoff: &Handoff{
				To:     RoleKnowledge,
				Reason: "Insufficient search parameters",
				ContextData: map[string]any{
					"query": query,
				},
			},
		}, nil
	}

	payload := map[string]any{"query": query}
	if terms.Location != "" {
		payload["location"] = terms.Location
	}
	if terms.Activity != "" {
		payload["activity"] = terms.Activity
	}
	if terms.Duration != nil {
		payload["duration"] = map[string]any{
			"value": terms.Duration.Value,
			"unit":  terms.Duration.Unit,
		}
	}
	if terms.Difficulty != "" {
		payload["difficulty"] = terms.Difficulty
	}

	return &Response{
		Message: NewAgentMessage(RoleSearch, searchAcknowledgment(terms)),
		Actions: []Action{{Type: ActionSearch, Payload: payload}},
	}, nil
}

// searchAcknowledgment builds a human-readable confirmation referencing the
// extracted location and activity when present.
func searchAcknowledgment(terms SearchTerms) string {
	var b strings.Builder
	b.WriteString("Great, I'm on it! Searching for ")
	if terms.Difficulty != "" {
		b.WriteString(terms.Difficulty)
		b.WriteString(" ")
	}
	if terms.Activity != "" {
		b.WriteString(terms.Activity)
		b.WriteString(" adventures")
	} else {
		b.WriteString("adventures")
	}
	if terms.Location != "" {
		fmt.Fprintf(&b, " near %s", terms.Location)
	}
	if terms.Duration != nil {
		unit := terms.Duration.Unit
		if terms.Duration.Value != 1 {
			unit += "s"
		}
		fmt.Fprintf(&b, " for %d %s", terms.Duration.Value, unit)
	}
	b.WriteString(". One moment while I pull together some options.")
	return b.String()
}
