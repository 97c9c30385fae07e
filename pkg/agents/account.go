package agents

import (
	"context"
	"strings"
)

// AccountAgent handles bookings and saved trips. It never hands off.
type AccountAgent struct{}

var (
	bookingKeywords   = []string{"book", "reserve", "campground"}
	savedTripKeywords = []string{"my trip", "saved trip", "my save", "my account"}
)

func (a *AccountAgent) Handle(ctx context.Context, req *Request) (*Response, error) {
	query := ""
	if msg, ok := req.LatestUserMessage(); ok {
		query = msg.Content
	}
	lower := strings.ToLower(query)

	if containsAny(lower, bookingKeywords) {
		return &Response{
			Message: NewAgentMessage(RoleAccount,
				"I can help you book that. Could you confirm the destination, your dates, and how many people are in your group?"),
			Actions: []Action{{
				Type: ActionUserPrompt,
				Payload: map[string]any{
					"prompt": "booking_details",
					"fields": []string{"destination", "dates", "party_size"},
				},
			}},
		}, nil
	}

	if containsAny(lower, savedTripKeywords) {
		return &Response{
			Message: NewAgentMessage(RoleAccount,
				"Let me pull up your saved trips."),
			Actions: []Action{{
				Type: ActionFetchData,
				Payload: map[string]any{
					"dataType": "saved_trips",
					"userId":   req.UserID,
				},
			}},
		}, nil
	}

	return &Response{
		Message: NewAgentMessage(RoleAccount,
			"I can help with bookings, reservations, and your saved trips. What would you like to do?"),
	}, nil
}
