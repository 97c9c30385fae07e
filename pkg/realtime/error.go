package realtime

import "fmt"

// Error is a failure reported by the voice broker or the remote side of a
// session.
type Error struct {
	// Type is the error type (e.g. "invalid_request_error").
	Type string `json:"type,omitzero"`

	// Code is the error code (e.g. "session_creation_failed").
	Code string `json:"code,omitzero"`

	// Message is the human-readable error message.
	Message string `json:"message,omitzero"`

	// EventID is the ID of the client event that caused the error, if any.
	EventID string `json:"event_id,omitzero"`

	// HTTPStatus is the HTTP status code, if applicable.
	HTTPStatus int `json:"-"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Code, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("realtime: %s", e.Message)
}

// EventError is the error payload carried by "error" events.
type EventError struct {
	Type    string `json:"type,omitzero"`
	Code    string `json:"code,omitzero"`
	Message string `json:"message,omitzero"`
	EventID string `json:"event_id,omitzero"`
}

// ToError converts an EventError to an Error.
func (e *EventError) ToError() *Error {
	return &Error{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		EventID: e.EventID,
	}
}
