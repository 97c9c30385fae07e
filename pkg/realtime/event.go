package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Client event types (sent to the server).
const (
	EventTypeSessionUpdate          = "session.update"
	EventTypeInputAudioBufferAppend = "input_audio_buffer.append"
	EventTypeInputAudioBufferCommit = "input_audio_buffer.commit"
	EventTypeInputAudioBufferClear  = "input_audio_buffer.clear"
	EventTypeResponseCreate         = "response.create"
	EventTypeResponseCancel         = "response.cancel"
)

// Server event types (received from the server).
const (
	EventTypeError          = "error"
	EventTypeSessionCreated = "session.created"
	EventTypeSessionUpdated = "session.updated"

	EventTypeResponseCreated = "response.created"
	EventTypeResponseDone    = "response.done"

	EventTypeResponseAudioDelta = "response.audio.delta"
	EventTypeResponseAudioDone  = "response.audio.done"

	EventTypeResponseAudioTranscriptDelta = "response.audio_transcript.delta"
	EventTypeResponseAudioTranscriptDone  = "response.audio_transcript.done"

	EventTypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventTypeInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"
)

// ServerEvent is one event received from the remote side.
type ServerEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitzero"`

	// Session is set on session.created / session.updated.
	Session *SessionResource `json:"session,omitzero"`

	// Delta carries incremental text for *.delta events. For audio delta
	// events it carries base64 audio instead.
	Delta string `json:"delta,omitzero"`

	// Transcript is the full transcript on response.audio_transcript.done.
	Transcript string `json:"transcript,omitzero"`

	// Response is the structured payload of response.done.
	Response *ResponseResource `json:"response,omitzero"`

	// EventErr is the payload of error events.
	EventErr *EventError `json:"error,omitzero"`

	// Audio is the decoded audio for response.audio.delta, populated after
	// parsing.
	Audio []byte `json:"-"`

	// Raw is the original JSON message.
	Raw []byte `json:"-"`
}

type eventOrError struct {
	event *ServerEvent
	err   error
}

// generateEventID generates a unique client event ID.
func generateEventID() string {
	return "evt_" + uuid.New().String()[:12]
}

// parseServerEvent parses a raw message into a ServerEvent, decoding audio
// deltas.
func parseServerEvent(message []byte) (*ServerEvent, error) {
	var event ServerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return nil, fmt.Errorf("realtime: parse event: %w", err)
	}
	event.Raw = message

	if event.Type == EventTypeResponseAudioDelta && event.Delta != "" {
		if decoded, err := base64.StdEncoding.DecodeString(event.Delta); err == nil {
			event.Audio = decoded
		}
	}

	return &event, nil
}

// appendAudioEvent frames base64 audio as an input_audio_buffer.append.
func appendAudioEvent(audioBase64 string) map[string]any {
	return map[string]any{
		"event_id": generateEventID(),
		"type":     EventTypeInputAudioBufferAppend,
		"audio":    audioBase64,
	}
}

// sessionUpdateEvent frames a session configuration update.
func sessionUpdateEvent(config *SessionConfig) map[string]any {
	return map[string]any{
		"event_id": generateEventID(),
		"type":     EventTypeSessionUpdate,
		"session":  config,
	}
}
