package realtime

import "time"

// Audio formats on the wire.
const (
	// AudioFormatPCM16 is 16-bit PCM at 24kHz, mono, little-endian.
	AudioFormatPCM16 = "pcm16"
)

// Voice options for audio output.
const (
	VoiceAlloy   = "alloy"
	VoiceEcho    = "echo"
	VoiceSage    = "sage"
	VoiceShimmer = "shimmer"
	VoiceVerse   = "verse"
)

// Modality types.
const (
	ModalityText  = "text"
	ModalityAudio = "audio"
)

// DefaultHandshakeTimeout bounds session creation and the SDP exchange.
// The upstream service imposes no timeout of its own, so an unbounded wait
// here would hang the connect call indefinitely.
const DefaultHandshakeTimeout = 15 * time.Second

// ConnectConfig configures a new realtime session.
type ConnectConfig struct {
	// Model is the realtime model ID. Defaults to the broker's default.
	Model string `json:"model,omitzero"`

	// Voice is the voice for audio output. Default: alloy.
	Voice string `json:"voice,omitzero"`

	// Instructions is the system prompt for the voice assistant.
	Instructions string `json:"instructions,omitzero"`
}

// SessionCredentials is the short-lived credential pair minted by the voice
// broker. It is single-use: one credential authorizes exactly one SDP
// exchange, and it is never persisted.
type SessionCredentials struct {
	SessionID    string
	ClientSecret string
}

// TurnDetection configures server-side voice activity detection.
type TurnDetection struct {
	Type              string  `json:"type,omitzero"`
	Threshold         float64 `json:"threshold,omitzero"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitzero"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitzero"`
}

// SessionConfig is the session.update payload. It must reach the remote
// side before the first audio frame, or the server has no turn-detection
// configuration.
type SessionConfig struct {
	Modalities        []string       `json:"modalities,omitzero"`
	Instructions      string         `json:"instructions,omitzero"`
	Voice             string         `json:"voice,omitzero"`
	InputAudioFormat  string         `json:"input_audio_format,omitzero"`
	OutputAudioFormat string         `json:"output_audio_format,omitzero"`
	TurnDetection     *TurnDetection `json:"turn_detection,omitzero"`
}

// defaultSessionConfig is the configuration sent on data-channel open.
func defaultSessionConfig(cfg *ConnectConfig) *SessionConfig {
	return &SessionConfig{
		Modalities:        []string{ModalityAudio, ModalityText},
		Instructions:      cfg.Instructions,
		Voice:             cfg.Voice,
		InputAudioFormat:  AudioFormatPCM16,
		OutputAudioFormat: AudioFormatPCM16,
		TurnDetection: &TurnDetection{
			Type:              "server_vad",
			Threshold:         0.5,
			PrefixPaddingMs:   300,
			SilenceDurationMs: 500,
		},
	}
}

// ConversationItem is an item inside a completed response payload.
type ConversationItem struct {
	ID      string        `json:"id,omitzero"`
	Type    string        `json:"type,omitzero"`
	Role    string        `json:"role,omitzero"`
	Content []ContentPart `json:"content,omitzero"`
}

// ContentPart is one part of an item's content. Text may arrive either as a
// text part or as the transcript of an audio part.
type ContentPart struct {
	Type       string `json:"type,omitzero"`
	Text       string `json:"text,omitzero"`
	Transcript string `json:"transcript,omitzero"`
}

// ResponseResource is the structured payload of a response.done event.
type ResponseResource struct {
	ID     string             `json:"id,omitzero"`
	Status string             `json:"status,omitzero"`
	Output []ConversationItem `json:"output,omitzero"`
}

// SessionResource is the session state echoed by the server.
type SessionResource struct {
	ID    string `json:"id,omitzero"`
	Model string `json:"model,omitzero"`
	Voice string `json:"voice,omitzero"`
}
