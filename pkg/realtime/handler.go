package realtime

import (
	"log/slog"
	"strings"
)

// Callbacks receive the interpreted event stream. All fields are optional;
// a nil callback drops that signal. Callbacks run on the event-consuming
// goroutine and must not block.
type Callbacks struct {
	// OnTranscriptDelta fires for each incremental transcript fragment.
	OnTranscriptDelta func(delta string)

	// OnTranscript fires once per response with the full assistant
	// transcript, after trip data has been stripped out.
	OnTranscript func(text string)

	// OnTripData fires when a response carried embedded trip JSON.
	OnTripData func(data *TripData)

	// OnAudio fires for each decoded audio chunk.
	OnAudio func(pcm []byte)

	// OnAssistantDone fires when the assistant has finished speaking for
	// the current response.
	OnAssistantDone func()

	// OnSpeechStarted fires when server VAD detects the user speaking.
	OnSpeechStarted func()

	// OnSpeechStopped fires when server VAD detects the user going quiet.
	OnSpeechStopped func()

	// OnError fires for stream-level errors.
	OnError func(err error)
}

// Handler reassembles assistant responses from the raw event stream. It
// accumulates transcript deltas, surfaces the full text as soon as the
// transcript completes (with response.done as the fallback for text-only
// sessions), and splits out any embedded trip data.
type Handler struct {
	callbacks Callbacks
	log       *slog.Logger

	transcript strings.Builder
	emitted    bool
}

// NewHandler creates a Handler with the given callbacks.
func NewHandler(callbacks Callbacks) *Handler {
	return &Handler{
		callbacks: callbacks,
		log:       slog.Default(),
	}
}

// Handle processes one server event. It is not safe for concurrent use;
// feed it from a single event loop.
func (h *Handler) Handle(event *ServerEvent) {
	switch event.Type {
	case EventTypeResponseAudioTranscriptDelta:
		h.transcript.WriteString(event.Delta)
		if h.callbacks.OnTranscriptDelta != nil {
			h.callbacks.OnTranscriptDelta(event.Delta)
		}

	case EventTypeResponseAudioTranscriptDone:
		// The done event carries the authoritative transcript; prefer it
		// over the accumulated deltas when present.
		if event.Transcript != "" {
			h.transcript.Reset()
			h.transcript.WriteString(event.Transcript)
		}
		if text := h.transcript.String(); text != "" {
			h.transcript.Reset()
			h.emitted = true
			h.deliver(text)
		}

	case EventTypeResponseAudioDelta:
		if h.callbacks.OnAudio != nil && len(event.Audio) > 0 {
			h.callbacks.OnAudio(event.Audio)
		}

	case EventTypeResponseAudioDone:
		if h.callbacks.OnAssistantDone != nil {
			h.callbacks.OnAssistantDone()
		}

	case EventTypeResponseDone:
		h.finishResponse(event.Response)

	case EventTypeInputAudioBufferSpeechStarted:
		if h.callbacks.OnSpeechStarted != nil {
			h.callbacks.OnSpeechStarted()
		}

	case EventTypeInputAudioBufferSpeechStopped:
		if h.callbacks.OnSpeechStopped != nil {
			h.callbacks.OnSpeechStopped()
		}

	case EventTypeError:
		if event.EventErr != nil && h.callbacks.OnError != nil {
			h.callbacks.OnError(event.EventErr.ToError())
		}
	}
}

// HandleError forwards a stream-level error to the error callback.
func (h *Handler) HandleError(err error) {
	if h.callbacks.OnError != nil {
		h.callbacks.OnError(err)
	}
}

// finishResponse closes the response cycle. When transcript.done already
// surfaced the text this just resets for the next cycle; otherwise it
// emits whatever accumulated, falling back to the structured output for
// text-only sessions.
func (h *Handler) finishResponse(resp *ResponseResource) {
	if h.emitted {
		h.emitted = false
		h.transcript.Reset()
		return
	}

	text := h.transcript.String()
	h.transcript.Reset()
	if text == "" && resp != nil {
		text = responseText(resp)
	}
	if text == "" {
		return
	}
	h.deliver(text)
}

// deliver splits trip data out of the finished text and fires the
// callbacks.
func (h *Handler) deliver(text string) {
	if data, cleaned, ok := ExtractTripData(text); ok {
		h.log.Debug("extracted trip data from response", "trips", len(data.Trips))
		if h.callbacks.OnTripData != nil {
			h.callbacks.OnTripData(data)
		}
		text = cleaned
	}

	if text != "" && h.callbacks.OnTranscript != nil {
		h.callbacks.OnTranscript(text)
	}
}

// responseText flattens the output items of a completed response.
func responseText(resp *ResponseResource) string {
	var b strings.Builder
	for _, item := range resp.Output {
		for _, part := range item.Content {
			switch part.Type {
			case "text":
				b.WriteString(part.Text)
			case "audio":
				b.WriteString(part.Transcript)
			}
		}
	}
	return b.String()
}
