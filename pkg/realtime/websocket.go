package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketSession is a WebSocket-based realtime session. It carries the
// same event protocol as the data channel but without media tracks, which
// makes it the right transport for server-side use where audio already
// arrives as PCM frames.
type WebSocketSession struct {
	conn     *websocket.Conn
	config   *ConnectConfig
	closeCh  chan struct{}
	readyCh  chan struct{}
	eventsCh chan eventOrError

	closeOnce sync.Once
	readyOnce sync.Once

	mu        sync.Mutex
	state     State
	sessionID string
	writeMu   sync.Mutex
}

// ConnectWebSocket establishes a WebSocket session and sends the session
// configuration before returning. Unlike WebRTC there is no media
// negotiation, so the session is ready as soon as the dial completes.
func (c *Client) ConnectWebSocket(ctx context.Context, config *ConnectConfig) (*WebSocketSession, error) {
	if config == nil {
		config = &ConnectConfig{}
	}

	hctx, cancel := c.handshakeContext(ctx)
	defer cancel()

	url := c.config.wsURL
	if config.Model != "" {
		url = fmt.Sprintf("%s?model=%s", url, config.Model)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.config.apiKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := websocket.DefaultDialer.DialContext(hctx, url, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, &Error{
			Code:       "websocket_dial_failed",
			Message:    fmt.Sprintf("failed to dial realtime endpoint: %v", err),
			HTTPStatus: status,
		}
	}

	session := &WebSocketSession{
		conn:     conn,
		config:   config,
		closeCh:  make(chan struct{}),
		readyCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 100),
		state:    StateConnecting,
	}

	if err := session.UpdateSession(defaultSessionConfig(config)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("realtime: send session config: %w", err)
	}
	session.setState(StateConnected)
	session.readyOnce.Do(func() { close(session.readyCh) })

	go session.readLoop()

	return session, nil
}

// readLoop reads messages until the connection closes.
func (s *WebSocketSession) readLoop() {
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closeCh:
				// Close initiated locally; the read error is expected.
			default:
				s.setState(StateError)
				s.push(eventOrError{err: fmt.Errorf("realtime: read message: %w", err)})
			}
			return
		}
		s.deliver(message)
	}
}

func (s *WebSocketSession) deliver(data []byte) {
	event, err := parseServerEvent(data)
	if err != nil {
		s.push(eventOrError{err: err})
		return
	}

	if event.Type == EventTypeSessionCreated && event.Session != nil {
		s.mu.Lock()
		s.sessionID = event.Session.ID
		s.mu.Unlock()
	}

	if event.Type == EventTypeError && event.EventErr != nil {
		s.push(eventOrError{err: event.EventErr.ToError()})
		return
	}

	s.push(eventOrError{event: event})
}

func (s *WebSocketSession) push(item eventOrError) {
	select {
	case <-s.closeCh:
	case s.eventsCh <- item:
	}
}

// Ready is closed once the session configuration has been sent.
func (s *WebSocketSession) Ready() <-chan struct{} {
	return s.readyCh
}

// State returns the current session state.
func (s *WebSocketSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *WebSocketSession) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// SessionID returns the session ID assigned by the server.
func (s *WebSocketSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// UpdateSession sends a session.update with the given configuration.
func (s *WebSocketSession) UpdateSession(config *SessionConfig) error {
	return s.sendEvent(sessionUpdateEvent(config))
}

// AppendAudio appends raw PCM16 audio to the input buffer.
func (s *WebSocketSession) AppendAudio(audio []byte) error {
	return s.AppendAudioBase64(base64.StdEncoding.EncodeToString(audio))
}

// AppendAudioBase64 appends base64-encoded audio to the input buffer.
func (s *WebSocketSession) AppendAudioBase64(audioBase64 string) error {
	return s.sendEvent(appendAudioEvent(audioBase64))
}

// CommitAudio commits the input audio buffer, ending the current turn when
// server VAD is disabled.
func (s *WebSocketSession) CommitAudio() error {
	return s.sendEvent(map[string]any{
		"event_id": generateEventID(),
		"type":     EventTypeInputAudioBufferCommit,
	})
}

// CreateResponse asks the server to generate a response now.
func (s *WebSocketSession) CreateResponse() error {
	return s.sendEvent(map[string]any{
		"event_id": generateEventID(),
		"type":     EventTypeResponseCreate,
	})
}

// Events returns an iterator over server events. Iteration ends when the
// session closes or after an error is yielded.
func (s *WebSocketSession) Events() iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
				}
				if !yield(item.event, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close closes the session. Idempotent.
func (s *WebSocketSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.writeMu.Lock()
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
		s.setState(StateIdle)
	})
	return err
}

// sendEvent sends a JSON event over the WebSocket. Writes are serialized
// because gorilla connections allow only one concurrent writer.
func (s *WebSocketSession) sendEvent(event map[string]any) error {
	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	select {
	case <-s.closeCh:
		return fmt.Errorf("realtime: session closed")
	default:
	}
	return s.conn.WriteMessage(websocket.TextMessage, jsonBytes)
}
