package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v3"
)

// WebRTCSession is a WebRTC-based realtime session. The peer connection
// carries audio tracks; a single data channel carries control and event
// messages.
type WebRTCSession struct {
	pc       *webrtc.PeerConnection
	dc       *webrtc.DataChannel
	config   *ConnectConfig
	creds    *SessionCredentials
	closeCh  chan struct{}
	readyCh  chan struct{}
	eventsCh chan eventOrError

	closeOnce sync.Once
	readyOnce sync.Once

	mu          sync.Mutex
	state       State
	sessionID   string
	remoteTrack *webrtc.TrackRemote
	localTrack  *webrtc.TrackLocalStaticSample
}

// ConnectWebRTC establishes a WebRTC session: mints the ephemeral
// credential, negotiates SDP, and configures the session as soon as the
// data channel opens. The returned session is not ready for audio until
// Ready is closed.
func (c *Client) ConnectWebRTC(ctx context.Context, config *ConnectConfig) (*WebRTCSession, error) {
	if config == nil {
		config = &ConnectConfig{}
	}

	session := &WebRTCSession{
		config:   config,
		closeCh:  make(chan struct{}),
		readyCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 100),
		state:    StateConnecting,
	}

	creds, err := c.CreateSession(ctx, config)
	if err != nil {
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: create session: %w", err)
	}
	session.creds = creds
	session.sessionID = creds.SessionID

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	})
	if err != nil {
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: create peer connection: %w", err)
	}
	session.pc = pc

	_, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	})
	if err != nil {
		pc.Close()
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: add audio transceiver: %w", err)
	}

	dc, err := pc.CreateDataChannel("events", nil)
	if err != nil {
		pc.Close()
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: create data channel: %w", err)
	}
	session.dc = dc

	dc.OnOpen(func() {
		slog.Debug("data channel opened", "session", session.SessionID())
		// The session configuration must reach the server before the first
		// audio frame; Ready is only signalled once it has been sent.
		if err := session.UpdateSession(defaultSessionConfig(config)); err != nil {
			session.fail(fmt.Errorf("realtime: send session config: %w", err))
			return
		}
		session.setState(StateConnected)
		session.readyOnce.Do(func() { close(session.readyCh) })
	})

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		session.deliver(msg.Data)
	})

	dc.OnClose(func() {
		slog.Debug("data channel closed", "session", session.SessionID())
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		slog.Debug("received remote track", "kind", track.Kind(), "codec", track.Codec().MimeType)
		if track.Kind() == webrtc.RTPCodecTypeAudio {
			session.mu.Lock()
			session.remoteTrack = track
			session.mu.Unlock()
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: set local description: %w", err)
	}

	// Wait for ICE gathering so the offer carries all candidates.
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		pc.Close()
		session.setState(StateError)
		return nil, ctx.Err()
	}

	answer, err := c.exchangeSDP(ctx, creds, config.Model, pc.LocalDescription().SDP)
	if err != nil {
		pc.Close()
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: exchange SDP: %w", err)
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		pc.Close()
		session.setState(StateError)
		return nil, fmt.Errorf("realtime: set remote description: %w", err)
	}

	return session, nil
}

// deliver parses a raw message and pushes it onto the events channel.
func (s *WebRTCSession) deliver(data []byte) {
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

func (s *WebRTCSession) push(item eventOrError) {
	select {
	case <-s.closeCh:
	case s.eventsCh <- item:
	}
}

// Ready is closed once the data channel is open and the session
// configuration has been sent. Audio must not be appended before then.
func (s *WebRTCSession) Ready() <-chan struct{} {
	return s.readyCh
}

// State returns the current session state.
func (s *WebRTCSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *WebRTCSession) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// fail records an error state and surfaces the error to the event stream.
func (s *WebRTCSession) fail(err error) {
	s.setState(StateError)
	s.push(eventOrError{err: err})
}

// SessionID returns the session ID assigned by the broker.
func (s *WebRTCSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// UpdateSession sends a session.update with the given configuration.
func (s *WebRTCSession) UpdateSession(config *SessionConfig) error {
	return s.sendEvent(sessionUpdateEvent(config))
}

// AppendAudio appends raw PCM16 audio to the input buffer. The data is
// base64 encoded and framed as an input_audio_buffer.append event.
func (s *WebRTCSession) AppendAudio(audio []byte) error {
	return s.AppendAudioBase64(base64.StdEncoding.EncodeToString(audio))
}

// AppendAudioBase64 appends base64-encoded audio to the input buffer.
func (s *WebRTCSession) AppendAudioBase64(audioBase64 string) error {
	return s.sendEvent(appendAudioEvent(audioBase64))
}

// AudioTrack returns the remote audio track, or nil if none has arrived.
func (s *WebRTCSession) AudioTrack() *webrtc.TrackRemote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteTrack
}

// AddAudioTrack attaches a local microphone track to the peer connection.
func (s *WebRTCSession) AddAudioTrack(track *webrtc.TrackLocalStaticSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.localTrack != nil {
		return fmt.Errorf("realtime: local audio track already added")
	}
	if _, err := s.pc.AddTrack(track); err != nil {
		return err
	}
	s.localTrack = track
	return nil
}

// Events returns an iterator over server events. Iteration ends when the
// session closes or after an error is yielded.
func (s *WebRTCSession) Events() iter.Seq2[*ServerEvent, error] {
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

// Close tears the session down: data channel first, then the peer
// connection, which stops all media senders and releases the microphone
// track. Close is idempotent and safe to call from multiple triggers
// concurrently.
func (s *WebRTCSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		if s.dc != nil {
			s.dc.Close()
		}
		if s.pc != nil {
			err = s.pc.Close()
		}
		s.setState(StateIdle)
	})
	return err
}

// sendEvent sends a JSON event over the data channel.
func (s *WebRTCSession) sendEvent(event map[string]any) error {
	if s.dc == nil || s.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return fmt.Errorf("realtime: data channel not ready")
	}
	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.dc.Send(jsonBytes)
}
