package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBrokerURL is the default HTTP endpoint of the voice broker.
	DefaultBrokerURL = "https://api.openai.com/v1/realtime"

	// DefaultWebSocketURL is the default WebSocket endpoint.
	DefaultWebSocketURL = "wss://api.openai.com/v1/realtime"
)

// Client negotiates realtime sessions with the voice broker: it mints the
// ephemeral credential and performs the SDP exchange. One Client can open
// any number of sessions; each session owns its own connection.
type Client struct {
	config *clientConfig
}

type clientConfig struct {
	apiKey           string
	brokerURL        string
	wsURL            string
	httpClient       *http.Client
	handshakeTimeout time.Duration
}

// Option configures the Client.
type Option func(*clientConfig)

// WithBrokerURL sets the HTTP endpoint used for session creation and SDP
// exchange.
func WithBrokerURL(url string) Option {
	return func(c *clientConfig) { c.brokerURL = url }
}

// WithWebSocketURL sets the WebSocket endpoint.
func WithWebSocketURL(url string) Option {
	return func(c *clientConfig) { c.wsURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithHandshakeTimeout bounds session creation and the SDP exchange.
// Zero disables the bound. Default: DefaultHandshakeTimeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.handshakeTimeout = d }
}

// NewClient creates a voice broker client.
func NewClient(apiKey string, opts ...Option) *Client {
	if apiKey == "" {
		panic("realtime: API key is required")
	}
	cfg := &clientConfig{
		apiKey:           apiKey,
		brokerURL:        DefaultBrokerURL,
		wsURL:            DefaultWebSocketURL,
		httpClient:       http.DefaultClient,
		handshakeTimeout: DefaultHandshakeTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{config: cfg}
}

// handshakeContext applies the configured handshake bound to ctx.
func (c *Client) handshakeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.handshakeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.handshakeTimeout)
}

// sessionResponse is the broker's reply to session creation.
type sessionResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// CreateSession mints an ephemeral session credential from the broker.
func (c *Client) CreateSession(ctx context.Context, config *ConnectConfig) (*SessionCredentials, error) {
	ctx, cancel := c.handshakeContext(ctx)
	defer cancel()

	reqBody := map[string]any{}
	if config.Model != "" {
		reqBody["model"] = config.Model
	}
	if config.Voice != "" {
		reqBody["voice"] = config.Voice
	}
	if config.Instructions != "" {
		reqBody["instructions"] = config.Instructions
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.brokerURL+"/sessions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.config.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, &Error{
			Code:       "session_creation_failed",
			Message:    fmt.Sprintf("failed to create session: %s", string(body)),
			HTTPStatus: resp.StatusCode,
		}
	}

	var out sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ClientSecret.Value == "" {
		return nil, &Error{
			Code:    "session_creation_failed",
			Message: "broker returned no client secret",
		}
	}

	return &SessionCredentials{
		SessionID:    out.ID,
		ClientSecret: out.ClientSecret.Value,
	}, nil
}

// exchangeSDP trades a local SDP offer for the remote answer, using the
// ephemeral client secret as the bearer credential.
func (c *Client) exchangeSDP(ctx context.Context, creds *SessionCredentials, model, offerSDP string) (string, error) {
	ctx, cancel := c.handshakeContext(ctx)
	defer cancel()

	url := c.config.brokerURL
	if model != "" {
		url = fmt.Sprintf("%s?model=%s", url, model)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(offerSDP)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+creds.ClientSecret)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := c.config.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &Error{
			Code:       "sdp_exchange_failed",
			Message:    fmt.Sprintf("failed to exchange SDP: %s", string(body)),
			HTTPStatus: resp.StatusCode,
		}
	}

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(answer), nil
}
