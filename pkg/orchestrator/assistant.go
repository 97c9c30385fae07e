package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ContentPart is one typed part of an assistant reply. Only parts with type
// "text" contribute to the reply text.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply is the assistant backend's answer to one message.
type Reply struct {
	Parts    []ContentPart  `json:"parts"`
	TripData map[string]any `json:"trip_data,omitzero"`
}

// Text concatenates the text parts in order.
func (r *Reply) Text() string {
	var b strings.Builder
	for _, part := range r.Parts {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// Assistant is the thread-based conversation backend. A thread is a
// backend-side handle that keeps context across turns.
type Assistant interface {
	// CreateThread opens a new conversation thread and returns its ID.
	CreateThread(ctx context.Context) (string, error)

	// PostMessage sends a user message to the thread and returns the reply.
	PostMessage(ctx context.Context, threadID, message string) (*Reply, error)

	// Handoff escalates the thread to the research backend and returns its
	// first reply.
	Handoff(ctx context.Context, threadID string) (*Reply, error)
}

// HTTPAssistant talks to the assistant backend over plain HTTP/JSON.
type HTTPAssistant struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAssistant creates an Assistant client for the given base URL.
// Pass nil to use http.DefaultClient.
func NewHTTPAssistant(baseURL string, httpClient *http.Client) *HTTPAssistant {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPAssistant{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// wire shapes for the backend API. Text content arrives as a list of typed
// parts; only type=="text" parts carry a value.
type wireReply struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"message"`
	TripData map[string]any `json:"tripData,omitzero"`
}

func (w *wireReply) toReply() *Reply {
	reply := &Reply{TripData: w.TripData}
	for _, c := range w.Message.Content {
		reply.Parts = append(reply.Parts, ContentPart{Type: c.Type, Text: c.Text.Value})
	}
	return reply
}

func (a *HTTPAssistant) CreateThread(ctx context.Context) (string, error) {
	var out struct {
		ThreadID string `json:"threadId"`
	}
	if err := a.post(ctx, "/threads", nil, &out); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	if out.ThreadID == "" {
		return "", fmt.Errorf("create thread: backend returned empty thread id")
	}
	return out.ThreadID, nil
}

func (a *HTTPAssistant) PostMessage(ctx context.Context, threadID, message string) (*Reply, error) {
	body := map[string]string{"message": message}
	var out wireReply
	if err := a.post(ctx, "/threads/"+threadID+"/messages", body, &out); err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}
	return out.toReply(), nil
}

func (a *HTTPAssistant) Handoff(ctx context.Context, threadID string) (*Reply, error) {
	var out wireReply
	if err := a.post(ctx, "/threads/"+threadID+"/handoff", nil, &out); err != nil {
		return nil, fmt.Errorf("handoff: %w", err)
	}
	return out.toReply(), nil
}

func (a *HTTPAssistant) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(data))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
