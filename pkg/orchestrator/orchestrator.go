// Package orchestrator drives the staged trip-planning conversation: a
// lightweight assistant carries the user through welcome and exploring, and
// a heuristic escalates to the heavier research backend once the assistant
// has confirmed the user is ready to see options.
//
// Backend failures never halt the conversation. The first failed call flips
// a one-way latch; from then on every turn degrades to a canned response
// until the user explicitly retries.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/trailmind/trailmind/pkg/agents"
)

// Stage is the conversation stage. Stages only move forward: welcome to
// exploring on the first user turn, exploring to research when the handoff
// heuristic fires.
type Stage string

const (
	StageWelcome   Stage = "welcome"
	StageExploring Stage = "exploring"
	StageResearch  Stage = "research"
)

// ThinkingStep is an ephemeral progress line for the UI. It is not part of
// the conversation history and is never persisted.
type ThinkingStep struct {
	Text      string
	Timestamp time.Time
}

const (
	welcomeFallback = "Welcome! Tell me about the outdoor adventure you have in mind and I'll help you plan it."
	offlineFallback = "I'm having trouble reaching the planning service right now, but I'm still here. Tell me more about the trip you're imagining and I'll do my best to help."
)

// Confirmation phrases the assistant tends to use when it is ready to
// generate options. This is a heuristic stand-in for a structured "ready"
// signal from the backend, not an authoritative contract.
var confirmationPhrases = []string{
	"does this sound good",
	"ready to see some options",
	"should i show you",
	"would you like to see",
	"would you like me to generate",
	"shall i create",
}

var affirmativeTokens = []string{"yes", "yeah", "sure", "ok", "please"}

// The research trigger only arms once this many messages have accumulated,
// and only the most recent assistant messages are scanned.
const (
	minMessagesForResearch = 6
	assistantScanWindow    = 3
)

// Orchestrator is the welcome → exploring → research stage machine. One
// instance owns one conversation; methods are safe for concurrent use.
type Orchestrator struct {
	assistant Assistant
	log       *slog.Logger

	onThinking func(ThinkingStep)
	onTripData func(map[string]any)

	mu        sync.Mutex
	stage     Stage
	threadID  string
	apiFailed bool
	inFlight  int
	messages  []agents.Message
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithThinkingHook installs a callback for ephemeral progress steps.
func WithThinkingHook(fn func(ThinkingStep)) Option {
	return func(o *Orchestrator) { o.onThinking = fn }
}

// WithTripDataHook installs a callback fired whenever the backend returns
// structured trip data.
func WithTripDataHook(fn func(map[string]any)) Option {
	return func(o *Orchestrator) { o.onTripData = fn }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New creates an Orchestrator in the welcome stage.
func New(assistant Assistant, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		assistant: assistant,
		stage:     StageWelcome,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Stage returns the current conversation stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stage
}

// APIFailed reports whether the failed latch is set. Once set, no remote
// calls are attempted until Retry.
func (o *Orchestrator) APIFailed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.apiFailed
}

// Messages returns a copy of the conversation history.
func (o *Orchestrator) Messages() []agents.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]agents.Message, len(o.messages))
	copy(out, o.messages)
	return out
}

// Start initializes the backend thread and returns the welcome line.
// Initialization failure is non-fatal: the latch is set and a canned welcome
// is returned instead.
func (o *Orchestrator) Start(ctx context.Context) string {
	o.thinking("Connecting to your trip planner")

	threadID, err := o.assistant.CreateThread(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.log.Warn("thread initialization failed, degrading", "error", err)
		o.apiFailed = true
	} else {
		o.threadID = threadID
	}
	o.messages = append(o.messages, agents.Message{
		ID:        "msg_welcome",
		Role:      agents.MessageRoleAgent,
		Content:   welcomeFallback,
		Timestamp: time.Now(),
	})
	return welcomeFallback
}

// Send forwards a user turn to the assistant and returns the agent messages
// produced this turn (the reply, plus the research reply if the handoff
// heuristic fired). Backend failures set the latch and degrade to a canned
// response rather than returning an error.
func (o *Orchestrator) Send(ctx context.Context, text string) []agents.Message {
	o.mu.Lock()
	o.messages = append(o.messages, agents.NewUserMessage(text))
	if o.stage == StageWelcome {
		o.stage = StageExploring
	}
	failed := o.apiFailed
	threadID := o.threadID
	o.inFlight++
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight--
		o.mu.Unlock()
	}()

	if failed {
		return []agents.Message{o.appendAgentReply(offlineFallback)}
	}

	o.thinking("Thinking about your trip")
	reply, err := o.assistant.PostMessage(ctx, threadID, text)
	if err != nil || reply == nil {
		o.log.Warn("assistant call failed, degrading", "error", err)
		o.mu.Lock()
		o.apiFailed = true
		o.mu.Unlock()
		return []agents.Message{o.appendAgentReply(offlineFallback)}
	}

	msgs := []agents.Message{o.appendAgentReply(reply.Text())}
	if len(reply.TripData) > 0 && o.onTripData != nil {
		o.onTripData(reply.TripData)
	}

	if research := o.maybeResearchHandoff(ctx); research != nil {
		msgs = append(msgs, *research)
	}
	return msgs
}

// Retry clears the failed latch, re-initializes the thread, and replays the
// last user message (or a generic greeting if none exists).
func (o *Orchestrator) Retry(ctx context.Context) []agents.Message {
	o.mu.Lock()
	o.apiFailed = false
	last := "Hello"
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].Role == agents.MessageRoleUser {
			last = o.messages[i].Content
			break
		}
	}
	o.mu.Unlock()

	o.thinking("Reconnecting")
	threadID, err := o.assistant.CreateThread(ctx)
	if err != nil {
		o.log.Warn("retry failed", "error", err)
		o.mu.Lock()
		o.apiFailed = true
		o.mu.Unlock()
		return []agents.Message{o.appendAgentReply(offlineFallback)}
	}
	o.mu.Lock()
	o.threadID = threadID
	o.mu.Unlock()

	return o.Send(ctx, last)
}

// maybeResearchHandoff checks the research trigger and, when it fires,
// advances the stage and invokes the research backend. The trigger is a
// natural-language heuristic: a recent assistant confirmation question
// answered affirmatively by the latest user message.
func (o *Orchestrator) maybeResearchHandoff(ctx context.Context) *agents.Message {
	o.mu.Lock()
	// inFlight == 1 means this turn is the only request in flight.
	fire := o.stage == StageExploring &&
		len(o.messages) >= minMessagesForResearch &&
		o.inFlight == 1 &&
		o.assistantConfirmedLocked() &&
		o.userAffirmedLocked()
	threadID := o.threadID
	if fire {
		o.stage = StageResearch
	}
	o.mu.Unlock()

	if !fire {
		return nil
	}

	o.log.Info("research handoff triggered", "thread", threadID)
	o.thinking("Putting together your trip options")

	reply, err := o.assistant.Handoff(ctx, threadID)
	if err != nil || reply == nil {
		o.log.Warn("research handoff failed, degrading", "error", err)
		o.mu.Lock()
		o.apiFailed = true
		o.mu.Unlock()
		msg := o.appendAgentReply(offlineFallback)
		return &msg
	}

	msg := o.appendAgentReply(reply.Text())
	if len(reply.TripData) > 0 && o.onTripData != nil {
		o.onTripData(reply.TripData)
	}
	return &msg
}

// assistantConfirmedLocked scans the last few assistant messages for a
// confirmation phrase. Caller holds o.mu.
func (o *Orchestrator) assistantConfirmedLocked() bool {
	seen := 0
	for i := len(o.messages) - 1; i >= 0 && seen < assistantScanWindow; i-- {
		if o.messages[i].Role != agents.MessageRoleAgent {
			continue
		}
		seen++
		lower := strings.ToLower(o.messages[i].Content)
		for _, phrase := range confirmationPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}

// userAffirmedLocked checks the single most recent user message for an
// affirmative token. Caller holds o.mu.
func (o *Orchestrator) userAffirmedLocked() bool {
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].Role != agents.MessageRoleUser {
			continue
		}
		lower := strings.ToLower(o.messages[i].Content)
		for _, token := range affirmativeTokens {
			if strings.Contains(lower, token) {
				return true
			}
		}
		return false
	}
	return false
}

func (o *Orchestrator) appendAgentReply(text string) agents.Message {
	msg := agents.NewAgentMessage("", text)
	o.mu.Lock()
	o.messages = append(o.messages, msg)
	o.mu.Unlock()
	return msg
}

func (o *Orchestrator) thinking(text string) {
	if o.onThinking != nil {
		o.onThinking(ThinkingStep{Text: text, Timestamp: time.Now()})
	}
}
