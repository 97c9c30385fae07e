// Package agents implements the conversational routing layer for trip
// planning: a set of specialized responders (triage, search, knowledge,
// account) behind a single Manager that decides, per turn, which responder
// handles the conversation.
//
// # Routing
//
// The Manager inspects the conversation history to pick a target:
//
//  1. A single user message routes to triage (cold start).
//  2. The most recent agent message carrying a handoff directive routes to
//     the handoff target, merging its context data into the request.
//  3. Otherwise the conversation stays with whichever agent spoke last.
//  4. With no prior agent activity, triage is the default.
//
// A handoff is a request, not a continuation: the Manager returns the
// response to the caller, and the caller decides whether to route again.
//
// # Degraded responses
//
// Failures inside a responder never surface as errors. The Manager
// synthesizes an apology tagged with the failing role and attaches a handoff
// to knowledge, the most general-purpose responder, so the conversation can
// always continue.
package agents
