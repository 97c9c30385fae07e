// Package history persists conversation transcripts and saved trips on
// top of a kv.Store. Records are msgpack-encoded; message keys embed the
// timestamp so a prefix scan returns them in chronological order.
package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/trailmind/trailmind/pkg/agents"
	"github.com/trailmind/trailmind/pkg/kv"
)

// Store persists per-user conversation history and saved trips.
type Store struct {
	kv kv.Store
}

// New creates a history store on top of the given key-value store.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

func messagePrefix(userID string) string {
	return "conv:" + userID + ":"
}

func messageKey(userID string, msg agents.Message) string {
	// Millisecond timestamps zero-padded to 13 digits sort correctly
	// until the year 2286. The message ID breaks ties.
	return fmt.Sprintf("%s%013d:%s", messagePrefix(userID), msg.Timestamp.UnixMilli(), msg.ID)
}

func tripPrefix(userID string) string {
	return "trip:" + userID + ":"
}

// Append persists messages to the user's transcript.
func (s *Store) Append(ctx context.Context, userID string, msgs ...agents.Message) error {
	for _, msg := range msgs {
		data, err := msgpack.Marshal(msg)
		if err != nil {
			return fmt.Errorf("history: encode message %s: %w", msg.ID, err)
		}
		if err := s.kv.Set(ctx, messageKey(userID, msg), data); err != nil {
			return fmt.Errorf("history: store message %s: %w", msg.ID, err)
		}
	}
	return nil
}

// Messages returns the user's transcript in chronological order.
func (s *Store) Messages(ctx context.Context, userID string) ([]agents.Message, error) {
	var out []agents.Message
	for entry, err := range s.kv.List(ctx, messagePrefix(userID)) {
		if err != nil {
			return nil, fmt.Errorf("history: list messages: %w", err)
		}
		var msg agents.Message
		if err := msgpack.Unmarshal(entry.Value, &msg); err != nil {
			return nil, fmt.Errorf("history: decode message at %s: %w", entry.Key, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// Clear deletes the user's transcript.
func (s *Store) Clear(ctx context.Context, userID string) error {
	var keys []string
	for entry, err := range s.kv.List(ctx, messagePrefix(userID)) {
		if err != nil {
			return fmt.Errorf("history: list messages: %w", err)
		}
		keys = append(keys, entry.Key)
	}
	for _, key := range keys {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("history: delete %s: %w", key, err)
		}
	}
	return nil
}

// SavedTrip is a trip the user chose to keep.
type SavedTrip struct {
	ID   string         `msgpack:"id" json:"id"`
	Data map[string]any `msgpack:"data" json:"data"`
}

// SaveTrip persists one trip for the user and returns its assigned ID.
func (s *Store) SaveTrip(ctx context.Context, userID string, trip map[string]any) (string, error) {
	saved := SavedTrip{
		ID:   "trip_" + uuid.New().String()[:8],
		Data: trip,
	}
	data, err := msgpack.Marshal(saved)
	if err != nil {
		return "", fmt.Errorf("history: encode trip: %w", err)
	}
	if err := s.kv.Set(ctx, tripPrefix(userID)+saved.ID, data); err != nil {
		return "", fmt.Errorf("history: store trip: %w", err)
	}
	return saved.ID, nil
}

// SavedTrips returns all trips the user has saved.
func (s *Store) SavedTrips(ctx context.Context, userID string) ([]SavedTrip, error) {
	var out []SavedTrip
	for entry, err := range s.kv.List(ctx, tripPrefix(userID)) {
		if err != nil {
			return nil, fmt.Errorf("history: list trips: %w", err)
		}
		var trip SavedTrip
		if err := msgpack.Unmarshal(entry.Value, &trip); err != nil {
			return nil, fmt.Errorf("history: decode trip at %s: %w", entry.Key, err)
		}
		out = append(out, trip)
	}
	return out, nil
}

// DeleteTrip removes one saved trip.
func (s *Store) DeleteTrip(ctx context.Context, userID, tripID string) error {
	return s.kv.Delete(ctx, tripPrefix(userID)+tripID)
}
