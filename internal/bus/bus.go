// Package bus carries per-game event streams. Each game owns the topic
// "<kind>:<id>"; delivery is at-least-once and ordered per topic, and a
// subscriber sees every event published after it connects. No history is
// replayed.
package bus

import (
	"encoding/json"

	"github.com/cskr/pubsub"

	"github.com/hailam/boardroom/internal/game"
)

// Event types.
const (
	TypeCreate = "create"
	TypeMove   = "move"
	TypeUndo   = "undo"
)

// Event is one record on a game stream.
type Event struct {
	Type   string          `json:"type"`
	By     string          `json:"by,omitempty"`
	Move   json.RawMessage `json:"move,omitempty"`
	State  json.RawMessage `json:"state"`
	Status game.Status     `json:"status"`
}

// Topic names the stream for a game.
func Topic(kind game.Kind, id string) string {
	return string(kind) + ":" + id
}

// Bus wraps the pubsub fan-out. Publishing never blocks the orchestrator
// longer than the slowest subscriber's buffer.
type Bus struct {
	ps *pubsub.PubSub
}

// New builds a bus with the given per-subscriber buffer capacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 16
	}
	return &Bus{ps: pubsub.New(capacity)}
}

// Publish appends an event to a topic.
func (b *Bus) Publish(topic string, ev Event) {
	b.ps.Pub(ev, topic)
}

// Subscribe opens a channel receiving every future event on the topic.
func (b *Bus) Subscribe(topic string) chan interface{} {
	return b.ps.Sub(topic)
}

// Unsubscribe detaches a channel; pending events are drained and the
// channel closed.
func (b *Bus) Unsubscribe(ch chan interface{}, topic string) {
	go b.ps.Unsub(ch, topic)
	for range ch {
	}
}

// Shutdown closes every subscription.
func (b *Bus) Shutdown() {
	b.ps.Shutdown()
}
