package bus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/boardroom/internal/game"
)

func recv(t *testing.T, ch chan interface{}) Event {
	t.Helper()
	select {
	case m := <-ch:
		ev, ok := m.(Event)
		require.True(t, ok)
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event arrived")
		return Event{}
	}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "chess:42", Topic(game.Chess, "42"))
}

func TestPublishReachesSubscriber(t *testing.T) {
	b := New(4)
	defer b.Shutdown()

	topic := Topic(game.Nim, "g1")
	ch := b.Subscribe(topic)

	want := Event{Type: TypeMove, By: "1", State: json.RawMessage(`{}`), Status: game.InProgress}
	b.Publish(topic, want)
	assert.Equal(t, want, recv(t, ch))
}

func TestOrderingPerTopic(t *testing.T) {
	b := New(8)
	defer b.Shutdown()

	topic := Topic(game.Azul, "g2")
	ch := b.Subscribe(topic)
	for i := 0; i < 5; i++ {
		b.Publish(topic, Event{Type: TypeMove, By: string(rune('a' + i))})
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, string(rune('a'+i)), recv(t, ch).By)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	b := New(4)
	defer b.Shutdown()

	chA := b.Subscribe(Topic(game.Chess, "a"))
	chB := b.Subscribe(Topic(game.Chess, "b"))

	b.Publish(Topic(game.Chess, "a"), Event{Type: TypeCreate})
	assert.Equal(t, TypeCreate, recv(t, chA).Type)

	select {
	case m := <-chB:
		t.Fatalf("event leaked across topics: %+v", m)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMidGameSubscriberSeesOnlyNewEvents(t *testing.T) {
	b := New(4)
	defer b.Shutdown()

	topic := Topic(game.Connect4, "g3")
	b.Publish(topic, Event{Type: TypeCreate}) // nobody listening

	ch := b.Subscribe(topic)
	b.Publish(topic, Event{Type: TypeMove})
	assert.Equal(t, TypeMove, recv(t, ch).Type)
}
