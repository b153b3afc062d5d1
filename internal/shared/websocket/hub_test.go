package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hubFixture struct {
	hub     *Hub
	onEmpty chan string
	onLeave chan *Client
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	f := &hubFixture{
		hub:     NewHub(),
		onEmpty: make(chan string, 4),
		onLeave: make(chan *Client, 4),
	}
	f.hub.OnEmpty = func(roomID string) { f.onEmpty <- roomID }
	f.hub.OnLeave = func(c *Client) { f.onLeave <- c }

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.hub.Run(ctx)
	return f
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		var zero T
		return zero
	}
}

func expectNone[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterLastClientFiresTeardownHooks(t *testing.T) {
	f := newHubFixture(t)
	client := NewClient(f.hub, nil, "room-1", "conn-1", "user-1", "Admin", "ADMIN")

	f.hub.RegisterClient(client)
	f.hub.UnregisterClient(client)

	left := waitFor(t, f.onLeave, "OnLeave")
	assert.Same(t, client, left)
	roomID := waitFor(t, f.onEmpty, "OnEmpty")
	assert.Equal(t, "room-1", roomID)
}

func TestEvictionOfLastClientFiresTeardownHooks(t *testing.T) {
	f := newHubFixture(t)
	client := NewClient(f.hub, nil, "room-1", "conn-1", "user-1", "Admin", "ADMIN")
	f.hub.RegisterClient(client)

	// nobody drains client.send: a broadcast against a full buffer evicts it
	for i := 0; i < sendBufferSize; i++ {
		client.send <- []byte("junk")
	}
	f.hub.BroadcastToRoom("room-1", []byte("payload"))

	left := waitFor(t, f.onLeave, "OnLeave after eviction")
	assert.Same(t, client, left)
	roomID := waitFor(t, f.onEmpty, "OnEmpty after eviction")
	assert.Equal(t, "room-1", roomID)

	// the pumps will still call UnregisterClient, it must stay a no-op
	f.hub.UnregisterClient(client)
	expectNone(t, f.onLeave, "second OnLeave")
	expectNone(t, f.onEmpty, "second OnEmpty")
}

func TestEvictionKeepsRemainingSubscribers(t *testing.T) {
	f := newHubFixture(t)
	stalled := NewClient(f.hub, nil, "room-1", "conn-stalled", "user-1", "A", "CAPTAIN")
	healthy := NewClient(f.hub, nil, "room-1", "conn-healthy", "user-2", "B", "CAPTAIN")
	f.hub.RegisterClient(stalled)
	f.hub.RegisterClient(healthy)

	// only stalled sits on a full buffer
	for i := 0; i < sendBufferSize; i++ {
		stalled.send <- []byte("junk")
	}
	f.hub.BroadcastToRoom("room-1", []byte("payload"))

	left := waitFor(t, f.onLeave, "OnLeave for the stalled client")
	require.Same(t, stalled, left)
	expectNone(t, f.onEmpty, "OnEmpty while a subscriber remains")

	f.hub.UnregisterClient(healthy)
	waitFor(t, f.onLeave, "OnLeave for the healthy client")
	roomID := waitFor(t, f.onEmpty, "OnEmpty after the last leave")
	assert.Equal(t, "room-1", roomID)
}
