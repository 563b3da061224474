package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func (h *Hub) connectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestHubSendDropsSlowClientWithoutPanic(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	userID := uuid.New()
	// No buffer, so the very first Send hits the full-buffer branch.
	slow := &Client{Hub: hub, UserID: userID, Send: make(chan []byte)}
	hub.register <- slow

	require.Eventually(t, func() bool {
		return hub.connectionCount(userID) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Send(userID, RealtimeEvent{Type: "note.changed", At: time.Now()})

	require.Eventually(t, func() bool {
		return hub.connectionCount(userID) == 0
	}, time.Second, 5*time.Millisecond)

	// The unregister path owns the close; the channel must be closed
	// exactly once, which a further Send for the same user must not
	// disturb.
	hub.Send(userID, RealtimeEvent{Type: "note.changed", At: time.Now()})

	select {
	case _, ok := <-slow.Send:
		require.False(t, ok, "expected the send channel to be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel was never closed")
	}
}

func TestHubSendReachesConnectedClients(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	userID := uuid.New()
	tabA := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	tabB := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 4)}
	hub.register <- tabA
	hub.register <- tabB

	require.Eventually(t, func() bool {
		return hub.connectionCount(userID) == 2
	}, time.Second, 5*time.Millisecond)

	hub.Send(userID, RealtimeEvent{Type: "ecg_result.changed", At: time.Now()})

	for _, c := range []*Client{tabA, tabB} {
		select {
		case frame := <-c.Send:
			require.Contains(t, string(frame), "ecg_result.changed")
		case <-time.After(time.Second):
			t.Fatal("client never received the event")
		}
	}
}
