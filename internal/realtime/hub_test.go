package realtime_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/realtime"
)

type collector struct {
	mu   sync.Mutex
	msgs []model.ChatMessage
}

func (c *collector) sink(m model.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
}

func (c *collector) snapshot() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatMessage(nil), c.msgs...)
}

func TestHub_Publish(t *testing.T) {
	filter := realtime.Filter{UserID: "u1", CharacterID: 4}

	t.Run("Delivers only AI messages for the filter", func(t *testing.T) {
		hub := realtime.NewHub()
		c := &collector{}
		sub := hub.Subscribe(filter, c.sink)
		defer sub.Close()

		hub.Publish(realtime.Event{UserID: "u1", CharacterID: 4, Message: model.ChatMessage{ID: "a", Text: "hi", Sender: model.SenderAI}})
		hub.Publish(realtime.Event{UserID: "u1", CharacterID: 4, Message: model.ChatMessage{ID: "b", Text: "me", Sender: model.SenderUser}})
		hub.Publish(realtime.Event{UserID: "u1", CharacterID: 5, Message: model.ChatMessage{ID: "c", Text: "other", Sender: model.SenderAI}})
		hub.Publish(realtime.Event{UserID: "u2", CharacterID: 4, Message: model.ChatMessage{ID: "d", Text: "other", Sender: model.SenderAI}})
		hub.Publish(realtime.Event{UserID: "u1", CharacterID: 4, Message: model.ChatMessage{ID: "e", Text: "", Sender: model.SenderAI}})

		require.Eventually(t, func() bool { return len(c.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		got := c.snapshot()
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})

	t.Run("Close stops delivery and is idempotent", func(t *testing.T) {
		hub := realtime.NewHub()
		c := &collector{}
		sub := hub.Subscribe(filter, c.sink)
		assert.Equal(t, 1, hub.Len())

		sub.Close()
		sub.Close()
		assert.Equal(t, 0, hub.Len())

		hub.Publish(realtime.Event{UserID: "u1", CharacterID: 4, Message: model.ChatMessage{ID: "a", Text: "hi", Sender: model.SenderAI}})
		time.Sleep(20 * time.Millisecond)
		assert.Empty(t, c.snapshot())
	})
}

func TestDecodeNotification(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		payload := []byte(`{"id":"m1","user_id":"u1","character_id":4,"content":"hello","sender":"ai","created_at":"2024-05-01T10:00:00.123456+00:00"}`)
		e, err := realtime.DecodeNotification(payload, now)
		require.NoError(t, err)

		assert.Equal(t, "u1", e.UserID)
		assert.Equal(t, int64(4), e.CharacterID)
		assert.Equal(t, "hello", e.Message.Text)
		assert.Equal(t, model.SenderAI, e.Message.Sender)
		assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC).UnixMilli(), e.Message.Timestamp)
	})

	t.Run("Failure - Malformed JSON", func(t *testing.T) {
		_, err := realtime.DecodeNotification([]byte(`{`), now)
		assert.Error(t, err)
	})

	t.Run("Failure - Missing filter columns", func(t *testing.T) {
		_, err := realtime.DecodeNotification([]byte(`{"id":"m1","content":"x"}`), now)
		assert.Error(t, err)
	})
}
