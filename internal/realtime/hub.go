package realtime

import (
	"log/slog"
	"sync"

	"fantasy-ai/backend/internal/model"
)

const subscriptionBuffer = 32

// Event is a newly stored conversation message.
type Event struct {
	UserID      string
	CharacterID int64
	Message     model.ChatMessage
}

// Filter selects the conversation a subscription listens to.
type Filter struct {
	UserID      string
	CharacterID int64
}

// Sink receives messages delivered to a subscription. It runs on the subscription's
// own goroutine, never on the publisher's.
type Sink func(model.ChatMessage)

// Hub fans newly stored messages out to live subscriptions.
// Only assistant-authored messages are delivered.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers sink for messages matching filter. The returned handle must be closed.
func (h *Hub) Subscribe(filter Filter, sink Sink) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		filter: filter,
		hub:    h,
		events: make(chan model.ChatMessage, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	h.subs[sub.id] = sub
	go sub.run(sink)

	slog.Debug("Realtime subscription opened", "subscription_id", sub.id, "user_id", filter.UserID, "character_id", filter.CharacterID)
	return sub
}

// Publish delivers e to every matching subscription.
func (h *Hub) Publish(e Event) {
	if e.Message.Sender != model.SenderAI || e.Message.Text == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.filter.UserID != e.UserID || sub.filter.CharacterID != e.CharacterID {
			continue
		}
		select {
		case sub.events <- e.Message:
		case <-sub.done:
		default:
			slog.Warn("Realtime subscription buffer full, dropping message", "subscription_id", sub.id, "message_id", e.Message.ID)
		}
	}
}

// Len reports the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Subscription is a cancellable live feed for one (user, character) conversation.
type Subscription struct {
	id     uint64
	filter Filter
	hub    *Hub
	events chan model.ChatMessage
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) run(sink Sink) {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.events:
			select {
			case <-s.done:
				return
			default:
			}
			sink(msg)
		}
	}
}

// Close stops delivery. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.done)
		s.hub.remove(s.id)
		slog.Debug("Realtime subscription closed", "subscription_id", s.id)
	})
}

// Filter returns the conversation this subscription listens to.
func (s *Subscription) Filter() Filter {
	return s.filter
}
