// Package chat is the per-order realtime messaging channel: a room hub for
// broadcast plus durable history through the message repository.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is the payload fanned out to room subscribers. It carries everything
// needed to render the message without a follow-up fetch.
type Event struct {
	Name       string    `json:"event"`
	OrderID    string    `json:"order_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event names on the realtime transport.
const (
	EventNewMessage = "new_message"
	EventNewOrder   = "new_order"
)

// subscriberBuffer bounds how far a slow subscriber may lag before events are
// dropped for it. Dropped subscribers resynchronize via history on reconnect.
const subscriberBuffer = 32

// Subscriber is one connection's view of a room. Events arrive on C.
type Subscriber struct {
	C    chan Event
	room string
}

// Hub tracks rooms and their current subscribers. Fan-out is best-effort and
// non-blocking: a full subscriber channel drops the event rather than
// blocking the sender or other subscribers.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

// OrderRoom is the room key for an order's conversation.
func OrderRoom(orderID uuid.UUID) string { return "order:" + orderID.String() }

// FeedRoom is a professional's personal feed, used for new-order notices.
func FeedRoom(accountID uuid.UUID) string { return "feed:" + accountID.String() }

// Subscribe registers a new subscriber in the room.
func (h *Hub) Subscribe(room string) *Subscriber {
	s := &Subscriber{C: make(chan Event, subscriberBuffer), room: room}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.rooms[room] = subs
	}
	subs[s] = struct{}{}
	return s
}

// Unsubscribe removes the subscriber and closes its channel. Idempotent.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[s.room]
	if !ok {
		return
	}
	if _, present := subs[s]; !present {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.rooms, s.room)
	}
	close(s.C)
}

// Publish fans the event out to every current subscriber of the room and
// returns how many received it.
func (h *Hub) Publish(room string, ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for s := range h.rooms[room] {
		select {
		case s.C <- ev:
			delivered++
		default:
			// Subscriber is not keeping up; it rereads history on reconnect.
		}
	}
	return delivered
}
