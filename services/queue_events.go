package services

import (
	"log"
	"sync"

	"coaching-platform-api/models"

	"github.com/google/uuid"
)

// Queue event names pushed to live queue subscribers.
const (
	QueueEventSubmissionCreated   = "submission_created"
	QueueEventSubmissionClaimed   = "submission_claimed"
	QueueEventSubmissionReleased  = "submission_released"
	QueueEventSubmissionCompleted = "submission_completed"
	QueueEventSubmissionDeclined  = "submission_declined"
)

// QueueEvent is one incremental diff against the queue views. The full
// submission rides along so subscribers can update their local snapshot
// without another round-trip.
type QueueEvent struct {
	Event      string             `json:"event"`
	Submission *models.Submission `json:"submission"`
}

// QueueSubscriber is one live listener. Outbound is buffered; a subscriber
// that stops draining loses events rather than blocking the broadcaster.
type QueueSubscriber struct {
	ID       uuid.UUID
	UserID   uint
	Outbound chan QueueEvent
	done     chan struct{}
}

// Done is closed when the subscriber is removed from the hub.
func (s *QueueSubscriber) Done() <-chan struct{} {
	return s.done
}

// QueueEventHub fans workflow mutations out to live queue subscribers. It
// holds no state besides the subscriber registry; once the last subscriber
// unsubscribes the hub is empty and idle.
type QueueEventHub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*QueueSubscriber
}

func NewQueueEventHub() *QueueEventHub {
	return &QueueEventHub{
		subs: make(map[uuid.UUID]*QueueSubscriber),
	}
}

// Subscribe registers a new listener for queue events.
func (hub *QueueEventHub) Subscribe(userID uint) *QueueSubscriber {
	sub := &QueueSubscriber{
		ID:       uuid.New(),
		UserID:   userID,
		Outbound: make(chan QueueEvent, 16),
		done:     make(chan struct{}),
	}

	hub.mu.Lock()
	hub.subs[sub.ID] = sub
	hub.mu.Unlock()

	return sub
}

// Unsubscribe removes the listener and closes its channels. Safe to call
// more than once.
func (hub *QueueEventHub) Unsubscribe(sub *QueueSubscriber) {
	hub.mu.Lock()
	_, registered := hub.subs[sub.ID]
	delete(hub.subs, sub.ID)
	hub.mu.Unlock()

	if registered {
		close(sub.done)
		close(sub.Outbound)
	}
}

// SubscriberCount returns the number of registered listeners.
func (hub *QueueEventHub) SubscriberCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subs)
}

// Broadcast delivers the event to every subscriber. Slow subscribers with a
// full buffer are skipped.
func (hub *QueueEventHub) Broadcast(event QueueEvent) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for _, sub := range hub.subs {
		select {
		case sub.Outbound <- event:
		default:
			log.Printf("queue events: dropping %s for subscriber %s; outbound buffer full", event.Event, sub.ID)
		}
	}
}

var defaultQueueEvents = NewQueueEventHub()

// QueueEvents returns the process-wide event hub used by the API server.
func QueueEvents() *QueueEventHub {
	return defaultQueueEvents
}
