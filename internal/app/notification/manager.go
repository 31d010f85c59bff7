// Package notification provides the notification manager for
// broadcasting playback events to subscribers.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osa030/streambox/internal/app/playback"
)

// sendTimeout bounds how long one subscriber may block a broadcast.
const sendTimeout = 500 * time.Millisecond

// Notification is a playback event stamped with a broadcast sequence
// number.
type Notification struct {
	SequenceNo uint64
	Event      playback.Event
}

// Subscriber receives playback notifications.
type Subscriber interface {
	Notify(n Notification) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id         string
	subscriber Subscriber
}

// Manager manages notification subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager) Subscribe(s Subscriber) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:         id,
		subscriber: s,
	}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Run broadcasts every event from the channel until it closes. Meant to
// run on its own goroutine, pumping a playback controller's event feed.
func (m *Manager) Run(events <-chan playback.Event) {
	for event := range events {
		m.Broadcast(event)
	}
}

// Broadcast stamps the event with the next sequence number and sends it
// to all subscribers. Each send runs in a goroutine with a timeout so a
// stalled subscriber cannot block the rest.
func (m *Manager) Broadcast(event playback.Event) {
	m.sequenceNoMu.Lock()
	m.sequenceNo++
	n := Notification{SequenceNo: m.sequenceNo, Event: event}
	m.sequenceNoMu.Unlock()

	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.subscriber.Notify(n)
			}()

			select {
			case <-done:
				// Delivery errors are the subscriber's problem; the
				// feed keeps flowing.
			case <-ctx.Done():
				// Timed out, move on.
			}
		}(sub)
	}
	wg.Wait()
}

// Send delivers a notification to a specific subscriber.
func (m *Manager) Send(subscriptionID string, n Notification) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return nil
	}
	return sub.subscriber.Notify(n)
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}
