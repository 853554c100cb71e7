// Package notification fans out room notifications to subscribed devices.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// DefaultSendTimeout bounds a single stream send.
const DefaultSendTimeout = 500 * time.Millisecond

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(*Notification) error
}

// Subscription is one device's notification stream.
type Subscription struct {
	ID       string
	UserID   string
	DeviceID string

	stream Stream
	sendMu sync.Mutex // streams are not safe for concurrent sends
	done   chan struct{}
	once   sync.Once
}

// Done is closed when the subscription is ended by the server.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.done) })
}

// Manager manages notification subscriptions and delivery.
// Delivery is best-effort: every send runs in its own goroutine with a timeout.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	sendTimeout   time.Duration
	wg            sync.WaitGroup
}

// NewManager creates a new notification manager.
func NewManager(sendTimeout time.Duration) *Manager {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Manager{
		subscriptions: make(map[string]*Subscription),
		sendTimeout:   sendTimeout,
	}
}

// Subscribe registers a device stream.
func (m *Manager) Subscribe(userID, deviceID string, stream Stream) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := &Subscription{
		ID:       uuid.New().String(),
		UserID:   userID,
		DeviceID: deviceID,
		stream:   stream,
		done:     make(chan struct{}),
	}
	m.subscriptions[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	sub, ok := m.subscriptions[subscriptionID]
	delete(m.subscriptions, subscriptionID)
	m.mu.Unlock()

	if ok {
		sub.close()
	}
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Publish sends n to every device of userID without waiting for delivery.
func (m *Manager) Publish(userID string, n *Notification) {
	subs := m.subscriptionsOf(userID)
	if len(subs) == 0 {
		return
	}

	msg := *n
	msg.SequenceNo = m.NextSequenceNo()
	for _, sub := range subs {
		m.sendAsync(sub, &msg)
	}
}

// Send delivers n synchronously to one subscription.
func (m *Manager) Send(sub *Subscription, n *Notification) error {
	msg := *n
	msg.SequenceNo = m.NextSequenceNo()

	sub.sendMu.Lock()
	defer sub.sendMu.Unlock()
	return sub.stream.Send(&msg)
}

// Disconnect sends n (if any) to every device of userID, then ends their subscriptions.
func (m *Manager) Disconnect(userID string, n *Notification) {
	subs := m.subscriptionsOf(userID)
	var msg *Notification
	if n != nil {
		c := *n
		c.SequenceNo = m.NextSequenceNo()
		msg = &c
	}

	for _, sub := range subs {
		m.wg.Add(1)
		go func(s *Subscription) {
			defer m.wg.Done()
			if msg != nil {
				m.deliver(s, msg)
			}
			m.Unsubscribe(s.ID)
		}(sub)
	}
}

func (m *Manager) sendAsync(sub *Subscription, n *Notification) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.deliver(sub, n)
	}()
}

// deliver sends n, giving up after the send timeout.
func (m *Manager) deliver(sub *Subscription, n *Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		sub.sendMu.Lock()
		defer sub.sendMu.Unlock()
		done <- sub.stream.Send(n)
	}()

	select {
	case err := <-done:
		if err != nil {
			zlog.Debug().Err(err).Str("subscription_id", sub.ID).Str("type", string(n.Type)).Msg("notification send failed")
		}
	case <-ctx.Done():
		zlog.Debug().Str("subscription_id", sub.ID).Str("type", string(n.Type)).Msg("notification send timed out")
	}
}

func (m *Manager) subscriptionsOf(userID string) []*Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]*Subscription, 0, 2)
	for _, sub := range m.subscriptions {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	return subs
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Flush waits for in-flight sends to finish or time out.
func (m *Manager) Flush() {
	m.wg.Wait()
}

// Close ends all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	subs := m.subscriptions
	m.subscriptions = make(map[string]*Subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}
