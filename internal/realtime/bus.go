// Package realtime turns complaint changes into events and notifications:
// a typed subscription bus, a notification center, a change feed over the
// persisted complaints, and the notifier that scans it.
package realtime

import (
	"fmt"
	"sync"

	"complaintdesk/backend/internal/models"

	"github.com/apex/log"
)

// Event names, also used as the type tag of streamed events.
const (
	EventComplaintUpdated    = "complaint-updated"
	EventNotification        = "notification"
	EventNotificationRemoved = "notification-removed"
	EventNotificationRead    = "notification-read"
	EventAnalyticsUpdate     = "analytics-update"
	userComplaintsPrefix     = "user-complaints-"
)

// Handler receives one payload. A returned error is logged and does not
// stop delivery to the remaining handlers.
type Handler[T any] func(payload T) error

type subscription[T any] struct {
	id uint64
	fn Handler[T]
}

// Topic is a single event with a fixed payload type.
type Topic[T any] struct {
	name string

	mu     sync.Mutex
	nextID uint64
	subs   []subscription[T]
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers fn and returns a function that unregisters it.
// Calling the returned function more than once is a no-op.
func (t *Topic[T]) Subscribe(fn Handler[T]) (unsubscribe func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscription[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered handlers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Emit calls every handler registered at the time of the call, in
// registration order, on the calling goroutine.
func (t *Topic[T]) Emit(payload T) {
	t.mu.Lock()
	subs := make([]subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, s := range subs {
		t.deliver(s, payload)
	}
}

func (t *Topic[T]) deliver(s subscription[T], payload T) {
	defer func() {
		if r := recover(); r != nil {
			log.WithError(fmt.Errorf("panic: %v", r)).WithField("event", t.name).Error("event handler panicked")
		}
	}()
	if err := s.fn(payload); err != nil {
		log.WithError(err).WithField("event", t.name).Error("event handler failed")
	}
}

// Bus groups the application's topics.
type Bus struct {
	ComplaintUpdated    *Topic[models.Complaint]
	Notification        *Topic[models.Notification]
	NotificationRemoved *Topic[models.Notification]
	NotificationRead    *Topic[models.Notification]
	AnalyticsUpdate     *Topic[models.Analytics]

	mu    sync.Mutex
	users map[string]*Topic[models.Complaint]
}

func NewBus() *Bus {
	return &Bus{
		ComplaintUpdated:    NewTopic[models.Complaint](EventComplaintUpdated),
		Notification:        NewTopic[models.Notification](EventNotification),
		NotificationRemoved: NewTopic[models.Notification](EventNotificationRemoved),
		NotificationRead:    NewTopic[models.Notification](EventNotificationRead),
		AnalyticsUpdate:     NewTopic[models.Analytics](EventAnalyticsUpdate),
		users:               make(map[string]*Topic[models.Complaint]),
	}
}

// UserComplaints is the channel carrying updates to one resident's complaints.
func (b *Bus) UserComplaints(userID string) *Topic[models.Complaint] {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.users[userID]
	if !ok {
		t = NewTopic[models.Complaint](userComplaintsPrefix + userID)
		b.users[userID] = t
	}
	return t
}
