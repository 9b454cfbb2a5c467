package realtime

import (
	"slices"
	"strings"
	"sync"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
)

// Scheduler runs f once after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (cancel func())

func afterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Center holds the live notifications. Success notifications remove
// themselves after the configured timeout; everything else stays until
// removed.
type Center struct {
	mu       sync.Mutex
	bus      *Bus
	items    []models.Notification
	timers   map[string]func()
	timeout  time.Duration
	schedule Scheduler
	now      func() time.Time
}

func NewCenter(bus *Bus, timeout time.Duration) *Center {
	if timeout <= 0 {
		timeout = config.DefaultNotificationTimeout
	}
	return &Center{
		bus:      bus,
		timers:   make(map[string]func()),
		timeout:  timeout,
		schedule: afterFunc,
		now:      time.Now,
	}
}

func (c *Center) SetScheduler(s Scheduler) {
	c.schedule = s
}

func (c *Center) SetClock(now func() time.Time) {
	c.now = now
}

// Create adds a notification visible to everyone.
func (c *Center) Create(typ models.NotificationType, title, message string, data map[string]any) models.Notification {
	return c.CreateFor("", typ, title, message, data)
}

// CreateFor adds a notification for one recipient and emits it.
func (c *Center) CreateFor(recipient string, typ models.NotificationType, title, message string, data map[string]any) models.Notification {
	n := models.Notification{
		ID:        models.NewID("notif"),
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		Timestamp: c.now(),
		Recipient: recipient,
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	if typ == models.NotificationSuccess {
		c.expire(n.ID)
	}

	c.bus.Notification.Emit(n)
	return n
}

// expire schedules removal of id. The timer is kept only while the
// notification is still live.
func (c *Center) expire(id string) {
	cancel := c.schedule(c.timeout, func() { c.Remove(id) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.ContainsFunc(c.items, func(n models.Notification) bool { return n.ID == id }) {
		c.timers[id] = cancel
		return
	}
	cancel()
}

func toast(typ models.NotificationType) string {
	s := string(typ)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (c *Center) Success(message string) models.Notification {
	return c.Create(models.NotificationSuccess, toast(models.NotificationSuccess), message, nil)
}

func (c *Center) Error(message string) models.Notification {
	return c.Create(models.NotificationError, toast(models.NotificationError), message, nil)
}

func (c *Center) Warning(message string) models.Notification {
	return c.Create(models.NotificationWarning, toast(models.NotificationWarning), message, nil)
}

func (c *Center) Info(message string) models.Notification {
	return c.Create(models.NotificationInfo, toast(models.NotificationInfo), message, nil)
}

// Remove dismisses a notification. It reports false when id is unknown.
func (c *Center) Remove(id string) bool {
	c.mu.Lock()
	i := slices.IndexFunc(c.items, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	removed := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	if cancel, ok := c.timers[id]; ok {
		delete(c.timers, id)
		cancel()
	}
	c.mu.Unlock()

	c.bus.NotificationRemoved.Emit(removed)
	return true
}

// MarkRead flags a notification as read. It reports false when id is
// unknown or the notification was already read.
func (c *Center) MarkRead(id string) bool {
	c.mu.Lock()
	i := slices.IndexFunc(c.items, func(n models.Notification) bool { return n.ID == id })
	if i < 0 || c.items[i].Read {
		c.mu.Unlock()
		return false
	}
	c.items[i].Read = true
	read := c.items[i]
	c.mu.Unlock()

	c.bus.NotificationRead.Emit(read)
	return true
}

// Get returns one notification.
func (c *Center) Get(id string) (models.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		return models.Notification{}, false
	}
	return c.items[i], true
}

// List returns every live notification in creation order.
func (c *Center) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// ListFor returns the notifications visible to userID.
func (c *Center) ListFor(userID string) []models.Notification {
	out := []models.Notification{}
	for _, n := range c.List() {
		if n.VisibleTo(userID) {
			out = append(out, n)
		}
	}
	return out
}

func (c *Center) UnreadCount() int {
	return countUnread(c.List())
}

func (c *Center) UnreadCountFor(userID string) int {
	return countUnread(c.ListFor(userID))
}

func countUnread(items []models.Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}
