package models

import "time"

// NotificationType is the severity of a notification.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
)

// Notification is a transient user-facing message.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	// Recipient scopes the notification to one user; empty means everyone.
	Recipient string `json:"recipient,omitempty"`
}

// VisibleTo reports whether userID should see the notification.
func (n *Notification) VisibleTo(userID string) bool {
	return n.Recipient == "" || n.Recipient == userID
}
