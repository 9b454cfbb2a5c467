package realtime_test

import (
	"testing"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *realtime.WebSocketClient) []realtime.Event {
	var events []realtime.Event
	for {
		select {
		case e := <-c.Send:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestWebSocketClient_OnlyForwardsOwnNotificationEvents(t *testing.T) {
	// Arrange
	center, bus, _ := newCenter()
	john := realtime.NewWebSocketClient(nil, models.User{ID: "user_001", Role: models.RoleUser})
	jane := realtime.NewWebSocketClient(nil, models.User{ID: "user_002", Role: models.RoleUser})
	john.Attach(bus)
	jane.Attach(bus)
	defer john.Close()
	defer jane.Close()

	// Act
	private := center.CreateFor("user_002", models.NotificationInfo, "Complaint Updated", "yours", nil)
	require.True(t, center.MarkRead(private.ID))
	require.True(t, center.Remove(private.ID))
	broadcast := center.Info("maintenance tonight")
	require.True(t, center.Remove(broadcast.ID))

	// Assert
	johnEvents := drain(john)
	require.Len(t, johnEvents, 2, "john sees only the broadcast and its removal")
	assert.Equal(t, realtime.EventNotification, johnEvents[0].Type)
	assert.Equal(t, realtime.EventNotificationRemoved, johnEvents[1].Type)
	assert.Equal(t, broadcast.ID, johnEvents[1].Payload)

	var janeTypes []string
	for _, e := range drain(jane) {
		janeTypes = append(janeTypes, e.Type)
	}
	assert.Equal(t, []string{
		realtime.EventNotification,
		realtime.EventNotificationRead,
		realtime.EventNotificationRemoved,
		realtime.EventNotification,
		realtime.EventNotificationRemoved,
	}, janeTypes)
}
