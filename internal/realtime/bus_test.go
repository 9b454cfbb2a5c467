package realtime_test

import (
	"errors"
	"testing"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/realtime"

	"github.com/stretchr/testify/assert"
)

func TestTopic_DeliversInRegistrationOrder(t *testing.T) {
	topic := realtime.NewTopic[int]("numbers")
	var got []string

	topic.Subscribe(func(n int) error { got = append(got, "first"); return nil })
	topic.Subscribe(func(n int) error { got = append(got, "second"); return nil })
	topic.Subscribe(func(n int) error { got = append(got, "third"); return nil })

	topic.Emit(1)

	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestTopic_HandlerFailuresAreIsolated(t *testing.T) {
	// Arrange
	topic := realtime.NewTopic[string]("isolation")
	var delivered []string
	topic.Subscribe(func(s string) error { return errors.New("boom") })
	topic.Subscribe(func(s string) error { panic("handler exploded") })
	topic.Subscribe(func(s string) error { delivered = append(delivered, s); return nil })

	// Act
	assert.NotPanics(t, func() { topic.Emit("hello") })

	// Assert
	assert.Equal(t, []string{"hello"}, delivered)
}

func TestTopic_Unsubscribe(t *testing.T) {
	topic := realtime.NewTopic[int]("unsubscribe")
	calls := 0
	unsubscribe := topic.Subscribe(func(int) error { calls++; return nil })
	other := topic.Subscribe(func(int) error { return nil })

	unsubscribe()
	unsubscribe()
	topic.Emit(1)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, topic.Len(), "second unsubscribe must not remove another handler")

	other()
	assert.Equal(t, 0, topic.Len())
}

func TestTopic_UnsubscribeDuringEmit(t *testing.T) {
	topic := realtime.NewTopic[int]("reentrant")
	var unsubscribe func()
	calls := 0
	unsubscribe = topic.Subscribe(func(int) error {
		calls++
		unsubscribe()
		return nil
	})

	topic.Emit(1)
	topic.Emit(2)

	assert.Equal(t, 1, calls)
}

func TestBus_UserComplaintsAreScoped(t *testing.T) {
	bus := realtime.NewBus()
	var mine, theirs []string
	bus.UserComplaints("user_001").Subscribe(func(c models.Complaint) error { mine = append(mine, c.ID); return nil })
	bus.UserComplaints("user_002").Subscribe(func(c models.Complaint) error { theirs = append(theirs, c.ID); return nil })

	bus.UserComplaints("user_001").Emit(models.Complaint{ID: "comp_001"})

	assert.Equal(t, []string{"comp_001"}, mine)
	assert.Empty(t, theirs)
	assert.Same(t, bus.UserComplaints("user_001"), bus.UserComplaints("user_001"))
	assert.Equal(t, "user-complaints-user_001", bus.UserComplaints("user_001").Name())
}
