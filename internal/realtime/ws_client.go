package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/apex/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var errSlowClient = errors.New("client send buffer full")

// Event is the envelope written to stream subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WebSocketClient streams bus events to one connected user.
type WebSocketClient struct {
	UserID string
	Staff  bool
	Conn   *websocket.Conn
	Send   chan Event

	mu          sync.Mutex
	closed      bool
	unsubscribe []func()
}

func NewWebSocketClient(conn *websocket.Conn, user models.User) *WebSocketClient {
	return &WebSocketClient{
		UserID: user.ID,
		Staff:  user.IsStaff(),
		Conn:   conn,
		Send:   make(chan Event, sendBuffer),
	}
}

func (c *WebSocketClient) enqueue(typ string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.Send <- Event{Type: typ, Payload: payload}:
		return nil
	default:
		return errSlowClient
	}
}

// Attach subscribes the client to the topics its user may see. Staff also
// receive every complaint update and the analytics refresh.
func (c *WebSocketClient) Attach(bus *Bus) {
	subs := []func(){
		bus.Notification.Subscribe(func(n models.Notification) error {
			if !n.VisibleTo(c.UserID) {
				return nil
			}
			return c.enqueue(EventNotification, n)
		}),
		bus.NotificationRemoved.Subscribe(func(n models.Notification) error {
			if !n.VisibleTo(c.UserID) {
				return nil
			}
			return c.enqueue(EventNotificationRemoved, n.ID)
		}),
		bus.NotificationRead.Subscribe(func(n models.Notification) error {
			if !n.VisibleTo(c.UserID) {
				return nil
			}
			return c.enqueue(EventNotificationRead, n.ID)
		}),
	}
	if c.Staff {
		subs = append(subs,
			bus.ComplaintUpdated.Subscribe(func(cm models.Complaint) error {
				return c.enqueue(EventComplaintUpdated, cm)
			}),
			bus.AnalyticsUpdate.Subscribe(func(a models.Analytics) error {
				return c.enqueue(EventAnalyticsUpdate, a)
			}),
		)
	} else {
		subs = append(subs, bus.UserComplaints(c.UserID).Subscribe(func(cm models.Complaint) error {
			return c.enqueue(EventComplaintUpdated, cm)
		}))
	}

	c.mu.Lock()
	c.unsubscribe = append(c.unsubscribe, subs...)
	c.mu.Unlock()
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close detaches the client from the bus and stops the write pump.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.unsubscribe
	c.unsubscribe = nil
	close(c.Send)
	c.mu.Unlock()

	for _, unsubscribe := range subs {
		unsubscribe()
	}
}

// readPump only watches for pongs and the peer going away; the stream is
// one-way.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("user", c.UserID).Warn("websocket closed unexpectedly")
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.WithError(err).WithField("user", c.UserID).Error("could not encode event")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
