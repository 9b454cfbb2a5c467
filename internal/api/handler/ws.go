package handler

import (
	"net/http"

	"complaintdesk/backend/internal/realtime"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may connect; the bearer token is the gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and streams the events the actor
// is allowed to see.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	actor := currentActor(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := realtime.NewWebSocketClient(conn, *actor)
	client.Attach(h.Bus)
	client.Run()
	log.WithField("user", actor.ID).Info("websocket stream opened")
}
