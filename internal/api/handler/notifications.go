package handler

import (
	"net/http"

	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	actor := currentActor(c)
	c.JSON(http.StatusOK, gin.H{
		"notifications": h.Center.ListFor(actor.ID),
		"unread":        h.Center.UnreadCountFor(actor.ID),
	})
}

// visibleNotification aborts with 404 unless the actor may see id.
func (h *Handler) visibleNotification(c *gin.Context) (string, bool) {
	id := c.Param("id")
	n, ok := h.Center.Get(id)
	if !ok || !n.VisibleTo(currentActor(c).ID) {
		respondError(c, models.NotFoundError{Resource: "notification", ID: id})
		return "", false
	}
	return id, true
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := h.visibleNotification(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": h.Center.MarkRead(id)})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, ok := h.visibleNotification(c)
	if !ok {
		return
	}
	h.Center.Remove(id)
	c.Status(http.StatusNoContent)
}
