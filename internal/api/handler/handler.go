// Package handler is the HTTP shell over the complaint desk services.
package handler

import (
	"errors"
	"net/http"

	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/community"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/realtime"
	"complaintdesk/backend/internal/session"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Handler holds the services every route works against.
type Handler struct {
	Directory   *session.Directory
	Issuer      *session.Issuer
	Complaints  *complaint.Service
	Communities *community.Service
	Audit       *audit.Log
	Center      *realtime.Center
	Bus         *realtime.Bus
}

func NewHandler(
	dir *session.Directory,
	issuer *session.Issuer,
	complaints *complaint.Service,
	communities *community.Service,
	auditLog *audit.Log,
	center *realtime.Center,
	bus *realtime.Bus,
) *Handler {
	return &Handler{
		Directory:   dir,
		Issuer:      issuer,
		Complaints:  complaints,
		Communities: communities,
		Audit:       auditLog,
		Center:      center,
		Bus:         bus,
	}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	api := r.Group("/", h.Authenticate())
	api.GET("/me", h.Me)
	api.PATCH("/me", h.UpdateMe)

	api.POST("/complaints", h.CreateComplaint)
	api.GET("/complaints", h.ListComplaints)
	api.GET("/complaints/mine", h.MyComplaints)
	api.GET("/complaints/stats", h.MyStats)
	api.GET("/complaints/:id", h.GetComplaint)
	api.PATCH("/complaints/:id/status", h.UpdateStatus)
	api.PATCH("/complaints/:id/assign", h.AssignComplaint)
	api.POST("/complaints/:id/notes", h.AddNote)
	api.PUT("/complaints/:id/proof", h.AttachProof)
	api.GET("/analytics", h.Analytics)

	api.GET("/communities", h.ListCommunities)
	api.POST("/communities", h.CreateCommunity)
	api.GET("/communities/:id", h.GetCommunity)
	api.PATCH("/communities/:id", h.UpdateCommunity)
	api.DELETE("/communities/:id", h.DeleteCommunity)
	api.POST("/communities/:id/members", h.AddMember)
	api.DELETE("/communities/:id/members/:userId", h.RemoveMember)

	api.GET("/staff", h.ListStaff)
	api.PUT("/staff/:id/community", h.AssignStaff)

	api.GET("/audit", h.AuditLog)

	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)
	api.DELETE("/notifications/:id", h.DeleteNotification)

	api.GET("/ws", h.ServeWebSocket)
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrEmailTaken):
		status = http.StatusConflict
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// requireStaff aborts with 403 unless the actor is staff or admin.
func requireStaff(c *gin.Context) (*models.User, bool) {
	actor := currentActor(c)
	if !actor.IsStaff() {
		respondError(c, models.ErrForbidden)
		return nil, false
	}
	return actor, true
}

func requireAdmin(c *gin.Context) (*models.User, bool) {
	actor := currentActor(c)
	if !actor.IsAdmin() {
		respondError(c, models.ErrForbidden)
		return nil, false
	}
	return actor, true
}
