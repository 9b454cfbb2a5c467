package handler

import (
	"net/http"

	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/community"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListCommunities(c *gin.Context) {
	c.JSON(http.StatusOK, h.Communities.List())
}

func (h *Handler) GetCommunity(c *gin.Context) {
	found, err := h.Communities.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) CreateCommunity(c *gin.Context) {
	var in community.NewCommunity
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.Communities.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateCommunity(c *gin.Context) {
	var p community.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.Communities.Update(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCommunity(c *gin.Context) {
	if err := h.Communities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type memberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) AddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	added, err := h.Communities.AddMember(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": added})
}

func (h *Handler) RemoveMember(c *gin.Context) {
	removed, err := h.Communities.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": removed})
}

// ListStaff is staff-only and may be scoped with ?communityId=.
func (h *Handler) ListStaff(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	if id := c.Query("communityId"); id != "" {
		c.JSON(http.StatusOK, h.Communities.StaffForCommunity(id))
		return
	}
	c.JSON(http.StatusOK, h.Communities.Staff())
}

type staffAssignRequest struct {
	CommunityID string `json:"communityId"`
}

func (h *Handler) AssignStaff(c *gin.Context) {
	var req staffAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.Communities.AssignStaff(c.Request.Context(), c.Param("id"), req.CommunityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// AuditLog is admin-only. Filters: action, entityType, adminId.
func (h *Handler) AuditLog(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.Audit.Query(audit.Filter{
		Action:     models.AuditAction(c.Query("action")),
		EntityType: c.Query("entityType"),
		AdminID:    c.Query("adminId"),
	}))
}
