package handler

import (
	"fmt"
	"net/http"
	"time"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type complaintQuery struct {
	Status       string `form:"status"`
	Category     string `form:"category"`
	Priority     string `form:"priority"`
	HighPriority bool   `form:"highPriority"`
	CommunityID  string `form:"communityId"`
	AssignedTo   string `form:"assignedTo"`
	Unassigned   bool   `form:"unassigned"`
	DateFrom     string `form:"dateFrom"`
	DateTo       string `form:"dateTo"`
}

// parseBound accepts RFC 3339 or a plain date. A plain upper bound covers
// the whole day.
func parseBound(field, value string, upper bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, models.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a date", value)}
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (q complaintQuery) filter() (complaint.Filter, error) {
	f := complaint.Filter{
		Status:       models.ComplaintStatus(q.Status),
		Category:     q.Category,
		Priority:     models.Priority(q.Priority),
		HighPriority: q.HighPriority,
		CommunityID:  q.CommunityID,
		AssignedTo:   q.AssignedTo,
		Unassigned:   q.Unassigned,
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, models.ValidationError{Field: "status", Message: "unknown status " + q.Status}
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return f, models.ValidationError{Field: "priority", Message: "unknown priority " + q.Priority}
	}
	var err error
	if f.DateFrom, err = parseBound("dateFrom", q.DateFrom, false); err != nil {
		return f, err
	}
	if f.DateTo, err = parseBound("dateTo", q.DateTo, true); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	var in complaint.NewComplaint
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.Complaints.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint.Display(created))
}

// ListComplaints returns the filtered collection. Residents only ever see
// their own complaints.
func (h *Handler) ListComplaints(c *gin.Context) {
	var q complaintQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	f, err := q.filter()
	if err != nil {
		respondError(c, err)
		return
	}
	if actor := currentActor(c); !actor.IsStaff() {
		f.UserID = actor.ID
	}
	c.JSON(http.StatusOK, complaint.DisplayAll(h.Complaints.Query(f)))
}

func (h *Handler) MyComplaints(c *gin.Context) {
	c.JSON(http.StatusOK, complaint.DisplayAll(h.Complaints.ForUser(currentActor(c).ID)))
}

func (h *Handler) MyStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Complaints.Stats(currentActor(c).ID))
}

func (h *Handler) GetComplaint(c *gin.Context) {
	found, err := h.Complaints.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if actor := currentActor(c); !actor.IsStaff() && found.UserID != actor.ID {
		respondError(c, models.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, complaint.Display(found))
}

type statusRequest struct {
	Status models.ComplaintStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondComplaint(c)(h.Complaints.TransitionStatus(c.Request.Context(), c.Param("id"), req.Status))
}

type assignRequest struct {
	AssignedTo string `json:"assignedTo"`
}

func (h *Handler) AssignComplaint(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondComplaint(c)(h.Complaints.Assign(c.Request.Context(), c.Param("id"), req.AssignedTo))
}

type noteRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) AddNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondComplaint(c)(h.Complaints.AppendNote(c.Request.Context(), c.Param("id"), req.Text))
}

type proofRequest struct {
	Proof string `json:"proof" binding:"required"`
}

func (h *Handler) AttachProof(c *gin.Context) {
	var req proofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondComplaint(c)(h.Complaints.AttachResolutionProof(c.Request.Context(), c.Param("id"), req.Proof))
}

func (h *Handler) respondComplaint(c *gin.Context) func(models.Complaint, error) {
	return func(updated models.Complaint, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, complaint.Display(updated))
	}
}

// Analytics is staff-only and may be scoped with ?communityId=.
func (h *Handler) Analytics(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.Complaints.Analytics(c.Query("communityId")))
}
