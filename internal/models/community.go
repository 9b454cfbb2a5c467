package models

import (
	"slices"
	"time"

	"github.com/lib/pq"
)

// Community is a residential community complaints are filed against.
type Community struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	// AdminID references the admin who owns the community.
	AdminID string `json:"adminId"`
	// Members is a set: an ID appears at most once.
	Members   pq.StringArray `json:"members"`
	CreatedAt time.Time      `json:"createdAt"`
	// InviteCode lets residents join without an admin.
	InviteCode string `json:"inviteLink"`
	// TotalComplaints is advisory and may drift from the live complaint count.
	TotalComplaints int `json:"totalComplaints"`
}

// HasMember reports whether userID is in the member set.
func (c *Community) HasMember(userID string) bool {
	return slices.Contains(c.Members, userID)
}

// Clone returns a copy that does not share the member slice.
func (c Community) Clone() Community {
	c.Members = slices.Clone(c.Members)
	if c.Members == nil {
		c.Members = pq.StringArray{}
	}
	return c
}

// Staff is a staff member and the community they are assigned to.
type Staff struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	// CommunityID is empty when the staff member is unassigned.
	CommunityID string `json:"communityId,omitempty"`
}
