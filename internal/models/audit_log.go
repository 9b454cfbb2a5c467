package models

import "time"

// AuditAction tags the administrative mutation an audit entry records.
type AuditAction string

const (
	ActionCreateCommunity    AuditAction = "CREATE_COMMUNITY"
	ActionUpdateCommunity    AuditAction = "UPDATE_COMMUNITY"
	ActionDeleteCommunity    AuditAction = "DELETE_COMMUNITY"
	ActionAddMember          AuditAction = "ADD_MEMBER"
	ActionRemoveMember       AuditAction = "REMOVE_MEMBER"
	ActionAssignComplaint    AuditAction = "ASSIGN_COMPLAINT"
	ActionUpdateStatus       AuditAction = "UPDATE_STATUS"
	ActionAddNote            AuditAction = "ADD_NOTE"
	ActionAddResolutionProof AuditAction = "ADD_RESOLUTION_PROOF"
	ActionAssignStaff        AuditAction = "ASSIGN_STAFF"
)

// Entity types referenced by audit entries.
const (
	EntityCommunity = "Community"
	EntityComplaint = "Complaint"
	EntityStaff     = "Staff"
)

// AuditLogEntry is an immutable record of one privileged mutation.
type AuditLogEntry struct {
	ID         string      `json:"id"`
	AdminID    string      `json:"adminId"`
	Action     AuditAction `json:"action"`
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityId"`
	// Changes is action dependent: before/after, from/to or a delta.
	Changes   map[string]any `json:"changes"`
	Timestamp time.Time      `json:"timestamp"`
}
