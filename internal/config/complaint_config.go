package config

import "time"

// Storage keys, one per persisted collection.
const (
	KeyUser        = "scs_user"
	KeyAuthToken   = "scs_auth_token"
	KeyCommunities = "scs_communities"
	KeyComplaints  = "scs_complaints"
	KeyStaff       = "scs_staff"
	KeyAuditLogs   = "scs_audit_logs"
	KeyAllUsers    = "scs_all_users"
	KeyInitialized = "scs_initialized"
)

// StorageKeys lists every key the application writes.
var StorageKeys = []string{
	KeyUser,
	KeyAuthToken,
	KeyCommunities,
	KeyComplaints,
	KeyStaff,
	KeyAuditLogs,
	KeyAllUsers,
	KeyInitialized,
}

const (
	// Validation
	MinPasswordLength = 8
	MaxImageSize      = 5 * 1024 * 1024

	// Invite codes
	InviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	InviteCodeLength   = 8

	// Realtime
	DefaultPollInterval        = 3 * time.Second
	DefaultNotificationTimeout = 5 * time.Second

	// Session
	DefaultTokenTTL = 24 * time.Hour
	TokenIssuer     = "complaintdesk"

	UnknownCommunityName = "Unknown Community"
)

// AllowedImageTypes are the MIME types accepted for complaint photos.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ComplaintCategories is the suggested category list. Categories are open:
// anything non-empty is accepted and "Other" is the catch-all.
var ComplaintCategories = []string{
	"Infrastructure",
	"Cleanliness",
	"Security",
	"Utilities",
	"Maintenance",
	"Noise",
	"Other",
}

var CategoryBadges = map[string]string{
	"Infrastructure": "primary",
	"Cleanliness":    "info",
	"Security":       "danger",
	"Utilities":      "warning",
	"Maintenance":    "primary",
	"Noise":          "warning",
	"Other":          "secondary",
}

var PriorityBadges = map[string]string{
	"Low":    "primary",
	"Medium": "info",
	"High":   "warning",
	"Urgent": "danger",
}

var StatusBadges = map[string]string{
	"Pending":     "warning",
	"In Progress": "info",
	"On Hold":     "warning",
	"Resolved":    "success",
}

// StatusProgress maps a complaint status to a completion percentage.
var StatusProgress = map[string]int{
	"Pending":     0,
	"In Progress": 50,
	"On Hold":     25,
	"Resolved":    100,
}

// DefaultBadge is used for anything missing from the badge tables.
const DefaultBadge = "secondary"
