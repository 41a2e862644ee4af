package models

import "time"

// AuditAction constants represent platform actions to be logged.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionRequestCreate   = "REQUEST_CREATE"
	AuditActionRequestDecision = "REQUEST_DECISION"
	AuditActionProfileUpdate   = "PROFILE_UPDATE"
	AuditActionProfileReview   = "PROFILE_REVIEW"
	AuditActionAdminBootstrap  = "ADMIN_BOOTSTRAP"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionReferenceWrite  = "REFERENCE_WRITE"
	AuditActionComplaintStatus = "COMPLAINT_STATUS"
)

// AuditLog represents a platform audit trail record (distinct from the
// per-request approval history, which is the domain audit trail).
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
