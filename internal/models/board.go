package models

import "time"

// Notice is a staff-posted announcement, optionally targeted at roles.
type Notice struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Content     string     `db:"content" json:"content"`
	PostedBy    string     `db:"posted_by" json:"posted_by"`
	TargetRoles []byte     `db:"target_roles" json:"-"`
	IsUrgent    bool       `db:"is_urgent" json:"is_urgent"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ComplaintStatus tracks a complaint through staff handling.
type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

// Complaint is a student-filed issue report.
type Complaint struct {
	ID          string          `db:"id" json:"id"`
	StudentID   string          `db:"student_id" json:"student_id"`
	Category    string          `db:"category" json:"category"`
	Subject     string          `db:"subject" json:"subject"`
	Description string          `db:"description" json:"description"`
	PhotoURL    *string         `db:"photo_url" json:"photo_url,omitempty"`
	Status      ComplaintStatus `db:"status" json:"status"`
	ResolvedBy  *string         `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
