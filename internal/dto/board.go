package dto

// CreateNoticeRequest posts a new notice to the board.
type CreateNoticeRequest struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	TargetRoles []string `json:"target_roles,omitempty"`
	IsUrgent    bool     `json:"is_urgent"`
	ExpiresAt   string   `json:"expires_at,omitempty"`
}

// CreateComplaintRequest files a student complaint.
type CreateComplaintRequest struct {
	Category    string `json:"category" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// UpdateComplaintStatusRequest moves a complaint through handling.
type UpdateComplaintStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved"`
}
