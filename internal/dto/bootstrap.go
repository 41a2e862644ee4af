package dto

// BootstrapAdminRequest seeds or repairs the first administrator account.
type BootstrapAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name,omitempty"`
}

// BootstrapAdminResult reports which idempotent branch was taken.
type BootstrapAdminResult struct {
	Outcome string `json:"outcome"`
	UserID  string `json:"user_id,omitempty"`
}

// Bootstrap outcomes.
const (
	BootstrapOutcomePasswordReset = "password_reset"
	BootstrapOutcomePromoted      = "promoted"
	BootstrapOutcomeCreated       = "created"
)
