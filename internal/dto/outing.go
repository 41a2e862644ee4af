package dto

import "github.com/noah-isme/hostel-outing-api/internal/models"

// CreateOutingRequest is the intake payload for a new exit request.
// Dates use YYYY-MM-DD, times HH:MM (24h).
type CreateOutingRequest struct {
	OutingType    string `json:"outing_type" validate:"required,oneof=local hometown"`
	Destination   string `json:"destination" validate:"required"`
	FromDate      string `json:"from_date" validate:"required"`
	ToDate        string `json:"to_date" validate:"required"`
	FromTime      string `json:"from_time,omitempty"`
	ToTime        string `json:"to_time,omitempty"`
	Reason        string `json:"reason" validate:"required"`
	ContactPerson string `json:"contact_person,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
}

// DecisionRequest records an approver's verdict on a pending request.
type DecisionRequest struct {
	Action  string `json:"action" validate:"required,oneof=approve reject"`
	Comment string `json:"comment,omitempty"`
}

// OutingQuery filters list endpoints.
type OutingQuery struct {
	Status     []models.RequestStatus
	Stage      models.ApprovalStage
	OutingType models.OutingType
	Limit      int
	Offset     int
}

// HistoryQuery filters the approval audit trail.
type HistoryQuery struct {
	RequestID string
	Stage     models.ApprovalStage
	From      string
	To        string
	Limit     int
	Offset    int
}
