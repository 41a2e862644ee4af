package models

import "time"

// OutingType distinguishes same-day local outings from multi-day hometown visits.
type OutingType string

const (
	OutingTypeLocal    OutingType = "local"
	OutingTypeHometown OutingType = "hometown"
)

// ApprovalStage identifies the role currently responsible for a request.
type ApprovalStage string

const (
	StageAdvisor   ApprovalStage = "advisor"
	StageHOD       ApprovalStage = "hod"
	StageWarden    ApprovalStage = "warden"
	StageCompleted ApprovalStage = "completed"
)

// RequestStatus is the terminal-or-pending outcome, independent of the active stage.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// DecisionAction is the verdict an approver records at a stage.
type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionReject  DecisionAction = "reject"
)

// InitialStage returns the stage a freshly submitted request enters.
// Local outings go straight to the warden; hometown visits start with the advisor.
func (t OutingType) InitialStage() ApprovalStage {
	if t == OutingTypeLocal {
		return StageWarden
	}
	return StageAdvisor
}

// OutingRequest is a student's exit request moving through the approval chain.
type OutingRequest struct {
	ID                string        `db:"id" json:"id"`
	StudentID         string        `db:"student_id" json:"student_id"`
	OutingType        OutingType    `db:"outing_type" json:"outing_type"`
	Destination       string        `db:"destination" json:"destination"`
	FromDate          time.Time     `db:"from_date" json:"from_date"`
	ToDate            time.Time     `db:"to_date" json:"to_date"`
	FromTime          *string       `db:"from_time" json:"from_time,omitempty"`
	ToTime            *string       `db:"to_time" json:"to_time,omitempty"`
	Reason            string        `db:"reason" json:"reason"`
	ContactPerson     *string       `db:"contact_person" json:"contact_person,omitempty"`
	ContactPhone      *string       `db:"contact_phone" json:"contact_phone,omitempty"`
	CurrentStage      ApprovalStage `db:"current_stage" json:"current_stage"`
	FinalStatus       RequestStatus `db:"final_status" json:"final_status"`
	AdvisorApprovedBy *string       `db:"advisor_approved_by" json:"advisor_approved_by,omitempty"`
	AdvisorApprovedAt *time.Time    `db:"advisor_approved_at" json:"advisor_approved_at,omitempty"`
	HODApprovedBy     *string       `db:"hod_approved_by" json:"hod_approved_by,omitempty"`
	HODApprovedAt     *time.Time    `db:"hod_approved_at" json:"hod_approved_at,omitempty"`
	WardenApprovedBy  *string       `db:"warden_approved_by" json:"warden_approved_by,omitempty"`
	WardenApprovedAt  *time.Time    `db:"warden_approved_at" json:"warden_approved_at,omitempty"`
	RejectedBy        *string       `db:"rejected_by" json:"rejected_by,omitempty"`
	RejectedAt        *time.Time    `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectionReason   *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the request can accept further decisions.
func (r *OutingRequest) Terminal() bool {
	return r.FinalStatus != StatusPending
}

// ViewerScope captures the identity a read view is shaped for.
// HODs carry a department; students only ever see their own rows.
type ViewerScope struct {
	Role         UserRole
	UserID       string
	DepartmentID string
}

// OutingFilter narrows list queries over outing requests.
type OutingFilter struct {
	Status     []RequestStatus
	Stage      ApprovalStage
	OutingType OutingType
	StudentID  string
	Scope      *ViewerScope
	Limit      int
	Offset     int
}

// OutingStats aggregates counts over a viewer's entitled set.
type OutingStats struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
	Local    int `db:"local" json:"local"`
	Hometown int `db:"hometown" json:"hometown"`
}
