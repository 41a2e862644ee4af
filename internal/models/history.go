package models

import "time"

// HistoryAction is the recorded outcome of one stage decision.
type HistoryAction string

const (
	HistoryActionApproved HistoryAction = "approved"
	HistoryActionRejected HistoryAction = "rejected"
)

// ApprovalHistoryEntry is an append-only audit record of a stage decision.
// Entries are never updated or deleted.
type ApprovalHistoryEntry struct {
	ID         string        `db:"id" json:"id"`
	RequestID  string        `db:"request_id" json:"request_id"`
	ApproverID string        `db:"approver_id" json:"approver_id"`
	Stage      ApprovalStage `db:"stage" json:"stage"`
	Action     HistoryAction `db:"action" json:"action"`
	Comments   *string       `db:"comments" json:"comments,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// HistoryFilter narrows audit trail queries.
type HistoryFilter struct {
	RequestID  string
	ApproverID string
	Stage      ApprovalStage
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
