package service

import (
	"time"

	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

// transition is the computed outcome of one decision: the request with its
// workflow fields advanced, plus the single audit entry to append.
type transition struct {
	request models.OutingRequest
	history models.ApprovalHistoryEntry
}

// applyDecision computes the next workflow state for a request. It is pure:
// the caller persists the result atomically.
//
// Approval chain: local requests carry a single warden stage. Hometown
// requests progress advisor -> hod -> warden, and the warden decision is
// terminal; there is no escalation stage past warden.
func applyDecision(req models.OutingRequest, actorID string, actorRole models.UserRole, action models.DecisionAction, comment string, adminOverride bool, now time.Time) (*transition, error) {
	if req.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "request has already been decided")
	}

	stageRole := models.StageRole(req.CurrentStage)
	if stageRole == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "request is not awaiting a decision")
	}
	if actorRole != stageRole && !(adminOverride && actorRole == models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedTransition, "role "+string(actorRole)+" may not act at stage "+string(req.CurrentStage))
	}

	entry := models.ApprovalHistoryEntry{
		RequestID:  req.ID,
		ApproverID: actorID,
		Stage:      req.CurrentStage,
		CreatedAt:  now,
	}
	if comment != "" {
		entry.Comments = &comment
	}

	switch action {
	case models.ActionApprove:
		entry.Action = models.HistoryActionApproved
		switch req.CurrentStage {
		case models.StageAdvisor:
			req.AdvisorApprovedBy = &actorID
			req.AdvisorApprovedAt = &now
			req.CurrentStage = models.StageHOD
		case models.StageHOD:
			req.HODApprovedBy = &actorID
			req.HODApprovedAt = &now
			req.CurrentStage = models.StageWarden
		case models.StageWarden:
			req.WardenApprovedBy = &actorID
			req.WardenApprovedAt = &now
			req.FinalStatus = models.StatusApproved
		}
	case models.ActionReject:
		entry.Action = models.HistoryActionRejected
		req.FinalStatus = models.StatusRejected
		req.RejectedBy = &actorID
		req.RejectedAt = &now
		if comment != "" {
			req.RejectionReason = &comment
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown decision action")
	}

	return &transition{request: req, history: entry}, nil
}
