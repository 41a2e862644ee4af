package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

func pendingRequest(outingType models.OutingType, stage models.ApprovalStage) models.OutingRequest {
	return models.OutingRequest{
		ID:           "req-1",
		StudentID:    "student-1",
		OutingType:   outingType,
		CurrentStage: stage,
		FinalStatus:  models.StatusPending,
	}
}

func TestApplyDecisionLocalWardenApproves(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	req := pendingRequest(models.OutingTypeLocal, models.StageWarden)

	result, err := applyDecision(req, "warden-1", models.RoleWarden, models.ActionApprove, "have a safe trip", false, now)
	require.NoError(t, err)

	require.Equal(t, models.StatusApproved, result.request.FinalStatus)
	require.Equal(t, models.StageWarden, result.request.CurrentStage)
	require.Equal(t, "warden-1", *result.request.WardenApprovedBy)
	require.Equal(t, now, *result.request.WardenApprovedAt)

	require.Equal(t, models.StageWarden, result.history.Stage)
	require.Equal(t, models.HistoryActionApproved, result.history.Action)
	require.Equal(t, "have a safe trip", *result.history.Comments)
}

func TestApplyDecisionHometownFullChain(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	req := pendingRequest(models.OutingTypeHometown, models.StageAdvisor)

	first, err := applyDecision(req, "advisor-1", models.RoleAdvisor, models.ActionApprove, "", false, now)
	require.NoError(t, err)
	require.Equal(t, models.StageHOD, first.request.CurrentStage)
	require.Equal(t, models.StatusPending, first.request.FinalStatus)
	require.Equal(t, models.StageAdvisor, first.history.Stage)
	require.Nil(t, first.history.Comments)

	second, err := applyDecision(first.request, "hod-1", models.RoleHOD, models.ActionApprove, "", false, now)
	require.NoError(t, err)
	require.Equal(t, models.StageWarden, second.request.CurrentStage)
	require.Equal(t, models.StatusPending, second.request.FinalStatus)
	require.Equal(t, models.StageHOD, second.history.Stage)

	third, err := applyDecision(second.request, "warden-1", models.RoleWarden, models.ActionApprove, "", false, now)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, third.request.FinalStatus)
	require.Equal(t, "advisor-1", *third.request.AdvisorApprovedBy)
	require.Equal(t, "hod-1", *third.request.HODApprovedBy)
	require.Equal(t, "warden-1", *third.request.WardenApprovedBy)
}

func TestApplyDecisionRejectionIsTerminal(t *testing.T) {
	now := time.Now().UTC()
	req := pendingRequest(models.OutingTypeHometown, models.StageHOD)

	rejected, err := applyDecision(req, "hod-1", models.RoleHOD, models.ActionReject, "exams next week", false, now)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, rejected.request.FinalStatus)
	require.Equal(t, models.StageHOD, rejected.request.CurrentStage)
	require.Equal(t, "hod-1", *rejected.request.RejectedBy)
	require.Equal(t, "exams next week", *rejected.request.RejectionReason)
	require.Equal(t, models.HistoryActionRejected, rejected.history.Action)

	_, err = applyDecision(rejected.request, "warden-1", models.RoleWarden, models.ActionApprove, "", false, now)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInvalidStateTransition.Code, appErr.Code)
}

func TestApplyDecisionRoleMismatch(t *testing.T) {
	now := time.Now().UTC()
	req := pendingRequest(models.OutingTypeHometown, models.StageAdvisor)

	_, err := applyDecision(req, "warden-1", models.RoleWarden, models.ActionApprove, "", false, now)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrUnauthorizedTransition.Code, appErr.Code)

	_, err = applyDecision(req, "student-1", models.RoleStudent, models.ActionApprove, "", false, now)
	require.Error(t, err)
}

func TestApplyDecisionAdminOverride(t *testing.T) {
	now := time.Now().UTC()
	req := pendingRequest(models.OutingTypeHometown, models.StageAdvisor)

	_, err := applyDecision(req, "admin-1", models.RoleAdmin, models.ActionApprove, "", false, now)
	require.Error(t, err)

	result, err := applyDecision(req, "admin-1", models.RoleAdmin, models.ActionApprove, "", true, now)
	require.NoError(t, err)
	require.Equal(t, models.StageHOD, result.request.CurrentStage)
	require.Equal(t, "admin-1", *result.request.AdvisorApprovedBy)
}

func TestApplyDecisionApprovedRequestCannotBeRedecided(t *testing.T) {
	now := time.Now().UTC()
	req := pendingRequest(models.OutingTypeLocal, models.StageWarden)

	approved, err := applyDecision(req, "warden-1", models.RoleWarden, models.ActionApprove, "", false, now)
	require.NoError(t, err)

	_, err = applyDecision(approved.request, "warden-1", models.RoleWarden, models.ActionReject, "", false, now)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrInvalidStateTransition.Code, appErr.Code)
}

func TestApplyDecisionUnknownAction(t *testing.T) {
	now := time.Now().UTC()
	req := pendingRequest(models.OutingTypeLocal, models.StageWarden)

	_, err := applyDecision(req, "warden-1", models.RoleWarden, models.DecisionAction("escalate"), "", false, now)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
