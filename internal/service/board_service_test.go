package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type boardStoreStub struct {
	notices    []models.Notice
	complaints []models.Complaint
	lastStatus struct {
		id         string
		status     models.ComplaintStatus
		resolverID string
	}
}

func (s *boardStoreStub) CreateNotice(_ context.Context, notice *models.Notice) error {
	notice.ID = "notice-1"
	s.notices = append(s.notices, *notice)
	return nil
}

func (s *boardStoreStub) ListNotices(context.Context, models.UserRole, int) ([]models.Notice, error) {
	return s.notices, nil
}

func (s *boardStoreStub) DeleteNotice(context.Context, string) error {
	s.notices = nil
	return nil
}

func (s *boardStoreStub) CreateComplaint(_ context.Context, complaint *models.Complaint) error {
	complaint.ID = "complaint-1"
	s.complaints = append(s.complaints, *complaint)
	return nil
}

func (s *boardStoreStub) GetComplaint(_ context.Context, id string) (*models.Complaint, error) {
	for i := range s.complaints {
		if s.complaints[i].ID == id {
			copied := s.complaints[i]
			return &copied, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
}

func (s *boardStoreStub) ListComplaints(_ context.Context, studentID string, status models.ComplaintStatus, limit, offset int) ([]models.Complaint, error) {
	return s.complaints, nil
}

func (s *boardStoreStub) CountComplaints(context.Context, string, models.ComplaintStatus) (int, error) {
	return len(s.complaints), nil
}

func (s *boardStoreStub) UpdateComplaintStatus(_ context.Context, id string, status models.ComplaintStatus, resolverID string) error {
	s.lastStatus.id = id
	s.lastStatus.status = status
	s.lastStatus.resolverID = resolverID
	return nil
}

func TestCreateNoticeLimitedToAdminAndWarden(t *testing.T) {
	store := &boardStoreStub{}
	svc := NewBoardService(store, nil, nil, nil)
	req := dto.CreateNoticeRequest{Title: "Water maintenance", Content: "Supply off 2-4pm"}

	for _, role := range []models.UserRole{models.RoleAdvisor, models.RoleHOD, models.RolePrincipal, models.RoleStudent} {
		_, err := svc.CreateNotice(context.Background(), models.ViewerScope{Role: role, UserID: "u-1"}, req)
		require.Error(t, err, string(role))
		require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}
	require.Empty(t, store.notices)

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleWarden} {
		notice, err := svc.CreateNotice(context.Background(), models.ViewerScope{Role: role, UserID: "staff-1"}, req)
		require.NoError(t, err)
		require.Equal(t, "staff-1", notice.PostedBy)
	}
	require.Len(t, store.notices, 2)
}

func TestCreateNoticeRejectsUnknownTargetRole(t *testing.T) {
	svc := NewBoardService(&boardStoreStub{}, nil, nil, nil)

	_, err := svc.CreateNotice(context.Background(),
		models.ViewerScope{Role: models.RoleAdmin, UserID: "admin-1"},
		dto.CreateNoticeRequest{Title: "t", Content: "c", TargetRoles: []string{"janitor"}})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeleteNoticeAdminOnly(t *testing.T) {
	svc := NewBoardService(&boardStoreStub{}, nil, nil, nil)

	err := svc.DeleteNotice(context.Background(), models.ViewerScope{Role: models.RoleWarden, UserID: "warden-1"}, "notice-1")
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.DeleteNotice(context.Background(), models.ViewerScope{Role: models.RoleAdmin, UserID: "admin-1"}, "notice-1"))
}

func TestListComplaintsScopesStudentAndReportsTotal(t *testing.T) {
	store := &boardStoreStub{complaints: []models.Complaint{
		{ID: "complaint-1", StudentID: "student-1"},
		{ID: "complaint-2", StudentID: "student-1"},
	}}
	svc := NewBoardService(store, nil, nil, nil)

	complaints, total, err := svc.ListComplaints(context.Background(),
		models.ViewerScope{Role: models.RoleStudent, UserID: "student-1"}, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, complaints, 2)
	require.Equal(t, 2, total)
}

func TestUpdateComplaintStatusStaffOnly(t *testing.T) {
	store := &boardStoreStub{}
	svc := NewBoardService(store, nil, nil, nil)

	err := svc.UpdateComplaintStatus(context.Background(),
		models.ViewerScope{Role: models.RoleStudent, UserID: "student-1"},
		"complaint-1", dto.UpdateComplaintStatusRequest{Status: "resolved"})
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.UpdateComplaintStatus(context.Background(),
		models.ViewerScope{Role: models.RoleWarden, UserID: "warden-1"},
		"complaint-1", dto.UpdateComplaintStatusRequest{Status: "resolved"}))
	require.Equal(t, models.ComplaintResolved, store.lastStatus.status)
	require.Equal(t, "warden-1", store.lastStatus.resolverID)
}
