package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type profileStoreStub struct {
	profiles   map[string]*models.Profile
	listed     []models.Profile
	lastFilter models.ProfileFilter
	updated    *models.Profile
	reviewed   struct {
		userID   string
		approved *bool
		blocked  *bool
	}
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{profiles: map[string]*models.Profile{}}
}

func (s *profileStoreStub) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	if p, ok := s.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
}

func (s *profileStoreStub) List(_ context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	s.lastFilter = filter
	return s.listed, nil
}

func (s *profileStoreStub) Count(_ context.Context, filter models.ProfileFilter) (int, error) {
	return len(s.listed), nil
}

func (s *profileStoreStub) Update(_ context.Context, profile *models.Profile) error {
	s.updated = profile
	s.profiles[profile.UserID] = profile
	return nil
}

func (s *profileStoreStub) SetReviewFlags(_ context.Context, userID string, approved, blocked *bool) error {
	s.reviewed.userID = userID
	s.reviewed.approved = approved
	s.reviewed.blocked = blocked
	return nil
}

func newTestProfileService(store *profileStoreStub, audit *auditRepoStub) *ProfileService {
	return NewProfileService(store, audit, nil, nil, nil, zap.NewNop(), ProfileServiceConfig{})
}

func TestProfileUpdateRecomputesCompletion(t *testing.T) {
	store := newProfileStoreStub()
	store.profiles["student-1"] = &models.Profile{
		UserID:   "student-1",
		Role:     models.RoleStudent,
		FullName: "Asha Verma",
	}
	audit := &auditRepoStub{}
	svc := newTestProfileService(store, audit)

	phone := "9876543210"
	view, err := svc.Update(context.Background(), "student-1", dto.UpdateProfileRequest{
		FullName: "Asha Verma",
		Phone:    &phone,
	})
	require.NoError(t, err)
	require.Equal(t, 20, view.Completion)
	require.NotNil(t, store.updated)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionProfileUpdate, audit.logs[0].Action)
}

func TestProfileUpdateBlockedProfileRefused(t *testing.T) {
	store := newProfileStoreStub()
	store.profiles["student-1"] = &models.Profile{
		UserID:    "student-1",
		Role:      models.RoleStudent,
		FullName:  "Asha Verma",
		IsBlocked: true,
	}
	svc := newTestProfileService(store, &auditRepoStub{})

	_, err := svc.Update(context.Background(), "student-1", dto.UpdateProfileRequest{FullName: "Asha Verma"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	require.Nil(t, store.updated)
}

func TestProfileGetForStudentOwnOnly(t *testing.T) {
	store := newProfileStoreStub()
	store.profiles["student-2"] = &models.Profile{UserID: "student-2", Role: models.RoleStudent, FullName: "Other"}
	svc := newTestProfileService(store, &auditRepoStub{})

	_, err := svc.GetFor(context.Background(), models.ViewerScope{Role: models.RoleStudent, UserID: "student-1"}, "student-2")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	view, err := svc.GetFor(context.Background(), models.ViewerScope{Role: models.RoleWarden, UserID: "warden-1"}, "student-2")
	require.NoError(t, err)
	require.Equal(t, "student-2", view.UserID)
}

func TestProfileListScopesHODToDepartment(t *testing.T) {
	store := newProfileStoreStub()
	store.listed = []models.Profile{{UserID: "student-1", Role: models.RoleStudent, FullName: "Asha"}}
	svc := newTestProfileService(store, &auditRepoStub{})

	views, total, err := svc.List(context.Background(),
		models.ViewerScope{Role: models.RoleHOD, UserID: "hod-1", DepartmentID: "dept-cse"},
		models.ProfileFilter{DepartmentID: "dept-other"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "dept-cse", store.lastFilter.DepartmentID)
}

func TestProfileListForbiddenForStudents(t *testing.T) {
	svc := newTestProfileService(newProfileStoreStub(), &auditRepoStub{})

	_, _, err := svc.List(context.Background(), models.ViewerScope{Role: models.RoleStudent, UserID: "student-1"}, models.ProfileFilter{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProfileReviewRequiresAFlag(t *testing.T) {
	store := newProfileStoreStub()
	svc := newTestProfileService(store, &auditRepoStub{})

	err := svc.Review(context.Background(), "admin-1", "student-1", dto.ReviewProfileRequest{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	approved := true
	require.NoError(t, svc.Review(context.Background(), "admin-1", "student-1", dto.ReviewProfileRequest{Approved: &approved}))
	require.Equal(t, "student-1", store.reviewed.userID)
	require.NotNil(t, store.reviewed.approved)
	require.True(t, *store.reviewed.approved)
	require.Nil(t, store.reviewed.blocked)
}
