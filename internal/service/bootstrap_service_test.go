package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type bootstrapUserStub struct {
	byEmail  map[string]*models.User
	created  *models.User
	resetIDs []string
	audits   []*models.AuditLog
}

func (s *bootstrapUserStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *bootstrapUserStub) Create(_ context.Context, user *models.User) error {
	s.created = user
	return nil
}

func (s *bootstrapUserStub) UpdatePassword(_ context.Context, id, _ string, _ time.Time) error {
	s.resetIDs = append(s.resetIDs, id)
	return nil
}

func (s *bootstrapUserStub) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.audits = append(s.audits, log)
	return nil
}

type bootstrapProfileStub struct {
	admin    *models.Profile
	created  *models.Profile
	promoted []string
}

func (s *bootstrapProfileStub) GetByEmail(_ context.Context, _ string) (*models.Profile, error) {
	return nil, nil
}

func (s *bootstrapProfileStub) FindByRole(_ context.Context, role models.UserRole) (*models.Profile, error) {
	if role == models.RoleAdmin {
		return s.admin, nil
	}
	return nil, nil
}

func (s *bootstrapProfileStub) Create(_ context.Context, profile *models.Profile) error {
	s.created = profile
	return nil
}

func (s *bootstrapProfileStub) Promote(_ context.Context, userID string, _ models.UserRole) error {
	s.promoted = append(s.promoted, userID)
	return nil
}

func newBootstrapFixture(enabled bool) (*BootstrapService, *bootstrapUserStub, *bootstrapProfileStub) {
	users := &bootstrapUserStub{byEmail: map[string]*models.User{}}
	profiles := &bootstrapProfileStub{}
	svc := NewBootstrapService(users, profiles, nil, zap.NewNop(), BootstrapConfig{Enabled: enabled})
	return svc, users, profiles
}

func TestBootstrapAdminCreatesFirstAdmin(t *testing.T) {
	svc, users, profiles := newBootstrapFixture(true)

	result, err := svc.BootstrapAdmin(context.Background(), dto.BootstrapAdminRequest{
		Email:    "admin@hostel.edu",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, dto.BootstrapOutcomeCreated, result.Outcome)
	require.NotNil(t, users.created)
	require.Equal(t, models.RoleAdmin, users.created.Role)
	require.True(t, users.created.Active)
	require.NotNil(t, profiles.created)
	require.True(t, profiles.created.IsApproved)
	require.Len(t, users.audits, 1)
}

func TestBootstrapAdminResetsOwnPassword(t *testing.T) {
	svc, users, profiles := newBootstrapFixture(true)
	users.byEmail["admin@hostel.edu"] = &models.User{ID: "admin-1", Email: "admin@hostel.edu", Role: models.RoleAdmin}
	profiles.admin = &models.Profile{UserID: "admin-1", Role: models.RoleAdmin}

	result, err := svc.BootstrapAdmin(context.Background(), dto.BootstrapAdminRequest{
		Email:    "admin@hostel.edu",
		Password: "new-s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, dto.BootstrapOutcomePasswordReset, result.Outcome)
	require.Equal(t, []string{"admin-1"}, users.resetIDs)
	require.Nil(t, users.created)
}

func TestBootstrapAdminRefusesSecondAdmin(t *testing.T) {
	svc, users, profiles := newBootstrapFixture(true)
	profiles.admin = &models.Profile{UserID: "admin-1", Role: models.RoleAdmin}

	_, err := svc.BootstrapAdmin(context.Background(), dto.BootstrapAdminRequest{
		Email:    "other@hostel.edu",
		Password: "s3cret-pass",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.Empty(t, users.resetIDs)
	require.Nil(t, users.created)
}

func TestBootstrapAdminPromotesExistingAccount(t *testing.T) {
	svc, users, profiles := newBootstrapFixture(true)
	users.byEmail["warden@hostel.edu"] = &models.User{ID: "user-7", Email: "warden@hostel.edu", Role: models.RoleWarden}

	result, err := svc.BootstrapAdmin(context.Background(), dto.BootstrapAdminRequest{
		Email:    "warden@hostel.edu",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, dto.BootstrapOutcomePromoted, result.Outcome)
	require.Equal(t, []string{"user-7"}, users.resetIDs)
	require.Equal(t, []string{"user-7"}, profiles.promoted)
}

func TestBootstrapAdminDisabled(t *testing.T) {
	svc, _, _ := newBootstrapFixture(false)

	_, err := svc.BootstrapAdmin(context.Background(), dto.BootstrapAdminRequest{
		Email:    "admin@hostel.edu",
		Password: "s3cret-pass",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBootstrapAdminRejectsShortPassword(t *testing.T) {
	svc, users, _ := newBootstrapFixture(true)

	_, err := svc.BootstrapAdmin(context.Background(), dto.BootstrapAdminRequest{
		Email:    "admin@hostel.edu",
		Password: "short",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Nil(t, users.created)
}
