package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type authRepoStub struct {
	usersByEmail  map[string]*models.User
	usersByID     map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	createdTokens []*models.RefreshToken
	revokedIDs    []string
	revokedUsers  []string
	lastLoginID   string
	passwordSet   string
	audits        []*models.AuditLog
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		usersByEmail:  map[string]*models.User{},
		usersByID:     map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
	}
}

func (s *authRepoStub) addUser(u *models.User) {
	s.usersByEmail[u.Email] = u
	s.usersByID[u.ID] = u
}

func (s *authRepoStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdateLastLogin(_ context.Context, id string, _ time.Time) error {
	s.lastLoginID = id
	return nil
}

func (s *authRepoStub) UpdatePassword(_ context.Context, _, passwordHash string, _ time.Time) error {
	s.passwordSet = passwordHash
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

func (s *authRepoStub) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.refreshTokens[token.Token] = token
	s.createdTokens = append(s.createdTokens, token)
	return nil
}

func (s *authRepoStub) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.refreshTokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	s.revokedIDs = append(s.revokedIDs, id)
	return nil
}

func (s *authRepoStub) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.audits = append(s.audits, log)
	return nil
}

func newTestAuthService(repo *authRepoStub) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "hostel-outing-api",
	})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginIssuesTokenPair(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addUser(&models.User{
		ID:           "user-1",
		Email:        "warden@hostel.edu",
		FullName:     "Head Warden",
		PasswordHash: hashPassword(t, "correct horse"),
		Role:         models.RoleWarden,
		Active:       true,
	})
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "warden@hostel.edu", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "user-1", resp.User.ID)
	require.Equal(t, models.RoleWarden, resp.User.Role)
	require.Equal(t, "user-1", repo.lastLoginID)
	require.Len(t, repo.createdTokens, 1)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleWarden, claims.Role)
	require.Equal(t, "hostel-outing-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addUser(&models.User{
		ID:           "user-1",
		Email:        "warden@hostel.edu",
		PasswordHash: hashPassword(t, "correct horse"),
		Role:         models.RoleWarden,
		Active:       true,
	})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "warden@hostel.edu", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	require.Empty(t, repo.createdTokens)
}

func TestAuthServiceLoginUnknownEmailSameError(t *testing.T) {
	svc := newTestAuthService(newAuthRepoStub())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@hostel.edu", Password: "whatever8"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addUser(&models.User{
		ID:           "user-1",
		Email:        "old@hostel.edu",
		PasswordHash: hashPassword(t, "correct horse"),
		Role:         models.RoleStudent,
		Active:       false,
	})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "old@hostel.edu", Password: "correct horse"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addUser(&models.User{ID: "user-1", Email: "warden@hostel.edu", Role: models.RoleWarden, Active: true})
	repo.refreshTokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := newTestAuthService(repo)

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEqual(t, "old-token", resp.RefreshToken)
	require.Equal(t, []string{"rt-1"}, repo.revokedIDs)
	require.Len(t, repo.createdTokens, 1)
}

func TestAuthServiceRefreshRejectsExpired(t *testing.T) {
	repo := newAuthRepoStub()
	repo.refreshTokens["stale"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	svc := newTestAuthService(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutChecksOwnership(t *testing.T) {
	repo := newAuthRepoStub()
	repo.refreshTokens["token-a"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "token-a",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := newTestAuthService(repo)

	err := svc.Logout(context.Background(), "token-a", "someone-else", models.LoginRequest{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	require.Empty(t, repo.revokedIDs)

	err = svc.Logout(context.Background(), "token-a", "user-1", models.LoginRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"rt-1"}, repo.revokedIDs)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addUser(&models.User{
		ID:           "user-1",
		Email:        "warden@hostel.edu",
		PasswordHash: hashPassword(t, "old password"),
		Role:         models.RoleWarden,
		Active:       true,
	})
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "old password",
		NewPassword: "new password 1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.passwordSet)
	require.Equal(t, []string{"user-1"}, repo.revokedUsers)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong old",
		NewPassword: "another new 1",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := newAuthRepoStub()
	repo.addUser(&models.User{
		ID:           "user-1",
		Email:        "warden@hostel.edu",
		PasswordHash: hashPassword(t, "correct horse"),
		Role:         models.RoleWarden,
		Active:       true,
	})
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "warden@hostel.edu", Password: "correct horse"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: 15 * time.Minute,
	})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
