package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type bootstrapUserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type bootstrapProfileStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindByRole(ctx context.Context, role models.UserRole) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Promote(ctx context.Context, userID string, role models.UserRole) error
}

// BootstrapConfig gates the first-admin escape hatch.
type BootstrapConfig struct {
	Enabled bool
}

// BootstrapService repairs or seeds the initial administrator account.
// All branches are idempotent so the endpoint can be retried safely.
type BootstrapService struct {
	users     bootstrapUserStore
	profiles  bootstrapProfileStore
	validator *validator.Validate
	logger    *zap.Logger
	config    BootstrapConfig
}

// NewBootstrapService constructs a BootstrapService.
func NewBootstrapService(users bootstrapUserStore, profiles bootstrapProfileStore, validate *validator.Validate, logger *zap.Logger, config BootstrapConfig) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BootstrapService{users: users, profiles: profiles, validator: validate, logger: logger, config: config}
}

// BootstrapAdmin ensures an administrator account exists for the given email.
// Exactly one of four branches applies:
//   - the email already belongs to an admin: reset its password
//   - a different admin already exists: refuse with a conflict
//   - the email belongs to an existing non-admin account: promote it
//   - no account exists: create the admin user and profile
func (s *BootstrapService) BootstrapAdmin(ctx context.Context, req dto.BootstrapAdminRequest) (*dto.BootstrapAdminResult, error) {
	if !s.config.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin bootstrap is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bootstrap payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	existingAdmin, err := s.profiles.FindByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up existing admin")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up user")
	}

	switch {
	case user != nil && user.Role == models.RoleAdmin:
		// Same admin retrying: reset the password.
		if err := s.users.UpdatePassword(ctx, user.ID, string(hash), time.Now().UTC()); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset admin password")
		}
		s.recordAudit(ctx, user.ID, dto.BootstrapOutcomePasswordReset)
		return &dto.BootstrapAdminResult{Outcome: dto.BootstrapOutcomePasswordReset, UserID: user.ID}, nil

	case existingAdmin != nil:
		return nil, appErrors.Clone(appErrors.ErrConflict, "an administrator account already exists")

	case user != nil:
		// Known account under a different role: promote it.
		if err := s.users.UpdatePassword(ctx, user.ID, string(hash), time.Now().UTC()); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set admin password")
		}
		if err := s.profiles.Promote(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote profile")
		}
		s.recordAudit(ctx, user.ID, dto.BootstrapOutcomePromoted)
		return &dto.BootstrapAdminResult{Outcome: dto.BootstrapOutcomePromoted, UserID: user.ID}, nil

	default:
		fullName := req.FullName
		if fullName == "" {
			fullName = "Administrator"
		}
		newUser := &models.User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			PasswordHash: string(hash),
			FullName:     fullName,
			Role:         models.RoleAdmin,
			Active:       true,
		}
		if err := s.users.Create(ctx, newUser); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin user")
		}
		profile := &models.Profile{
			UserID:     newUser.ID,
			Email:      newUser.Email,
			FullName:   newUser.FullName,
			Role:       models.RoleAdmin,
			IsApproved: true,
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin profile")
		}
		s.recordAudit(ctx, newUser.ID, dto.BootstrapOutcomeCreated)
		return &dto.BootstrapAdminResult{Outcome: dto.BootstrapOutcomeCreated, UserID: newUser.ID}, nil
	}
}

func (s *BootstrapService) recordAudit(ctx context.Context, userID, outcome string) {
	payload, _ := json.Marshal(map[string]string{"outcome": outcome})
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionAdminBootstrap,
		Resource:   "bootstrap",
		ResourceID: &userID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to write bootstrap audit log", zap.Error(err))
	}
}
