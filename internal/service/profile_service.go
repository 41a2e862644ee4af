package service

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/storage"
)

type profileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	Count(ctx context.Context, filter models.ProfileFilter) (int, error)
	Update(ctx context.Context, profile *models.Profile) error
	SetReviewFlags(ctx context.Context, userID string, approved, blocked *bool) error
}

type photoStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Remove(filename string) error
}

// ProfileServiceConfig carries photo upload limits.
type ProfileServiceConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// ProfileService manages self-service profile maintenance and the admin
// review flow that gates outing eligibility.
type ProfileService struct {
	repo      profileStore
	audit     auditLogger
	photos    photoStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	config    ProfileServiceConfig
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileStore, audit auditLogger, photos photoStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, config ProfileServiceConfig) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.MaxFileSizeBytes <= 0 {
		config.MaxFileSizeBytes = 5 << 20
	}
	if len(config.AllowedMIMEs) == 0 {
		config.AllowedMIMEs = []string{"image/jpeg", "image/png"}
	}
	return &ProfileService{
		repo:      repo,
		audit:     audit,
		photos:    photos,
		signer:    signer,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Get returns the viewer's own profile with completion metadata.
func (s *ProfileService) Get(ctx context.Context, userID string) (*dto.ProfileView, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(profile), nil
}

// GetFor returns another user's profile, restricted to reviewer roles.
func (s *ProfileService) GetFor(ctx context.Context, viewer models.ViewerScope, userID string) (*dto.ProfileView, error) {
	if viewer.Role == models.RoleStudent && viewer.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only view their own profile")
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(profile), nil
}

// List returns profiles matching the filter together with the total
// matching count. Only staff roles may list.
func (s *ProfileService) List(ctx context.Context, viewer models.ViewerScope, filter models.ProfileFilter) ([]dto.ProfileView, int, error) {
	if viewer.Role == models.RoleStudent {
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "students cannot list profiles")
	}
	if viewer.Role == models.RoleHOD {
		filter.DepartmentID = viewer.DepartmentID
	}
	profiles, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]dto.ProfileView, 0, len(profiles))
	for i := range profiles {
		views = append(views, *s.view(&profiles[i]))
	}
	return views, total, nil
}

// Update applies the self-service editable fields to the caller's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.IsBlocked {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "blocked profiles cannot be edited")
	}

	profile.FullName = req.FullName
	profile.Phone = req.Phone
	profile.StudentID = req.StudentID
	profile.StaffID = req.StaffID
	profile.YearOfStudy = req.YearOfStudy
	profile.DepartmentID = req.DepartmentID
	profile.RoomID = req.RoomID
	profile.PermanentAddress = req.PermanentAddress
	profile.LocalAddress = req.LocalAddress
	profile.GuardianName = req.GuardianName
	profile.GuardianPhone = req.GuardianPhone

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, userID, models.AuditActionProfileUpdate, profile.UserID, map[string]interface{}{
		"completion": profile.CompletionPercent(),
	})
	return s.view(profile), nil
}

// Review applies the admin approval and block flags to a profile.
func (s *ProfileService) Review(ctx context.Context, reviewerID, userID string, req dto.ReviewProfileRequest) error {
	if req.Approved == nil && req.Blocked == nil {
		return appErrors.Clone(appErrors.ErrValidation, "at least one of approved or blocked must be set")
	}
	if err := s.repo.SetReviewFlags(ctx, userID, req.Approved, req.Blocked); err != nil {
		return err
	}
	fields := map[string]interface{}{}
	if req.Approved != nil {
		fields["approved"] = *req.Approved
	}
	if req.Blocked != nil {
		fields["blocked"] = *req.Blocked
	}
	s.recordAudit(ctx, reviewerID, models.AuditActionProfileReview, userID, fields)
	return nil
}

// UploadPhoto stores a profile photo and records its relative path.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID string, header *multipart.FileHeader) (*dto.ProfileView, error) {
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "photo file is required")
	}
	if header.Size > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "photo exceeds the maximum allowed size")
	}
	contentType := header.Header.Get("Content-Type")
	if !s.mimeAllowed(contentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported photo content type")
	}

	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read uploaded photo")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	relPath := filepath.Join("photos", userID+ext)
	if _, err := s.photos.SaveStream(relPath, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to store photo")
	}

	profile.PhotoURL = &relPath
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, userID, models.AuditActionProfileUpdate, userID, map[string]interface{}{"photo": relPath})
	return s.view(profile), nil
}

// PhotoURL returns a signed download token for the profile photo.
func (s *ProfileService) PhotoURL(ctx context.Context, viewer models.ViewerScope, userID string) (string, error) {
	if viewer.Role == models.RoleStudent && viewer.UserID != userID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "students can only fetch their own photo")
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.PhotoURL == nil || *profile.PhotoURL == "" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "profile has no photo")
	}
	token, _, err := s.signer.Generate(userID, *profile.PhotoURL)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url")
	}
	return token, nil
}

func (s *ProfileService) view(profile *models.Profile) *dto.ProfileView {
	return &dto.ProfileView{Profile: *profile, Completion: profile.CompletionPercent()}
}

func (s *ProfileService) mimeAllowed(contentType string) bool {
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

func (s *ProfileService) recordAudit(ctx context.Context, actorID, action, resourceID string, fields map[string]interface{}) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(fields)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "profile",
		ResourceID: &resourceID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}
