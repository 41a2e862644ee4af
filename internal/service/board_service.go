package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type boardStore interface {
	CreateNotice(ctx context.Context, notice *models.Notice) error
	ListNotices(ctx context.Context, role models.UserRole, limit int) ([]models.Notice, error)
	DeleteNotice(ctx context.Context, id string) error
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, studentID string, status models.ComplaintStatus, limit, offset int) ([]models.Complaint, error)
	CountComplaints(ctx context.Context, studentID string, status models.ComplaintStatus) (int, error)
	UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus, resolverID string) error
}

// BoardService manages the notice board and student complaints.
type BoardService struct {
	repo      boardStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBoardService constructs a BoardService.
func NewBoardService(repo boardStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BoardService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// CreateNotice posts a notice. Only admins and wardens may post.
func (s *BoardService) CreateNotice(ctx context.Context, actor models.ViewerScope, req dto.CreateNoticeRequest) (*models.Notice, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleWarden {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins and wardens can post notices")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	notice := &models.Notice{
		Title:    req.Title,
		Content:  req.Content,
		PostedBy: actor.UserID,
		IsUrgent: req.IsUrgent,
	}
	if len(req.TargetRoles) > 0 {
		for _, role := range req.TargetRoles {
			if !validNoticeRole(models.UserRole(role)) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown target role: "+role)
			}
		}
		encoded, err := json.Marshal(req.TargetRoles)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode target roles")
		}
		notice.TargetRoles = encoded
	}
	if req.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be RFC3339")
		}
		notice.ExpiresAt = &expires
	}

	if err := s.repo.CreateNotice(ctx, notice); err != nil {
		return nil, err
	}
	s.invalidateDashboards(ctx)
	return notice, nil
}

// ListNotices returns active notices visible to the viewer's role.
func (s *BoardService) ListNotices(ctx context.Context, role models.UserRole, limit int) ([]models.Notice, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListNotices(ctx, role, limit)
}

// DeleteNotice removes a notice. Admin only.
func (s *BoardService) DeleteNotice(ctx context.Context, actor models.ViewerScope, id string) error {
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can delete notices")
	}
	if err := s.repo.DeleteNotice(ctx, id); err != nil {
		return err
	}
	s.invalidateDashboards(ctx)
	return nil
}

// CreateComplaint files a complaint on behalf of a student.
func (s *BoardService) CreateComplaint(ctx context.Context, studentID string, req dto.CreateComplaintRequest) (*models.Complaint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}
	complaint := &models.Complaint{
		StudentID:   studentID,
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      models.ComplaintOpen,
	}
	if req.PhotoURL != "" {
		photo := req.PhotoURL
		complaint.PhotoURL = &photo
	}
	if err := s.repo.CreateComplaint(ctx, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// GetComplaint returns one complaint; students only see their own.
func (s *BoardService) GetComplaint(ctx context.Context, viewer models.ViewerScope, id string) (*models.Complaint, error) {
	complaint, err := s.repo.GetComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer.Role == models.RoleStudent && complaint.StudentID != viewer.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only view their own complaints")
	}
	return complaint, nil
}

// ListComplaints returns complaints within the viewer's entitlement plus
// the total matching count across all pages.
func (s *BoardService) ListComplaints(ctx context.Context, viewer models.ViewerScope, status models.ComplaintStatus, limit, offset int) ([]models.Complaint, int, error) {
	studentID := ""
	if viewer.Role == models.RoleStudent {
		studentID = viewer.UserID
	}
	complaints, err := s.repo.ListComplaints(ctx, studentID, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountComplaints(ctx, studentID, status)
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

// UpdateComplaintStatus moves a complaint through handling. Staff only.
func (s *BoardService) UpdateComplaintStatus(ctx context.Context, actor models.ViewerScope, id string, req dto.UpdateComplaintStatusRequest) error {
	if actor.Role == models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "students cannot update complaint status")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	return s.repo.UpdateComplaintStatus(ctx, id, models.ComplaintStatus(req.Status), actor.UserID)
}

func (s *BoardService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func validNoticeRole(role models.UserRole) bool {
	switch role {
	case models.RoleAdmin, models.RoleWarden, models.RoleAdvisor, models.RoleHOD, models.RolePrincipal, models.RoleStudent:
		return true
	}
	return false
}
