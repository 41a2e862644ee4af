package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type referenceStore interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, dept *models.Department) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
}

// ReferenceService serves the department and room lookup tables.
type ReferenceService struct {
	repo   referenceStore
	logger *zap.Logger
}

// NewReferenceService constructs a ReferenceService.
func NewReferenceService(repo referenceStore, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{repo: repo, logger: logger}
}

// ListDepartments returns all departments.
func (s *ReferenceService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.repo.ListDepartments(ctx)
}

// CreateDepartment inserts a department. Admin only.
func (s *ReferenceService) CreateDepartment(ctx context.Context, actor models.ViewerScope, dept *models.Department) error {
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can create departments")
	}
	if dept.Name == "" || dept.Code == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name and code are required")
	}
	return s.repo.CreateDepartment(ctx, dept)
}

// ListRooms returns all rooms.
func (s *ReferenceService) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.repo.ListRooms(ctx)
}

// CreateRoom inserts a room. Admin only.
func (s *ReferenceService) CreateRoom(ctx context.Context, actor models.ViewerScope, room *models.Room) error {
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can create rooms")
	}
	if room.RoomNumber == "" {
		return appErrors.Clone(appErrors.ErrValidation, "room_number is required")
	}
	if room.Capacity <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "capacity must be positive")
	}
	return s.repo.CreateRoom(ctx, room)
}
