package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-outing-api/internal/models"
)

// ReferenceRepository serves the simple lookup entities: departments and rooms.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs the repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListDepartments returns all departments ordered by name.
func (r *ReferenceRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, name, code, created_at FROM departments ORDER BY name ASC`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// CreateDepartment inserts a department.
func (r *ReferenceRepository) CreateDepartment(ctx context.Context, dept *models.Department) error {
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	if dept.CreatedAt.IsZero() {
		dept.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO departments (id, name, code, created_at) VALUES (:id, :name, :code, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, dept); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// ListRooms returns all rooms ordered by room number.
func (r *ReferenceRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, room_number, floor, capacity, occupied, created_at FROM rooms ORDER BY room_number ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// CreateRoom inserts a room.
func (r *ReferenceRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO rooms (id, room_number, floor, capacity, occupied, created_at)
	VALUES (:id, :room_number, :floor, :capacity, :occupied, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}
