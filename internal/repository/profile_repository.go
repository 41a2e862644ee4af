package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

const profileColumns = `id, user_id, email, full_name, role, phone, student_id, staff_id, year_of_study,
       department_id, room_id, permanent_address, local_address, guardian_name, guardian_phone,
       photo_url, is_approved, is_blocked, created_at, updated_at`

// ProfileRepository persists user profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile row.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO profiles
	(id, user_id, email, full_name, role, phone, student_id, staff_id, year_of_study,
	 department_id, room_id, permanent_address, local_address, guardian_name, guardian_phone,
	 photo_url, is_approved, is_blocked, created_at, updated_at)
	VALUES (:id, :user_id, :email, :full_name, :role, :phone, :student_id, :staff_id, :year_of_study,
	 :department_id, :room_id, :permanent_address, :local_address, :guardian_name, :guardian_phone,
	 :photo_url, :is_approved, :is_blocked, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetByUserID fetches the profile owned by a user account.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// GetByEmail fetches a profile by its email address.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE LOWER(email) = LOWER($1)`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, fmt.Errorf("get profile by email: %w", err)
	}
	return &profile, nil
}

// FindByRole returns the first profile holding the given role, if any.
func (r *ProfileRepository) FindByRole(ctx context.Context, role models.UserRole) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE role = $1 ORDER BY created_at ASC LIMIT 1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find profile by role: %w", err)
	}
	return &profile, nil
}

// List returns profiles matching the filter.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM profiles", profileColumns))

	args := make([]interface{}, 0, 5)
	if conditions := profileConditions(filter, &args); len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY full_name ASC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Count returns the number of profiles matching the filter, ignoring
// pagination.
func (r *ProfileRepository) Count(ctx context.Context, filter models.ProfileFilter) (int, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT COUNT(*) FROM profiles")

	args := make([]interface{}, 0, 5)
	if conditions := profileConditions(filter, &args); len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, builder.String(), args...); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}

func profileConditions(filter models.ProfileFilter, args *[]interface{}) []string {
	conditions := make([]string, 0, 5)
	if filter.Role != nil {
		*args = append(*args, *filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(*args)))
	}
	if filter.DepartmentID != "" {
		*args = append(*args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(*args)))
	}
	if filter.Approved != nil {
		*args = append(*args, *filter.Approved)
		conditions = append(conditions, fmt.Sprintf("is_approved = $%d", len(*args)))
	}
	if filter.Blocked != nil {
		*args = append(*args, *filter.Blocked)
		conditions = append(conditions, fmt.Sprintf("is_blocked = $%d", len(*args)))
	}
	if filter.Search != "" {
		*args = append(*args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(*args), len(*args)))
	}
	return conditions
}

// Update persists the self-service editable fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE profiles SET
	full_name = :full_name, phone = :phone, student_id = :student_id, staff_id = :staff_id,
	year_of_study = :year_of_study, department_id = :department_id, room_id = :room_id,
	permanent_address = :permanent_address, local_address = :local_address,
	guardian_name = :guardian_name, guardian_phone = :guardian_phone,
	photo_url = :photo_url, updated_at = :updated_at
	WHERE user_id = :user_id`
	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	return nil
}

// SetReviewFlags updates the admin-controlled approval/block flags.
func (r *ProfileRepository) SetReviewFlags(ctx context.Context, userID string, approved, blocked *bool) error {
	setParts := []string{"updated_at = :updated_at"}
	params := map[string]interface{}{
		"user_id":    userID,
		"updated_at": time.Now().UTC(),
	}
	if approved != nil {
		setParts = append(setParts, "is_approved = :is_approved")
		params["is_approved"] = *approved
	}
	if blocked != nil {
		setParts = append(setParts, "is_blocked = :is_blocked")
		params["is_blocked"] = *blocked
	}
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE user_id = :user_id", strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return fmt.Errorf("review profile: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	return nil
}

// Promote switches a profile's role and marks it approved. Used by the
// admin bootstrap flow.
func (r *ProfileRepository) Promote(ctx context.Context, userID string, role models.UserRole) error {
	const query = `UPDATE profiles SET role = $1, is_approved = TRUE, updated_at = $2 WHERE user_id = $3`
	result, err := r.db.ExecContext(ctx, query, role, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("promote profile: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	return nil
}
