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

// BoardRepository persists notices and complaints.
type BoardRepository struct {
	db *sqlx.DB
}

// NewBoardRepository constructs the repository.
func NewBoardRepository(db *sqlx.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// CreateNotice posts a new notice.
func (r *BoardRepository) CreateNotice(ctx context.Context, notice *models.Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = now
	}
	notice.UpdatedAt = now
	const query = `INSERT INTO notices (id, title, content, posted_by, target_roles, is_urgent, expires_at, created_at, updated_at)
	VALUES (:id, :title, :content, :posted_by, :target_roles, :is_urgent, :expires_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// ListNotices returns current notices visible to the given role, newest first.
func (r *BoardRepository) ListNotices(ctx context.Context, role models.UserRole, limit int) ([]models.Notice, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `SELECT id, title, content, posted_by, target_roles, is_urgent, expires_at, created_at, updated_at
	FROM notices
	WHERE (expires_at IS NULL OR expires_at > NOW())
	  AND (target_roles IS NULL OR target_roles @> $1)
	ORDER BY is_urgent DESC, created_at DESC
	LIMIT $2`
	roleJSON := fmt.Sprintf(`["%s"]`, role)
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, roleJSON, limit); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// DeleteNotice removes a notice.
func (r *BoardRepository) DeleteNotice(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "notice not found")
	}
	return nil
}

// CreateComplaint files a complaint.
func (r *BoardRepository) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.Status == "" {
		complaint.Status = models.ComplaintOpen
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = now
	const query = `INSERT INTO complaints (id, student_id, category, subject, description, photo_url, status, created_at, updated_at)
	VALUES (:id, :student_id, :category, :subject, :description, :photo_url, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// GetComplaint fetches one complaint.
func (r *BoardRepository) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	const query = `SELECT id, student_id, category, subject, description, photo_url, status, resolved_by, resolved_at, created_at, updated_at
	FROM complaints WHERE id = $1`
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, fmt.Errorf("get complaint: %w", err)
	}
	return &complaint, nil
}

// ListComplaints returns complaints, optionally limited to one student.
func (r *BoardRepository) ListComplaints(ctx context.Context, studentID string, status models.ComplaintStatus, limit, offset int) ([]models.Complaint, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, student_id, category, subject, description, photo_url, status, resolved_by, resolved_at, created_at, updated_at FROM complaints`)

	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)
	if studentID != "" {
		args = append(args, studentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, nil
}

// CountComplaints returns the total matching count, ignoring pagination.
func (r *BoardRepository) CountComplaints(ctx context.Context, studentID string, status models.ComplaintStatus) (int, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT COUNT(*) FROM complaints")

	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)
	if studentID != "" {
		args = append(args, studentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, builder.String(), args...); err != nil {
		return 0, fmt.Errorf("count complaints: %w", err)
	}
	return count, nil
}

// UpdateComplaintStatus moves a complaint through handling states.
func (r *BoardRepository) UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus, resolverID string) error {
	params := map[string]interface{}{
		"id":         id,
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	setParts := []string{"status = :status", "updated_at = :updated_at"}
	if status == models.ComplaintResolved {
		setParts = append(setParts, "resolved_by = :resolved_by", "resolved_at = :resolved_at")
		params["resolved_by"] = resolverID
		params["resolved_at"] = time.Now().UTC()
	}
	query := fmt.Sprintf("UPDATE complaints SET %s WHERE id = :id", strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	return nil
}
