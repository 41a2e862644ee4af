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

const outingColumns = `id, student_id, outing_type, destination, from_date, to_date, from_time, to_time, reason,
       contact_person, contact_phone, current_stage, final_status,
       advisor_approved_by, advisor_approved_at, hod_approved_by, hod_approved_at,
       warden_approved_by, warden_approved_at, rejected_by, rejected_at, rejection_reason,
       created_at, updated_at`

// OutingRepository persists outing requests and applies workflow transitions.
type OutingRepository struct {
	db *sqlx.DB
}

// NewOutingRepository constructs the repository.
func NewOutingRepository(db *sqlx.DB) *OutingRepository {
	return &OutingRepository{db: db}
}

// Create inserts a new outing request row.
func (r *OutingRepository) Create(ctx context.Context, req *models.OutingRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	const query = `INSERT INTO outing_requests
	(id, student_id, outing_type, destination, from_date, to_date, from_time, to_time, reason,
	 contact_person, contact_phone, current_stage, final_status, created_at, updated_at)
	VALUES (:id, :student_id, :outing_type, :destination, :from_date, :to_date, :from_time, :to_time, :reason,
	 :contact_person, :contact_phone, :current_stage, :final_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create outing request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *OutingRepository) GetByID(ctx context.Context, id string) (*models.OutingRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM outing_requests WHERE id = $1`, outingColumns)
	var req models.OutingRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outing request not found")
		}
		return nil, fmt.Errorf("get outing request: %w", err)
	}
	return &req, nil
}

// List returns requests matching the filter, newest first. The viewer scope
// inside the filter is the single entitlement gate for every read view.
func (r *OutingRepository) List(ctx context.Context, filter models.OutingFilter) ([]models.OutingRequest, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM outing_requests", outingColumns))

	args := make([]interface{}, 0, 6)
	if conditions := listConditions(filter, &args); len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.OutingRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list outing requests: %w", err)
	}
	return requests, nil
}

// Count returns the number of requests matching the filter, ignoring
// pagination. Lists report it so clients can page past the first window.
func (r *OutingRepository) Count(ctx context.Context, filter models.OutingFilter) (int, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT COUNT(*) FROM outing_requests")

	args := make([]interface{}, 0, 6)
	if conditions := listConditions(filter, &args); len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, builder.String(), args...); err != nil {
		return 0, fmt.Errorf("count outing requests: %w", err)
	}
	return count, nil
}

// Stats aggregates counts by status and outing type over the viewer's entitled set.
func (r *OutingRepository) Stats(ctx context.Context, scope models.ViewerScope) (*models.OutingStats, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT COUNT(*) AS total,
       COUNT(*) FILTER (WHERE final_status = 'pending') AS pending,
       COUNT(*) FILTER (WHERE final_status = 'approved') AS approved,
       COUNT(*) FILTER (WHERE final_status = 'rejected') AS rejected,
       COUNT(*) FILTER (WHERE outing_type = 'local') AS local,
       COUNT(*) FILTER (WHERE outing_type = 'hometown') AS hometown
	FROM outing_requests`)

	args := make([]interface{}, 0, 2)
	if conditions := scopeConditions(&scope, &args); len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	var stats models.OutingStats
	if err := r.db.GetContext(ctx, &stats, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("outing stats: %w", err)
	}
	return &stats, nil
}

// DecisionParams carries one computed workflow transition plus its audit entry.
type DecisionParams struct {
	Request    *models.OutingRequest
	PriorStage models.ApprovalStage
	History    *models.ApprovalHistoryEntry
}

// ApplyDecision persists a transition atomically: the request row is updated
// only while still pending at the expected stage, and exactly one approval
// history entry is appended in the same transaction. A conditional update
// matching zero rows means another approver won the race.
func (r *OutingRepository) ApplyDecision(ctx context.Context, params DecisionParams) error {
	if params.Request == nil || params.History == nil {
		return fmt.Errorf("decision params incomplete")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const update = `UPDATE outing_requests SET
	current_stage = :current_stage,
	final_status = :final_status,
	advisor_approved_by = :advisor_approved_by,
	advisor_approved_at = :advisor_approved_at,
	hod_approved_by = :hod_approved_by,
	hod_approved_at = :hod_approved_at,
	warden_approved_by = :warden_approved_by,
	warden_approved_at = :warden_approved_at,
	rejected_by = :rejected_by,
	rejected_at = :rejected_at,
	rejection_reason = :rejection_reason,
	updated_at = :updated_at
	WHERE id = :id AND final_status = 'pending' AND current_stage = :prior_stage`

	params.Request.UpdatedAt = time.Now().UTC()
	result, err := tx.NamedExecContext(ctx, update, map[string]interface{}{
		"id":                  params.Request.ID,
		"prior_stage":         params.PriorStage,
		"current_stage":       params.Request.CurrentStage,
		"final_status":        params.Request.FinalStatus,
		"advisor_approved_by": params.Request.AdvisorApprovedBy,
		"advisor_approved_at": params.Request.AdvisorApprovedAt,
		"hod_approved_by":     params.Request.HODApprovedBy,
		"hod_approved_at":     params.Request.HODApprovedAt,
		"warden_approved_by":  params.Request.WardenApprovedBy,
		"warden_approved_at":  params.Request.WardenApprovedAt,
		"rejected_by":         params.Request.RejectedBy,
		"rejected_at":         params.Request.RejectedAt,
		"rejection_reason":    params.Request.RejectionReason,
		"updated_at":          params.Request.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("apply decision: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply decision rows: %w", err)
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrInvalidStateTransition, "request was decided concurrently")
	}

	entry := params.History
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const insert = `INSERT INTO approval_history (id, request_id, approver_id, stage, action, comments, created_at)
	VALUES (:id, :request_id, :approver_id, :stage, :action, :comments, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, entry); err != nil {
		return fmt.Errorf("append approval history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision: %w", err)
	}
	return nil
}

// scopeConditions translates a viewer scope into SQL conditions. Admins and
// the principal see everything; HODs only their department's students;
// students only their own rows. Advisors and wardens see all students.
func listConditions(filter models.OutingFilter, args *[]interface{}) []string {
	conditions := scopeConditions(filter.Scope, args)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			*args = append(*args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(*args))
		}
		conditions = append(conditions, fmt.Sprintf("final_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Stage != "" {
		*args = append(*args, filter.Stage)
		conditions = append(conditions, fmt.Sprintf("current_stage = $%d", len(*args)))
	}
	if filter.OutingType != "" {
		*args = append(*args, filter.OutingType)
		conditions = append(conditions, fmt.Sprintf("outing_type = $%d", len(*args)))
	}
	if filter.StudentID != "" {
		*args = append(*args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(*args)))
	}
	return conditions
}

func scopeConditions(scope *models.ViewerScope, args *[]interface{}) []string {
	if scope == nil {
		return nil
	}
	switch scope.Role {
	case models.RoleStudent:
		*args = append(*args, scope.UserID)
		return []string{fmt.Sprintf("student_id = $%d", len(*args))}
	case models.RoleHOD:
		if scope.DepartmentID != "" {
			*args = append(*args, scope.DepartmentID)
			return []string{fmt.Sprintf("student_id IN (SELECT user_id FROM profiles WHERE department_id = $%d)", len(*args))}
		}
	}
	return nil
}
