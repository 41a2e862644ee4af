package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-outing-api/internal/models"
)

const historyColumns = `id, request_id, approver_id, stage, action, comments, created_at`

// HistoryRepository reads the append-only approval audit trail.
// Writes happen only inside OutingRepository.ApplyDecision; no update or
// delete is exposed anywhere.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List returns audit entries matching the filter, oldest first so callers
// can replay a request's decision sequence.
func (r *HistoryRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.ApprovalHistoryEntry, error) {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM approval_history", historyColumns))

	args := make([]interface{}, 0, 5)
	conditions := make([]string, 0, 5)
	if filter.RequestID != "" {
		args = append(args, filter.RequestID)
		conditions = append(conditions, fmt.Sprintf("request_id = $%d", len(args)))
	}
	if filter.ApproverID != "" {
		args = append(args, filter.ApproverID)
		conditions = append(conditions, fmt.Sprintf("approver_id = $%d", len(args)))
	}
	if filter.Stage != "" {
		args = append(args, filter.Stage)
		conditions = append(conditions, fmt.Sprintf("stage = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC")

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var entries []models.ApprovalHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list approval history: %w", err)
	}
	return entries, nil
}
