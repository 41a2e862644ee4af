package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

func newOutingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func outingRows(id, studentID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "student_id", "outing_type", "destination", "from_date", "to_date", "from_time", "to_time", "reason",
		"contact_person", "contact_phone", "current_stage", "final_status",
		"advisor_approved_by", "advisor_approved_at", "hod_approved_by", "hod_approved_at",
		"warden_approved_by", "warden_approved_at", "rejected_by", "rejected_at", "rejection_reason",
		"created_at", "updated_at",
	}).AddRow(id, studentID, "local", "City market", now, now, "09:00", "18:00", "shopping",
		nil, nil, "warden", "pending",
		nil, nil, nil, nil, nil, nil, nil, nil, nil,
		now, now)
}

func TestOutingRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outing_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	fromTime, toTime := "09:00", "18:00"
	req := &models.OutingRequest{
		StudentID:    "student-1",
		OutingType:   models.OutingTypeLocal,
		Destination:  "City market",
		FromDate:     time.Now(),
		ToDate:       time.Now(),
		FromTime:     &fromTime,
		ToTime:       &toTime,
		Reason:       "shopping",
		CurrentStage: models.StageWarden,
		FinalStatus:  models.StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	require.NotEmpty(t, req.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, outing_type")).
		WithArgs(req.ID).
		WillReturnRows(outingRows(req.ID, "student-1"))

	found, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, req.ID, found.ID)
	require.Equal(t, models.StageWarden, found.CurrentStage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, outing_type")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryListScopesStudent(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, outing_type")).
		WithArgs("student-1", "pending").
		WillReturnRows(outingRows("req-1", "student-1"))

	scope := models.ViewerScope{Role: models.RoleStudent, UserID: "student-1"}
	list, err := repo.List(context.Background(), models.OutingFilter{
		Scope:  &scope,
		Status: []models.RequestStatus{models.StatusPending},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "req-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryListScopesDepartment(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("student_id IN (SELECT user_id FROM profiles WHERE department_id = $1)")).
		WithArgs("dept-1").
		WillReturnRows(outingRows("req-1", "student-1"))

	scope := models.ViewerScope{Role: models.RoleHOD, UserID: "hod-1", DepartmentID: "dept-1"}
	list, err := repo.List(context.Background(), models.OutingFilter{Scope: &scope})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryCountMatchesListConditions(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM outing_requests")).
		WithArgs("student-1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	scope := models.ViewerScope{Role: models.RoleStudent, UserID: "student-1"}
	count, err := repo.Count(context.Background(), models.OutingFilter{
		Scope:  &scope,
		Status: []models.RequestStatus{models.StatusPending},
	})
	require.NoError(t, err)
	require.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryApplyDecisionCommitsBoth(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	now := time.Now().UTC()
	actor := "warden-1"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outing_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO approval_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	req := &models.OutingRequest{
		ID:               "req-1",
		StudentID:        "student-1",
		CurrentStage:     models.StageWarden,
		FinalStatus:      models.StatusApproved,
		WardenApprovedBy: &actor,
		WardenApprovedAt: &now,
	}
	err := repo.ApplyDecision(context.Background(), DecisionParams{
		Request:    req,
		PriorStage: models.StageWarden,
		History: &models.ApprovalHistoryEntry{
			RequestID:  "req-1",
			ApproverID: actor,
			Stage:      models.StageWarden,
			Action:     models.HistoryActionApproved,
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryApplyDecisionConcurrentLoser(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outing_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApplyDecision(context.Background(), DecisionParams{
		Request:    &models.OutingRequest{ID: "req-1", CurrentStage: models.StageWarden, FinalStatus: models.StatusApproved},
		PriorStage: models.StageWarden,
		History:    &models.ApprovalHistoryEntry{RequestID: "req-1", ApproverID: "warden-1", Stage: models.StageWarden, Action: models.HistoryActionApproved},
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidStateTransition.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutingRepositoryStats(t *testing.T) {
	db, mock, cleanup := newOutingRepoMock(t)
	defer cleanup()

	repo := NewOutingRepository(db)
	rows := sqlmock.NewRows([]string{"total", "pending", "approved", "rejected", "local", "hometown"}).
		AddRow(10, 4, 5, 1, 7, 3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total")).
		WithArgs("student-1").
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), models.ViewerScope{Role: models.RoleStudent, UserID: "student-1"})
	require.NoError(t, err)
	require.Equal(t, 10, stats.Total)
	require.Equal(t, 4, stats.Pending)
	require.NoError(t, mock.ExpectationsWereMet())
}
