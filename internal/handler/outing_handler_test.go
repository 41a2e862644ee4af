package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/middleware"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

type fakeOutingSrv struct {
	created    *models.OutingRequest
	createErr  error
	decided    *models.OutingRequest
	decideErr  error
	pending    []models.OutingRequest
	total      int
	lastCreate struct {
		input     dto.CreateOutingRequest
		studentID string
	}
	lastDecide struct {
		requestID string
		actorID   string
		actorRole models.UserRole
		input     dto.DecisionRequest
	}
	lastScope models.ViewerScope
	lastQuery dto.OutingQuery
}

func (f *fakeOutingSrv) CreateRequest(_ context.Context, input dto.CreateOutingRequest, studentID string) (*models.OutingRequest, error) {
	f.lastCreate.input = input
	f.lastCreate.studentID = studentID
	return f.created, f.createErr
}

func (f *fakeOutingSrv) Decide(_ context.Context, requestID, actorID string, actorRole models.UserRole, input dto.DecisionRequest) (*models.OutingRequest, error) {
	f.lastDecide.requestID = requestID
	f.lastDecide.actorID = actorID
	f.lastDecide.actorRole = actorRole
	f.lastDecide.input = input
	return f.decided, f.decideErr
}

func (f *fakeOutingSrv) Get(context.Context, string, models.ViewerScope) (*models.OutingRequest, error) {
	return f.created, nil
}

func (f *fakeOutingSrv) ListPending(_ context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error) {
	f.lastScope = scope
	f.lastQuery = query
	return f.pending, f.total, nil
}

func (f *fakeOutingSrv) ListHistory(_ context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error) {
	f.lastScope = scope
	f.lastQuery = query
	return f.pending, f.total, nil
}

func (f *fakeOutingSrv) ApprovalHistory(context.Context, dto.HistoryQuery) ([]models.ApprovalHistoryEntry, error) {
	return nil, nil
}

func (f *fakeOutingSrv) MyDecisions(context.Context, string, dto.HistoryQuery) ([]models.ApprovalHistoryEntry, error) {
	return nil, nil
}

func (f *fakeOutingSrv) Stats(context.Context, models.ViewerScope) (*models.OutingStats, error) {
	return &models.OutingStats{}, nil
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
}

func TestOutingHandlerCreateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOutingHandler(&fakeOutingSrv{}, NewScopeResolver(nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/outings", nil)

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOutingHandlerCreateRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewOutingHandler(&fakeOutingSrv{}, NewScopeResolver(nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/outings", bytes.NewBufferString("{not json"))
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutingHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeOutingSrv{created: &models.OutingRequest{ID: "req-1", StudentID: "student-1"}}
	handler := NewOutingHandler(service, NewScopeResolver(nil))

	body, _ := json.Marshal(dto.CreateOutingRequest{
		OutingType:  "local",
		Destination: "City market",
		FromDate:    "2025-03-08",
		ToDate:      "2025-03-08",
		Reason:      "weekend shopping",
	})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/outings", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, studentClaims())

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "student-1", service.lastCreate.studentID)
	assert.Equal(t, "City market", service.lastCreate.input.Destination)
}

func TestOutingHandlerDecidePassesActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeOutingSrv{decided: &models.OutingRequest{ID: "req-1"}}
	handler := NewOutingHandler(service, NewScopeResolver(nil))

	body, _ := json.Marshal(dto.DecisionRequest{Action: "approve"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/outings/req-1/decision", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "warden-1", Role: models.RoleWarden})

	handler.Decide(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", service.lastDecide.requestID)
	assert.Equal(t, "warden-1", service.lastDecide.actorID)
	assert.Equal(t, models.RoleWarden, service.lastDecide.actorRole)
}

func TestOutingHandlerDecideConflictSurfaces(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeOutingSrv{decideErr: appErrors.Clone(appErrors.ErrInvalidStateTransition, "request was decided concurrently")}
	handler := NewOutingHandler(service, NewScopeResolver(nil))

	body, _ := json.Marshal(dto.DecisionRequest{Action: "approve"})
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/outings/req-1/decision", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "warden-1", Role: models.RoleWarden})

	handler.Decide(c)

	assert.Equal(t, appErrors.ErrInvalidStateTransition.Status, rec.Code)
}

type failingDeptLookup struct{ err error }

func (f *failingDeptLookup) GetByUserID(context.Context, string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Profile{UserID: "hod-1", Role: models.RoleHOD}, nil
}

func TestOutingHandlerListPendingHODLookupFailureFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeOutingSrv{pending: []models.OutingRequest{{ID: "req-1"}}}
	handler := NewOutingHandler(service, NewScopeResolver(&failingDeptLookup{err: errors.New("db down")}))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/outings/pending", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD})

	handler.ListPending(c)

	assert.Equal(t, appErrors.ErrBackendUnavailable.Status, rec.Code)
	assert.Empty(t, service.lastScope.UserID)
}

func TestOutingHandlerListPendingHODWithoutDepartmentFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeOutingSrv{}
	handler := NewOutingHandler(service, NewScopeResolver(&failingDeptLookup{}))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/outings/pending", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD})

	handler.ListPending(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, service.lastScope.UserID)
}

func TestOutingHandlerListPendingParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeOutingSrv{pending: []models.OutingRequest{{ID: "req-1"}}, total: 42}
	handler := NewOutingHandler(service, NewScopeResolver(nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/outings/pending?status=pending,approved&limit=10&offset=20&type=local", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "advisor-1", Role: models.RoleAdvisor})

	handler.ListPending(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdvisor, service.lastScope.Role)
	assert.Equal(t, []models.RequestStatus{models.StatusPending, models.StatusApproved}, service.lastQuery.Status)
	assert.Equal(t, models.OutingTypeLocal, service.lastQuery.OutingType)
	assert.Equal(t, 10, service.lastQuery.Limit)
	assert.Equal(t, 20, service.lastQuery.Offset)

	var envelope struct {
		Pagination *models.Pagination `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Pagination)
	assert.Equal(t, 3, envelope.Pagination.Page)
	assert.Equal(t, 10, envelope.Pagination.PageSize)
	assert.Equal(t, 42, envelope.Pagination.TotalCount)
}
