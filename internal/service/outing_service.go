package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	"github.com/noah-isme/hostel-outing-api/internal/repository"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type outingStore interface {
	Create(ctx context.Context, req *models.OutingRequest) error
	GetByID(ctx context.Context, id string) (*models.OutingRequest, error)
	List(ctx context.Context, filter models.OutingFilter) ([]models.OutingRequest, error)
	Count(ctx context.Context, filter models.OutingFilter) (int, error)
	Stats(ctx context.Context, scope models.ViewerScope) (*models.OutingStats, error)
	ApplyDecision(ctx context.Context, params repository.DecisionParams) error
}

type historyStore interface {
	List(ctx context.Context, filter models.HistoryFilter) ([]models.ApprovalHistoryEntry, error)
}

type profileReader interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// OutingServiceConfig carries workflow policy switches.
type OutingServiceConfig struct {
	// AdminOverride lets admins record a decision at any stage.
	AdminOverride bool
}

// OutingService owns the request lifecycle: intake validation, the approval
// workflow, and the role-scoped read views.
type OutingService struct {
	repo     outingStore
	history  historyStore
	profiles profileReader
	audit    auditLogger
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      OutingServiceConfig
}

// NewOutingService constructs the service.
func NewOutingService(repo outingStore, history historyStore, profiles profileReader, audit auditLogger, cache *CacheService, logger *zap.Logger, cfg OutingServiceConfig) *OutingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutingService{
		repo:     repo,
		history:  history,
		profiles: profiles,
		audit:    audit,
		cache:    cache,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		cfg:      cfg,
	}
}

// CreateRequest validates intake rules and persists a new pending request.
// Nothing is stored when any rule fails.
func (s *OutingService) CreateRequest(ctx context.Context, input dto.CreateOutingRequest, studentID string) (*models.OutingRequest, error) {
	outingType := models.OutingType(input.OutingType)
	if outingType != models.OutingTypeLocal && outingType != models.OutingTypeHometown {
		return nil, appErrors.Clone(appErrors.ErrValidation, "outing_type must be local or hometown")
	}
	if input.Destination == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "destination is required")
	}
	if input.Reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}

	fromDate, err := time.Parse(dateLayout, input.FromDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from_date must be YYYY-MM-DD")
	}
	toDate, err := time.Parse(dateLayout, input.ToDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must be YYYY-MM-DD")
	}
	if toDate.Before(fromDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must not precede from_date")
	}

	req := &models.OutingRequest{
		StudentID:    studentID,
		OutingType:   outingType,
		Destination:  input.Destination,
		FromDate:     fromDate,
		ToDate:       toDate,
		Reason:       input.Reason,
		CurrentStage: outingType.InitialStage(),
		FinalStatus:  models.StatusPending,
	}

	switch outingType {
	case models.OutingTypeLocal:
		if !fromDate.Equal(toDate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "local outings must start and end on the same day")
		}
		if input.FromTime == "" || input.ToTime == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from_time and to_time are required for local outings")
		}
		if _, err := time.Parse(timeLayout, input.FromTime); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from_time must be HH:MM")
		}
		if _, err := time.Parse(timeLayout, input.ToTime); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "to_time must be HH:MM")
		}
		fromTime, toTime := input.FromTime, input.ToTime
		req.FromTime = &fromTime
		req.ToTime = &toTime
	case models.OutingTypeHometown:
		if input.ContactPerson == "" || input.ContactPhone == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "contact_person and contact_phone are required for hometown visits")
		}
		if input.FromTime != "" || input.ToTime != "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from_time and to_time apply only to local outings")
		}
		contactPerson, contactPhone := input.ContactPerson, input.ContactPhone
		req.ContactPerson = &contactPerson
		req.ContactPhone = &contactPhone
	}

	if err := s.checkStudentEligibility(ctx, studentID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to store outing request")
	}

	s.invalidateViews(ctx)
	s.recordAudit(ctx, studentID, models.AuditActionRequestCreate, req.ID, map[string]interface{}{
		"outing_type": req.OutingType,
		"stage":       req.CurrentStage,
	})

	s.logger.Info("outing request created",
		zap.String("request_id", req.ID),
		zap.String("student_id", studentID),
		zap.String("outing_type", string(req.OutingType)),
	)
	return req, nil
}

// Decide records an approver's verdict. The transition and its audit entry
// are persisted in one transaction; a concurrent decision loses the
// conditional update and surfaces as an invalid state transition.
func (s *OutingService) Decide(ctx context.Context, requestID, actorID string, actorRole models.UserRole, input dto.DecisionRequest) (*models.OutingRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	action := models.DecisionAction(input.Action)
	result, err := applyDecision(*req, actorID, actorRole, action, input.Comment, s.cfg.AdminOverride, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.ApplyDecision(ctx, repository.DecisionParams{
		Request:    &result.request,
		PriorStage: req.CurrentStage,
		History:    &result.history,
	}); err != nil {
		return nil, err
	}

	s.invalidateViews(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionRequestDecision, requestID, map[string]interface{}{
		"action": input.Action,
		"stage":  req.CurrentStage,
	})

	s.logger.Info("outing decision recorded",
		zap.String("request_id", requestID),
		zap.String("actor_id", actorID),
		zap.String("action", input.Action),
		zap.String("stage", string(req.CurrentStage)),
	)
	return &result.request, nil
}

// Get returns one request, restricted to the viewer's entitlement.
func (s *OutingService) Get(ctx context.Context, requestID string, scope models.ViewerScope) (*models.OutingRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if scope.Role == models.RoleStudent && req.StudentID != scope.UserID {
		return nil, appErrors.ErrForbidden
	}
	return req, nil
}

// ListPending returns the viewer's pending queue: requests still pending
// whose current stage matches the viewer's stage-role. Admins and the
// principal see the pending set across all stages. The second return is
// the total matching count across all pages.
func (s *OutingService) ListPending(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error) {
	filter := models.OutingFilter{
		Status: []models.RequestStatus{models.StatusPending},
		Scope:  &scope,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	switch scope.Role {
	case models.RoleAdvisor:
		filter.Stage = models.StageAdvisor
	case models.RoleHOD:
		filter.Stage = models.StageHOD
	case models.RoleWarden:
		filter.Stage = models.StageWarden
	}
	return s.listWithTotal(ctx, filter)
}

// ListHistory returns every request the viewer is entitled to see together
// with the total matching count.
func (s *OutingService) ListHistory(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error) {
	filter := models.OutingFilter{
		Status:     query.Status,
		OutingType: query.OutingType,
		Stage:      query.Stage,
		Scope:      &scope,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	return s.listWithTotal(ctx, filter)
}

func (s *OutingService) listWithTotal(ctx context.Context, filter models.OutingFilter) ([]models.OutingRequest, int, error) {
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ApprovalHistory queries the append-only audit trail by request or by
// stage within a time window.
func (s *OutingService) ApprovalHistory(ctx context.Context, query dto.HistoryQuery) ([]models.ApprovalHistoryEntry, error) {
	filter := models.HistoryFilter{
		RequestID: query.RequestID,
		Stage:     query.Stage,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}
	if query.From != "" {
		from, err := time.Parse(time.RFC3339, query.From)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from must be RFC3339")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(time.RFC3339, query.To)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "to must be RFC3339")
		}
		filter.To = &to
	}
	if filter.RequestID == "" && filter.Stage == "" && filter.ApproverID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request_id or stage is required")
	}
	return s.history.List(ctx, filter)
}

// MyDecisions returns the audit entries recorded by one approver.
func (s *OutingService) MyDecisions(ctx context.Context, approverID string, query dto.HistoryQuery) ([]models.ApprovalHistoryEntry, error) {
	filter := models.HistoryFilter{
		ApproverID: approverID,
		Stage:      query.Stage,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	return s.history.List(ctx, filter)
}

// Stats aggregates counts over the viewer's entitled set.
func (s *OutingService) Stats(ctx context.Context, scope models.ViewerScope) (*models.OutingStats, error) {
	return s.repo.Stats(ctx, scope)
}

// checkStudentEligibility enforces the intake precondition: the profile must
// exist, be approved, not be blocked, and be fully filled in.
func (s *OutingService) checkStudentEligibility(ctx context.Context, studentID string) error {
	profile, err := s.profiles.GetByUserID(ctx, studentID)
	if err != nil {
		return err
	}
	if profile.IsBlocked {
		return appErrors.Clone(appErrors.ErrForbidden, "account is blocked")
	}
	if !profile.IsApproved {
		return appErrors.Clone(appErrors.ErrProfileIncomplete, "profile has not been approved yet")
	}
	if profile.CompletionPercent() < 100 {
		return appErrors.Clone(appErrors.ErrProfileIncomplete, "profile must be 100% complete before requesting an outing")
	}
	return nil
}

func (s *OutingService) invalidateViews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *OutingService) recordAudit(ctx context.Context, actorID, action, resourceID string, payload map[string]interface{}) {
	if s.audit == nil {
		return
	}
	values, _ := json.Marshal(payload)
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "outing_request",
		ResourceID: &resourceID,
		NewValues:  values,
	}); err != nil {
		s.logger.Warn("audit log write failed", zap.Error(err))
	}
}
