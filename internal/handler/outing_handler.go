package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/response"
)

type outingService interface {
	CreateRequest(ctx context.Context, input dto.CreateOutingRequest, studentID string) (*models.OutingRequest, error)
	Decide(ctx context.Context, requestID, actorID string, actorRole models.UserRole, input dto.DecisionRequest) (*models.OutingRequest, error)
	Get(ctx context.Context, requestID string, scope models.ViewerScope) (*models.OutingRequest, error)
	ListPending(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error)
	ListHistory(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) ([]models.OutingRequest, int, error)
	ApprovalHistory(ctx context.Context, query dto.HistoryQuery) ([]models.ApprovalHistoryEntry, error)
	MyDecisions(ctx context.Context, approverID string, query dto.HistoryQuery) ([]models.ApprovalHistoryEntry, error)
	Stats(ctx context.Context, scope models.ViewerScope) (*models.OutingStats, error)
}

// OutingHandler wires the request lifecycle endpoints.
type OutingHandler struct {
	service outingService
	scopes  *ScopeResolver
}

// NewOutingHandler constructs the handler.
func NewOutingHandler(service outingService, scopes *ScopeResolver) *OutingHandler {
	return &OutingHandler{service: service, scopes: scopes}
}

// Create godoc
// @Summary Submit an outing request
// @Tags Outings
// @Accept json
// @Produce json
// @Param payload body dto.CreateOutingRequest true "Outing request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /outings [post]
func (h *OutingHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateOutingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid outing payload"))
		return
	}

	created, err := h.service.CreateRequest(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, created)
}

// Decide godoc
// @Summary Record an approval decision
// @Tags Outings
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /outings/{id}/decision [post]
func (h *OutingHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	updated, err := h.service.Decide(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updated, nil)
}

// Get godoc
// @Summary Fetch one outing request
// @Tags Outings
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /outings/{id} [get]
func (h *OutingHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := h.service.Get(c.Request.Context(), c.Param("id"), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, req, nil)
}

// ListPending godoc
// @Summary List the viewer's pending queue
// @Tags Outings
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /outings/pending [get]
func (h *OutingHandler) ListPending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	query := outingQueryFromContext(c)
	requests, total, err := h.service.ListPending(c.Request.Context(), scope, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, paginationFor(query.Limit, query.Offset, total))
}

// ListHistory godoc
// @Summary List requests visible to the viewer
// @Tags Outings
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param stage query string false "Stage filter"
// @Param type query string false "Outing type filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /outings [get]
func (h *OutingHandler) ListHistory(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	query := outingQueryFromContext(c)
	requests, total, err := h.service.ListHistory(c.Request.Context(), scope, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, paginationFor(query.Limit, query.Offset, total))
}

// ApprovalHistory godoc
// @Summary Query the approval audit trail
// @Tags Outings
// @Produce json
// @Param request_id query string false "Request ID"
// @Param stage query string false "Stage"
// @Param from query string false "RFC3339 window start"
// @Param to query string false "RFC3339 window end"
// @Success 200 {object} response.Envelope
// @Router /outings/approvals [get]
func (h *OutingHandler) ApprovalHistory(c *gin.Context) {
	query := historyQueryFromContext(c)
	entries, err := h.service.ApprovalHistory(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// MyDecisions godoc
// @Summary List decisions recorded by the caller
// @Tags Outings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /outings/approvals/mine [get]
func (h *OutingHandler) MyDecisions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.MyDecisions(c.Request.Context(), claims.UserID, historyQueryFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}

// Stats godoc
// @Summary Aggregate counts over the viewer's entitled set
// @Tags Outings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /outings/stats [get]
func (h *OutingHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

func outingQueryFromContext(c *gin.Context) dto.OutingQuery {
	query := dto.OutingQuery{
		Stage:      models.ApprovalStage(c.Query("stage")),
		OutingType: models.OutingType(c.Query("type")),
		Limit:      intQuery(c, "limit", 20),
		Offset:     intQuery(c, "offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.Status = append(query.Status, models.RequestStatus(part))
			}
		}
	}
	return query
}

func historyQueryFromContext(c *gin.Context) dto.HistoryQuery {
	return dto.HistoryQuery{
		RequestID: c.Query("request_id"),
		Stage:     models.ApprovalStage(c.Query("stage")),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Limit:     intQuery(c, "limit", 50),
		Offset:    intQuery(c, "offset", 0),
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func paginationFor(limit, offset, count int) *models.Pagination {
	if limit <= 0 {
		return nil
	}
	return &models.Pagination{Page: offset/limit + 1, PageSize: limit, TotalCount: count}
}
