package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/response"
)

type boardService interface {
	CreateNotice(ctx context.Context, actor models.ViewerScope, req dto.CreateNoticeRequest) (*models.Notice, error)
	ListNotices(ctx context.Context, role models.UserRole, limit int) ([]models.Notice, error)
	DeleteNotice(ctx context.Context, actor models.ViewerScope, id string) error
	CreateComplaint(ctx context.Context, studentID string, req dto.CreateComplaintRequest) (*models.Complaint, error)
	GetComplaint(ctx context.Context, viewer models.ViewerScope, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, viewer models.ViewerScope, status models.ComplaintStatus, limit, offset int) ([]models.Complaint, int, error)
	UpdateComplaintStatus(ctx context.Context, actor models.ViewerScope, id string, req dto.UpdateComplaintStatusRequest) error
}

// BoardHandler wires notice board and complaint endpoints.
type BoardHandler struct {
	service boardService
	scopes  *ScopeResolver
}

// NewBoardHandler constructs the handler.
func NewBoardHandler(service boardService, scopes *ScopeResolver) *BoardHandler {
	return &BoardHandler{service: service, scopes: scopes}
}

// CreateNotice godoc
// @Summary Post a notice
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.CreateNoticeRequest true "Notice"
// @Success 201 {object} response.Envelope
// @Router /notices [post]
func (h *BoardHandler) CreateNotice(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notice payload"))
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	notice, err := h.service.CreateNotice(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// ListNotices godoc
// @Summary List active notices for the viewer's role
// @Tags Board
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *BoardHandler) ListNotices(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	notices, err := h.service.ListNotices(c.Request.Context(), claims.Role, intQuery(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// DeleteNotice godoc
// @Summary Delete a notice
// @Tags Board
// @Param id path string true "Notice ID"
// @Success 204 {object} response.Envelope
// @Router /notices/{id} [delete]
func (h *BoardHandler) DeleteNotice(c *gin.Context) {
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
	if err := h.service.DeleteNotice(c.Request.Context(), scope, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateComplaint godoc
// @Summary File a complaint
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.CreateComplaintRequest true "Complaint"
// @Success 201 {object} response.Envelope
// @Router /complaints [post]
func (h *BoardHandler) CreateComplaint(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid complaint payload"))
		return
	}

	complaint, err := h.service.CreateComplaint(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// GetComplaint godoc
// @Summary Fetch one complaint
// @Tags Board
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *BoardHandler) GetComplaint(c *gin.Context) {
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
	complaint, err := h.service.GetComplaint(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// ListComplaints godoc
// @Summary List complaints visible to the viewer
// @Tags Board
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *BoardHandler) ListComplaints(c *gin.Context) {
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
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	complaints, total, err := h.service.ListComplaints(c.Request.Context(), scope, models.ComplaintStatus(c.Query("status")), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, paginationFor(limit, offset, total))
}

// UpdateComplaintStatus godoc
// @Summary Move a complaint through handling
// @Tags Board
// @Accept json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateComplaintStatusRequest true "Status"
// @Success 204 {object} response.Envelope
// @Router /complaints/{id}/status [put]
func (h *BoardHandler) UpdateComplaintStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.UpdateComplaintStatus(c.Request.Context(), scope, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
