package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	"github.com/noah-isme/hostel-outing-api/internal/service"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/response"
)

type exportService interface {
	ApprovalSlip(ctx context.Context, requestID string, scope models.ViewerScope) (*service.ExportArtifact, error)
	HistoryCSV(ctx context.Context, scope models.ViewerScope, query dto.OutingQuery) (*service.ExportArtifact, error)
	Download(viewerID, token string) (io.ReadCloser, string, error)
}

// ExportHandler serves approval slips and history exports.
type ExportHandler struct {
	service exportService
	scopes  *ScopeResolver
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService, scopes *ScopeResolver) *ExportHandler {
	return &ExportHandler{service: service, scopes: scopes}
}

// ApprovalSlip godoc
// @Summary Generate the approval slip for an approved request
// @Tags Exports
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exports/outings/{id}/slip [post]
func (h *ExportHandler) ApprovalSlip(c *gin.Context) {
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
	artifact, err := h.service.ApprovalSlip(c.Request.Context(), c.Param("id"), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, artifact, nil)
}

// HistoryCSV godoc
// @Summary Export the viewer's request history as CSV
// @Tags Exports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /exports/outings/history [post]
func (h *ExportHandler) HistoryCSV(c *gin.Context) {
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
	artifact, err := h.service.HistoryCSV(c.Request.Context(), scope, outingQueryFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, artifact, nil)
}

// Download godoc
// @Summary Download a previously generated export
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	reader, contentType, err := h.service.Download(claims.UserID, token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
