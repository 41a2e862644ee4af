package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/response"
)

type bootstrapService interface {
	BootstrapAdmin(ctx context.Context, req dto.BootstrapAdminRequest) (*dto.BootstrapAdminResult, error)
}

// BootstrapHandler exposes the first-admin bootstrap endpoint.
type BootstrapHandler struct {
	service bootstrapService
}

// NewBootstrapHandler constructs the handler.
func NewBootstrapHandler(service bootstrapService) *BootstrapHandler {
	return &BootstrapHandler{service: service}
}

// BootstrapAdmin godoc
// @Summary Seed or repair the first administrator account
// @Tags Bootstrap
// @Accept json
// @Produce json
// @Param payload body dto.BootstrapAdminRequest true "Admin credentials"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bootstrap/admin [post]
func (h *BootstrapHandler) BootstrapAdmin(c *gin.Context) {
	var req dto.BootstrapAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bootstrap payload"))
		return
	}

	result, err := h.service.BootstrapAdmin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
