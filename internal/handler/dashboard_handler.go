package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/middleware"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, scope models.ViewerScope) (*dto.DashboardPayload, bool, error)
}

// DashboardHandler wires the dashboard service to HTTP.
type DashboardHandler struct {
	service dashboardService
	scopes  *ScopeResolver
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, scopes *ScopeResolver) *DashboardHandler {
	return &DashboardHandler{service: service, scopes: scopes}
}

// Summary godoc
// @Summary Role-scoped landing view
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	start := time.Now()
	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, cacheHit, err := h.service.Summary(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, payload, nil, meta)
}
