package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/response"
)

type referenceService interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, actor models.ViewerScope, dept *models.Department) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, actor models.ViewerScope, room *models.Room) error
}

// ReferenceHandler serves the department and room lookup endpoints.
type ReferenceHandler struct {
	service referenceService
	scopes  *ScopeResolver
}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler(service referenceService, scopes *ScopeResolver) *ReferenceHandler {
	return &ReferenceHandler{service: service, scopes: scopes}
}

// ListDepartments godoc
// @Summary List departments
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *ReferenceHandler) ListDepartments(c *gin.Context) {
	departments, err := h.service.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags Reference
// @Accept json
// @Produce json
// @Param payload body models.Department true "Department"
// @Success 201 {object} response.Envelope
// @Router /departments [post]
func (h *ReferenceHandler) CreateDepartment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var dept models.Department
	if err := c.ShouldBindJSON(&dept); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid department payload"))
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.CreateDepartment(c.Request.Context(), scope, &dept); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dept)
}

// ListRooms godoc
// @Summary List rooms
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *ReferenceHandler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// CreateRoom godoc
// @Summary Create a room
// @Tags Reference
// @Accept json
// @Produce json
// @Param payload body models.Room true "Room"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *ReferenceHandler) CreateRoom(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}

	scope, err := h.scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.CreateRoom(c.Request.Context(), scope, &room); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}
