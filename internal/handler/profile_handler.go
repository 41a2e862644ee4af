package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/dto"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
	"github.com/noah-isme/hostel-outing-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, userID string) (*dto.ProfileView, error)
	GetFor(ctx context.Context, viewer models.ViewerScope, userID string) (*dto.ProfileView, error)
	List(ctx context.Context, viewer models.ViewerScope, filter models.ProfileFilter) ([]dto.ProfileView, int, error)
	Update(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.ProfileView, error)
	Review(ctx context.Context, reviewerID, userID string, req dto.ReviewProfileRequest) error
	UploadPhoto(ctx context.Context, userID string, header *multipart.FileHeader) (*dto.ProfileView, error)
	PhotoURL(ctx context.Context, viewer models.ViewerScope, userID string) (string, error)
}

// ProfileHandler wires the profile endpoints.
type ProfileHandler struct {
	service profileService
	scopes  *ScopeResolver
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service profileService, scopes *ScopeResolver) *ProfileHandler {
	return &ProfileHandler{service: service, scopes: scopes}
}

// Me godoc
// @Summary Get own profile
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profiles/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Get godoc
// @Summary Get a user's profile
// @Tags Profiles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
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
	profile, err := h.service.GetFor(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// List godoc
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Param role query string false "Role filter"
// @Param search query string false "Name or email search"
// @Success 200 {object} response.Envelope
// @Router /profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
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

	filter := models.ProfileFilter{
		DepartmentID: c.Query("department_id"),
		Search:       c.Query("search"),
		Limit:        intQuery(c, "limit", 50),
		Offset:       intQuery(c, "offset", 0),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		filter.Role = &role
	}

	profiles, total, err := h.service.List(c.Request.Context(), scope, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, paginationFor(filter.Limit, filter.Offset, total))
}

// Update godoc
// @Summary Update own profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profiles/me [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Review godoc
// @Summary Approve or block a profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.ReviewProfileRequest true "Review flags"
// @Success 204 {object} response.Envelope
// @Router /profiles/{id}/review [post]
func (h *ProfileHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReviewProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	if err := h.service.Review(c.Request.Context(), claims.UserID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPhoto godoc
// @Summary Upload a profile photo
// @Tags Profiles
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profiles/me/photo [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo file is required"))
		return
	}

	profile, err := h.service.UploadPhoto(c.Request.Context(), claims.UserID, header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// PhotoURL godoc
// @Summary Get a signed download token for a profile photo
// @Tags Profiles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /profiles/{id}/photo-url [get]
func (h *ProfileHandler) PhotoURL(c *gin.Context) {
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
	token, err := h.service.PhotoURL(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"token": token}, nil)
}
