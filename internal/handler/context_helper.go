package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-outing-api/internal/middleware"
	"github.com/noah-isme/hostel-outing-api/internal/models"
	appErrors "github.com/noah-isme/hostel-outing-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

type departmentLookup interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// ScopeResolver turns JWT claims into a viewer scope. HODs need their
// department resolved from the profile to shape read queries.
type ScopeResolver struct {
	profiles departmentLookup
}

// NewScopeResolver constructs a resolver backed by the profile store.
func NewScopeResolver(profiles departmentLookup) *ScopeResolver {
	return &ScopeResolver{profiles: profiles}
}

// Resolve builds the viewer scope for the given claims. An HOD scope fails
// closed: without a resolved department the query would span every
// department, so a lookup failure or an unassigned profile is an error.
func (r *ScopeResolver) Resolve(ctx context.Context, claims *models.JWTClaims) (models.ViewerScope, error) {
	scope := models.ViewerScope{Role: claims.Role, UserID: claims.UserID}
	if claims.Role != models.RoleHOD {
		return scope, nil
	}
	if r.profiles == nil {
		return scope, appErrors.Clone(appErrors.ErrForbidden, "department could not be resolved for approver")
	}
	profile, err := r.profiles.GetByUserID(ctx, claims.UserID)
	if err != nil {
		return scope, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "failed to resolve approver department")
	}
	if profile.DepartmentID == nil || *profile.DepartmentID == "" {
		return scope, appErrors.Clone(appErrors.ErrForbidden, "approver profile has no department assigned")
	}
	scope.DepartmentID = *profile.DepartmentID
	return scope, nil
}
