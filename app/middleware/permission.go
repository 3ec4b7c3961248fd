package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"
	"github.com/taskhub-io/ms-go-taskhub/app/service"

	"github.com/labstack/echo/v4"
)

type projectAuthorizer interface {
	Authorize(ctx context.Context, userID, projectID uint64, allowedRoles []string) (string, error)
}

// PermissionMiddleware gates project-scoped routes on the caller's
// membership role. The allow-list is supplied per route; the check is a
// flat membership test with no role hierarchy.
type PermissionMiddleware struct {
	permissions projectAuthorizer
}

func NewPermissionMiddleware(permissions projectAuthorizer) *PermissionMiddleware {
	return &PermissionMiddleware{permissions: permissions}
}

// RequireProjectRole authorizes the caller against the :projectId route
// param and re-attaches the current user with the resolved role so handlers
// can read it without a second membership lookup.
func (m *PermissionMiddleware) RequireProjectRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
			}

			projectID, err := strconv.ParseUint(c.Param("projectId"), 10, 64)
			if err != nil {
				return httpdto.NewAPIError(http.StatusBadRequest, "invalid project id")
			}

			role, err := m.permissions.Authorize(c.Request().Context(), user.ID, projectID, roles)
			if err != nil {
				if errors.Is(err, service.ErrNoMembership) {
					return httpdto.NewAPIError(http.StatusForbidden, "no membership for this project")
				}
				if errors.Is(err, service.ErrInsufficientRole) {
					return httpdto.NewAPIError(http.StatusForbidden, "you don't have access to perform this action")
				}
				return err
			}

			user.Role = role
			setCurrentUser(c, user)

			return next(c)
		}
	}
}
