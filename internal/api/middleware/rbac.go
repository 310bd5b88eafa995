package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/access"
	"github.com/99minutos/client-portal/internal/core/domain"
)

// RequireRoles enforces an explicit allow-list of roles. A missing identity
// yields ErrUnauthenticated, a role outside the list a ForbiddenError.
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := domain.NewRoleSet(roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := access.Authorize(IdentityFrom(c), allowed); err != nil {
				return err
			}
			return next(c)
		}
	}
}
