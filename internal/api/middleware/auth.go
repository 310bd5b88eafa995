package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/domain"
)

const identityKey = "identity"

// IdentityResolver turns a request into the caller's identity, or nil.
type IdentityResolver interface {
	Resolve(r *http.Request) *domain.Identity
}

// Authenticate resolves the caller and injects the identity into context.
// Requests that resolve to no identity stop here with ErrUnauthenticated.
func Authenticate(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := resolver.Resolve(c.Request())
			if identity == nil {
				return domain.ErrUnauthenticated
			}
			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// SetIdentity stores identity on the request context.
func SetIdentity(c echo.Context, identity *domain.Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the identity stored by Authenticate, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(identityKey).(*domain.Identity)
	return identity
}
