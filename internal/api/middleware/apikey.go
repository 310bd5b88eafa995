package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/credential"
)

// KeyGate is the machine-to-machine API key check.
type KeyGate interface {
	Authenticate(r *http.Request) *credential.Denial
	ViaQuery(r *http.Request) bool
}

// APIKey guards a route group with the shared ingestion key. Requests that
// pass the key in the query string are served with deprecation headers.
func APIKey(gate KeyGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			if gate.ViaQuery(r) {
				h := c.Response().Header()
				h.Set("Deprecation", "true")
				h.Set("Warning", `299 - "api_key query parameter is deprecated; send the `+credential.HeaderAPIKey+` header"`)
			}
			if d := gate.Authenticate(r); d != nil {
				return d
			}
			return next(c)
		}
	}
}
