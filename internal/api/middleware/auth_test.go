package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/domain"
)

type stubResolver struct {
	identity *domain.Identity
}

func (s stubResolver) Resolve(*http.Request) *domain.Identity { return s.identity }

func TestAuthenticate_InjectsIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	want := &domain.Identity{ID: "u1", Role: domain.RoleClientUser, TenantID: "T1"}
	called := false
	handler := Authenticate(stubResolver{identity: want})(func(c echo.Context) error {
		called = true
		if got := IdentityFrom(c); got != want {
			t.Fatalf("identity not set: %+v", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_NoIdentity(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	handler := Authenticate(stubResolver{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if IdentityFrom(c) != nil {
		t.Fatalf("expected nil identity")
	}
}
