package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/ports"
)

// CookieConfig names the session cookies and sets their Secure attribute.
type CookieConfig struct {
	SessionName string
	LegacyName  string
	Secure      bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.cookie(h.cookies.SessionName, res.Token, res.ExpiresAt))
	if res.LegacySessionID != "" {
		c.SetCookie(h.cookie(h.cookies.LegacyName, res.LegacySessionID, res.ExpiresAt))
	}

	return c.JSON(http.StatusOK, loginResponse{
		User:      toUserResponse(res.User),
		ExpiresAt: res.ExpiresAt,
	})
}

// Logout revokes the legacy session, if any, and clears both cookies.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Failure      500  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(h.cookies.LegacyName); err == nil && ck.Value != "" {
		if err := h.authService.Logout(c.Request().Context(), ck.Value); err != nil {
			return err
		}
	}

	c.SetCookie(h.expired(h.cookies.SessionName))
	c.SetCookie(h.expired(h.cookies.LegacyName))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity resolved for the current request.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{
		ID:       identity.ID,
		Role:     string(identity.Role),
		Email:    identity.Email,
		TenantID: identity.TenantID,
	})
}

func (h *AuthHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) expired(name string) *http.Cookie {
	ck := h.cookie(name, "", time.Unix(0, 0))
	ck.MaxAge = -1
	return ck
}
