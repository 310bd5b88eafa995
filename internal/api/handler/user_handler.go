package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
	gate    TenantGate
}

func NewUserHandler(service ports.UserService, gate TenantGate) *UserHandler {
	return &UserHandler{service: service, gate: gate}
}

// CreateStaff creates an ADMIN or SOLUTIONS_ENGINEER account.
//
// @Summary      Create staff user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      createStaffRequest  true  "Staff user"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) CreateStaff(c echo.Context) error {
	var req createStaffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// ListTenantUsers returns the client users of a tenant.
//
// @Summary      List tenant users
// @Tags         users
// @Produce      json
// @Security     SessionCookie
// @Param        tenant_id  path      string  true  "Tenant ID"
// @Success      200        {array}   userResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/tenants/{tenant_id}/users [get]
func (h *UserHandler) ListTenantUsers(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	tenantID := c.Param("tenant_id")
	if err := h.gate.RequireTenantAccess(ctx, identity, tenantID); err != nil {
		return err
	}

	users, err := h.service.ListTenantUsers(ctx, tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// CreateTenantUser adds a client user to a tenant. Requires org admin rights
// within the tenant, or ADMIN.
//
// @Summary      Create tenant user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        tenant_id  path      string                   true  "Tenant ID"
// @Param        body       body      createTenantUserRequest  true  "Client user"
// @Success      201        {object}  userResponse
// @Failure      400        {object}  errorResponse
// @Failure      422        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      409        {object}  errorResponse
// @Router       /v1/tenants/{tenant_id}/users [post]
func (h *UserHandler) CreateTenantUser(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	tenantID := c.Param("tenant_id")
	if err := h.gate.RequireTenantUserManagement(ctx, identity, tenantID); err != nil {
		return err
	}

	var req createTenantUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.CreateUser(ctx, ports.CreateUserInput{
		Email:            req.Email,
		Name:             req.Name,
		Password:         req.Password,
		Role:             domain.RoleClientUser,
		TenantID:         tenantID,
		IsOrgAdmin:       req.IsOrgAdmin,
		HasBillingAccess: req.HasBillingAccess,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// DeleteTenantUser removes a client user from a tenant.
//
// @Summary      Delete tenant user
// @Tags         users
// @Security     SessionCookie
// @Param        tenant_id  path  string  true  "Tenant ID"
// @Param        user_id    path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tenants/{tenant_id}/users/{user_id} [delete]
func (h *UserHandler) DeleteTenantUser(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	tenantID := c.Param("tenant_id")
	if err := h.gate.RequireTenantUserManagement(ctx, identity, tenantID); err != nil {
		return err
	}

	if err := h.service.DeleteTenantUser(ctx, identity, tenantID, c.Param("user_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
