package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

type TenantHandler struct {
	service ports.TenantService
	gate    TenantGate
}

func NewTenantHandler(service ports.TenantService, gate TenantGate) *TenantHandler {
	return &TenantHandler{service: service, gate: gate}
}

// List returns the tenants visible to the caller.
//
// @Summary      List tenants
// @Description  Admins see every tenant, engineers their assignments, client users their own tenant.
// @Tags         tenants
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   tenantResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/tenants [get]
func (h *TenantHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	tenants, err := h.service.ListTenants(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	resp := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		resp = append(resp, toTenantResponse(t))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create opens a new client account.
//
// @Summary      Create tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      createTenantRequest  true  "Tenant"
// @Success      201   {object}  tenantResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/tenants [post]
func (h *TenantHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	tenant, err := h.service.CreateTenant(c.Request().Context(), identity, ports.CreateTenantInput{
		Name:           req.Name,
		SubscriptionID: req.SubscriptionID,
		CreditBalance:  req.CreditBalance,
		PipelineStage:  domain.PipelineStage(req.PipelineStage),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTenantResponse(tenant))
}

// Get returns one tenant the caller may access.
//
// @Summary      Get tenant
// @Tags         tenants
// @Produce      json
// @Security     SessionCookie
// @Param        tenant_id  path      string  true  "Tenant ID"
// @Success      200        {object}  tenantResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/tenants/{tenant_id} [get]
func (h *TenantHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	tenantID := c.Param("tenant_id")
	if err := h.gate.RequireTenantAccess(ctx, identity, tenantID); err != nil {
		return err
	}

	tenant, err := h.service.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTenantResponse(tenant))
}

// Delete removes a tenant together with its client users and engineer links.
//
// @Summary      Delete tenant
// @Description  Runs as one transaction: either everything is removed or nothing is.
// @Tags         tenants
// @Produce      json
// @Security     SessionCookie
// @Param        tenant_id  path      string  true  "Tenant ID"
// @Success      200        {object}  deleteTenantResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /v1/tenants/{tenant_id} [delete]
func (h *TenantHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	tenantID := c.Param("tenant_id")
	res, err := h.service.DeleteTenant(c.Request().Context(), identity, tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteTenantResponse{
		TenantID:         tenantID,
		DeletedUserCount: res.DeletedUserCount,
	})
}

// AssignEngineer links a solutions engineer to a tenant.
//
// @Summary      Assign engineer
// @Tags         tenants
// @Security     SessionCookie
// @Param        tenant_id  path  string  true  "Tenant ID"
// @Param        user_id    path  string  true  "Engineer user ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/tenants/{tenant_id}/engineers/{user_id} [put]
func (h *TenantHandler) AssignEngineer(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.AssignEngineer(c.Request().Context(), identity, c.Param("tenant_id"), c.Param("user_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UnassignEngineer removes the link between a solutions engineer and a tenant.
//
// @Summary      Unassign engineer
// @Tags         tenants
// @Security     SessionCookie
// @Param        tenant_id  path  string  true  "Tenant ID"
// @Param        user_id    path  string  true  "Engineer user ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tenants/{tenant_id}/engineers/{user_id} [delete]
func (h *TenantHandler) UnassignEngineer(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.UnassignEngineer(c.Request().Context(), identity, c.Param("tenant_id"), c.Param("user_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
