package handler

import (
	"time"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

// errorResponse mirrors the envelope written by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type identityResponse struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

// --- Users ---

type createStaffRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"max=200"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN SOLUTIONS_ENGINEER"`
}

type createTenantUserRequest struct {
	Email            string `json:"email"              validate:"required,email"`
	Name             string `json:"name"               validate:"max=200"`
	Password         string `json:"password"           validate:"omitempty,min=8"`
	IsOrgAdmin       bool   `json:"is_org_admin"`
	HasBillingAccess bool   `json:"has_billing_access"`
}

type userResponse struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name,omitempty"`
	Role              string    `json:"role"`
	TenantID          string    `json:"tenant_id,omitempty"`
	IsOrgAdmin        bool      `json:"is_org_admin,omitempty"`
	HasBillingAccess  bool      `json:"has_billing_access,omitempty"`
	AssignedTenantIDs []string  `json:"assigned_tenant_ids,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role()),
		CreatedAt: u.CreatedAt,
	}
	switch p := u.Profile.(type) {
	case domain.SolutionsEngineerProfile:
		resp.AssignedTenantIDs = p.AssignedTenantIDs
	case domain.ClientUserProfile:
		resp.TenantID = p.TenantID
		resp.IsOrgAdmin = p.IsOrgAdmin
		resp.HasBillingAccess = p.HasBillingAccess
	}
	return resp
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// --- Tenants ---

type createTenantRequest struct {
	Name           string `json:"name"            validate:"required,max=200"`
	SubscriptionID string `json:"subscription_id"`
	CreditBalance  int64  `json:"credit_balance"  validate:"gte=0"`
	PipelineStage  string `json:"pipeline_stage"  validate:"omitempty,oneof=discovery onboarding build live"`
}

type tenantResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	AssignedEngineerIDs []string  `json:"assigned_engineer_ids"`
	SubscriptionID      string    `json:"subscription_id,omitempty"`
	CreditBalance       int64     `json:"credit_balance"`
	PipelineStage       string    `json:"pipeline_stage"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type deleteTenantResponse struct {
	TenantID         string `json:"tenant_id"`
	DeletedUserCount int    `json:"deleted_user_count"`
}

func toTenantResponse(t *domain.Tenant) tenantResponse {
	engineers := t.AssignedEngineerIDs
	if engineers == nil {
		engineers = []string{}
	}
	return tenantResponse{
		ID:                  t.ID,
		Name:                t.Name,
		AssignedEngineerIDs: engineers,
		SubscriptionID:      t.SubscriptionID,
		CreditBalance:       t.CreditBalance,
		PipelineStage:       string(t.PipelineStage),
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

// --- Usage ---

type usageEventRequest struct {
	EventID   string    `json:"event_id"  validate:"max=128"`
	TenantID  string    `json:"tenant_id" validate:"required"`
	Metric    string    `json:"metric"    validate:"required,max=64"`
	Quantity  int64     `json:"quantity"  validate:"gt=0"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"    validate:"max=64"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type usageTotalResponse struct {
	Metric   string `json:"metric"`
	Quantity int64  `json:"quantity"`
	Events   int64  `json:"events"`
}

type usageSummaryResponse struct {
	TenantID string               `json:"tenant_id"`
	From     time.Time            `json:"from"`
	To       time.Time            `json:"to"`
	Totals   []usageTotalResponse `json:"totals"`
}

func toUsageSummaryResponse(s *ports.UsageSummary) usageSummaryResponse {
	totals := make([]usageTotalResponse, 0, len(s.Totals))
	for _, t := range s.Totals {
		totals = append(totals, usageTotalResponse{Metric: t.Metric, Quantity: t.Quantity, Events: t.Events})
	}
	return usageSummaryResponse{TenantID: s.TenantID, From: s.From, To: s.To, Totals: totals}
}
