package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/api/middleware"
	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

// newTestContext builds an echo context with the validator wired and, when
// identity is non-nil, the identity already resolved.
func newTestContext(method, target, body string, identity *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		middleware.SetIdentity(c, identity)
	}
	return c, rec
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

var (
	adminIdentity  = &domain.Identity{ID: "admin-1", Role: domain.RoleAdmin, Email: "admin@portal.test"}
	clientIdentity = &domain.Identity{ID: "client-1", Role: domain.RoleClientUser, Email: "c@acme.test", TenantID: "tenant-a"}
)

// --- Auth service ---

type stubAuthService struct {
	loginFn  func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn func(ctx context.Context, legacySessionID string) error
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, legacySessionID string) error {
	return s.logoutFn(ctx, legacySessionID)
}

// --- Gate ---

type stubGate struct {
	accessErr error
	manageErr error
	calls     []string
}

func (g *stubGate) RequireTenantAccess(_ context.Context, _ *domain.Identity, tenantID string) error {
	g.calls = append(g.calls, "access:"+tenantID)
	return g.accessErr
}

func (g *stubGate) RequireTenantUserManagement(_ context.Context, _ *domain.Identity, tenantID string) error {
	g.calls = append(g.calls, "manage:"+tenantID)
	return g.manageErr
}

// --- Tenant service ---

type stubTenantService struct {
	listFn     func(ctx context.Context, identity *domain.Identity) ([]*domain.Tenant, error)
	getFn      func(ctx context.Context, tenantID string) (*domain.Tenant, error)
	createFn   func(ctx context.Context, acting *domain.Identity, in ports.CreateTenantInput) (*domain.Tenant, error)
	deleteFn   func(ctx context.Context, acting *domain.Identity, tenantID string) (*ports.DeleteTenantResult, error)
	assignFn   func(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error
	unassignFn func(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error
}

func (s *stubTenantService) ListTenants(ctx context.Context, identity *domain.Identity) ([]*domain.Tenant, error) {
	return s.listFn(ctx, identity)
}

func (s *stubTenantService) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return s.getFn(ctx, tenantID)
}

func (s *stubTenantService) CreateTenant(ctx context.Context, acting *domain.Identity, in ports.CreateTenantInput) (*domain.Tenant, error) {
	return s.createFn(ctx, acting, in)
}

func (s *stubTenantService) DeleteTenant(ctx context.Context, acting *domain.Identity, tenantID string) (*ports.DeleteTenantResult, error) {
	return s.deleteFn(ctx, acting, tenantID)
}

func (s *stubTenantService) AssignEngineer(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error {
	return s.assignFn(ctx, acting, tenantID, engineerID)
}

func (s *stubTenantService) UnassignEngineer(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error {
	return s.unassignFn(ctx, acting, tenantID, engineerID)
}

// --- User service ---

type stubUserService struct {
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	listFn   func(ctx context.Context, tenantID string) ([]*domain.User, error)
	deleteFn func(ctx context.Context, acting *domain.Identity, tenantID, userID string) error
}

func (s *stubUserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) ListTenantUsers(ctx context.Context, tenantID string) ([]*domain.User, error) {
	return s.listFn(ctx, tenantID)
}

func (s *stubUserService) DeleteTenantUser(ctx context.Context, acting *domain.Identity, tenantID, userID string) error {
	return s.deleteFn(ctx, acting, tenantID, userID)
}

// --- Usage ---

type stubDispatcher struct {
	err     error
	single  []ports.UsageEventInput
	batches [][]ports.UsageEventInput
}

func (d *stubDispatcher) Enqueue(event ports.UsageEventInput) error {
	if d.err != nil {
		return d.err
	}
	d.single = append(d.single, event)
	return nil
}

func (d *stubDispatcher) EnqueueBatch(events []ports.UsageEventInput) error {
	if d.err != nil {
		return d.err
	}
	d.batches = append(d.batches, events)
	return nil
}

type stubUsageService struct {
	summaryFn func(ctx context.Context, tenantID string, from, to time.Time) (*ports.UsageSummary, error)
}

func (s *stubUsageService) Process(context.Context, ports.UsageEventInput) error { return nil }

func (s *stubUsageService) Summary(ctx context.Context, tenantID string, from, to time.Time) (*ports.UsageSummary, error) {
	return s.summaryFn(ctx, tenantID, from, to)
}
