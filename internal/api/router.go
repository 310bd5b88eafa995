package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/client-portal/internal/api/handler"
	"github.com/99minutos/client-portal/internal/api/middleware"
	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

// Dependencies are the collaborators NewRouter wires into routes.
type Dependencies struct {
	Log zerolog.Logger

	Resolver middleware.IdentityResolver
	KeyGate  middleware.KeyGate
	Gate     handler.TenantGate

	Auth       ports.AuthService
	Tenants    ports.TenantService
	Users      ports.UserService
	Usage      ports.UsageService
	Dispatcher handler.UsageDispatcher

	Cookies   handler.CookieConfig
	Readiness map[string]handler.Pinger

	// Registry receives HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
	// Swagger mounts the API docs UI at /swagger/*.
	Swagger bool
}

var (
	anyRole    = []domain.Role{domain.RoleAdmin, domain.RoleSolutionsEngineer, domain.RoleClientUser}
	tenantSide = []domain.Role{domain.RoleAdmin, domain.RoleClientUser}
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health")
		},
	}))

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	if deps.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	authn := middleware.Authenticate(deps.Resolver)
	requireAny := middleware.RequireRoles(anyRole...)
	requireAdmin := middleware.RequireRoles(domain.RoleAdmin)
	requireTenantSide := middleware.RequireRoles(tenantSide...)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, authn)

	v1 := e.Group("/v1")

	// --- Tenants ---
	tenantHandler := handler.NewTenantHandler(deps.Tenants, deps.Gate)
	userHandler := handler.NewUserHandler(deps.Users, deps.Gate)
	usageHandler := handler.NewUsageHandler(deps.Dispatcher, deps.Usage, deps.Gate)

	tenants := v1.Group("/tenants", authn)
	tenants.GET("", tenantHandler.List, requireAny)
	tenants.POST("", tenantHandler.Create, requireAdmin)
	tenants.GET("/:tenant_id", tenantHandler.Get, requireAny)
	tenants.DELETE("/:tenant_id", tenantHandler.Delete, requireAdmin)
	tenants.PUT("/:tenant_id/engineers/:user_id", tenantHandler.AssignEngineer, requireAdmin)
	tenants.DELETE("/:tenant_id/engineers/:user_id", tenantHandler.UnassignEngineer, requireAdmin)
	tenants.GET("/:tenant_id/users", userHandler.ListTenantUsers, requireAny)
	tenants.POST("/:tenant_id/users", userHandler.CreateTenantUser, requireTenantSide)
	tenants.DELETE("/:tenant_id/users/:user_id", userHandler.DeleteTenantUser, requireTenantSide)
	tenants.GET("/:tenant_id/usage", usageHandler.Summary, requireAny)

	// --- Staff accounts ---
	v1.POST("/users", userHandler.CreateStaff, authn, requireAdmin)

	// --- Usage ingestion (machine-to-machine) ---
	ingest := v1.Group("/ingest", middleware.APIKey(deps.KeyGate))
	ingest.POST("/usage", usageHandler.Receive)
	ingest.POST("/usage/batch", usageHandler.ReceiveBatch)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Status >= 400:
				ev = log.Warn()
			}
			if identity := middleware.IdentityFrom(c); identity != nil {
				ev = ev.Str("user_id", identity.ID).Str("role", string(identity.Role))
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
