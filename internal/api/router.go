package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/motogear/resource-api/docs"
	"github.com/motogear/resource-api/internal/api/handler"
	"github.com/motogear/resource-api/internal/api/middleware"
	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
	"github.com/motogear/resource-api/internal/infrastructure/http/handlers"
)

// Deps are the services the router exposes.
type Deps struct {
	Auth      ports.AuthService
	Resources []ports.ResourceService
	Activity  ports.ActivityService
	// Limiter throttles the credential endpoints. Nil disables throttling.
	Limiter middleware.Limiter
	Health  []handlers.Dependency
	// Registerer receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "resource_api",
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))

	// --- Health probes and tooling (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Health...)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authGate := middleware.Auth(deps.Auth)
	v1 := e.Group("/v1")

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	var throttle []echo.MiddlewareFunc
	if deps.Limiter != nil {
		throttle = append(throttle, middleware.Throttle(deps.Limiter, "auth", deps.Log))
	}
	v1.POST("/auth/register", authHandler.Register, throttle...)
	v1.POST("/auth/login", authHandler.Login, throttle...)
	v1.GET("/auth/me", authHandler.Me, authGate)

	// --- Resource routes, one group per kind ---
	for _, svc := range deps.Resources {
		kind := svc.Kind()
		h := handler.NewResourceHandler(svc)
		owned := middleware.Ownership(svc)

		g := v1.Group("/"+kind.Name, authGate)
		g.POST("", h.Create)
		g.GET("", h.List)
		if kind.ListScope == domain.ScopeOwner {
			g.GET("/:id", h.Get, owned)
		} else {
			g.GET("/:id", h.Get)
		}
		g.PUT("/:id", h.Update, owned)
		g.PATCH("/:id", h.Update, owned)
		g.DELETE("/:id", h.Delete, owned)
	}

	// --- Admin ---
	if deps.Activity != nil {
		activityHandler := handler.NewActivityHandler(deps.Activity)
		v1.GET("/activity", activityHandler.List, authGate, middleware.RBAC(domain.RoleAdmin))
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
