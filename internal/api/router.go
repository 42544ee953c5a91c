package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ronagung/wedding-registry/docs"
	"github.com/ronagung/wedding-registry/internal/api/cookie"
	"github.com/ronagung/wedding-registry/internal/api/handler"
	"github.com/ronagung/wedding-registry/internal/api/middleware"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

// Dependencies is everything the router wires into handlers and middleware.
type Dependencies struct {
	Auth     ports.AuthService
	Sessions ports.SessionStore
	Gifts    ports.GiftService
	Cookies  *cookie.Policy
	// Readiness is optional; without it only the liveness probe is mounted.
	Readiness *handler.HealthDependenciesHandler
	Logger    zerolog.Logger

	Production bool
	// BasePath mounts every route a second time under this prefix.
	BasePath       string
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Without any, the client IP is
	// the socket peer and forwarding headers are ignored.
	TrustedProxies []*net.IPNet

	// Metrics receives the HTTP request metrics and backs /metrics.
	// Defaults to the global Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.IPExtractor = clientIPExtractor(deps.TrustedProxies)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "registry",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies, deps.Production, deps.Logger)
	giftHandler := handler.NewGiftHandler(deps.Gifts)
	gate := middleware.SessionGate(middleware.SessionGateConfig{
		Sessions:   deps.Sessions,
		Cookies:    deps.Cookies,
		Production: deps.Production,
		Logger:     deps.Logger,
	})
	originGuard := middleware.OriginGuard(deps.AllowedOrigins)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}

	// --- API, at the root and behind the proxy prefix ---
	for _, prefix := range mountPoints(deps.BasePath) {
		api := e.Group(prefix+"/api", originGuard)

		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me, gate)

		api.GET("/gifts", giftHandler.List)
		api.POST("/gifts", giftHandler.Create, gate)
		api.PATCH("/gifts/:id/purchased", giftHandler.SetPurchased, gate)
		api.DELETE("/gifts/:id", giftHandler.Delete, gate)
	}

	return e
}

// clientIPExtractor resolves the address the login throttle is keyed on.
func clientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func mountPoints(basePath string) []string {
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath == "" {
		return []string{""}
	}
	return []string{"", basePath}
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				evt = log.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				evt = log.Warn()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
