package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	echoapi "go.pilab.hu/grants/api/echo"
	"go.pilab.hu/grants/cache"
	"go.pilab.hu/grants/config"
	"go.pilab.hu/grants/log"
	"go.pilab.hu/grants/middleware"
)

// NewRouter creates the echo instance serving the API, the health check and
// the metrics of gatherer. The health check reports the size of tokenCache
// when one is given.
func NewRouter(cfg *config.ServerConfig, appLogger log.Logger, api *echoapi.AuthorizationsAPI, tokenCache cache.TokenStore, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTML forms can only POST; the revoke form carries _method=DELETE.
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromForm("_method"),
	}))

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.SecurityHeaders())

	if cfg.OtelEnabled {
		e.Use(otelecho.Middleware(cfg.OtelServiceName))
	}

	// Request logging through our logger interface
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := log.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     c.Response().Status,
				"latency":    time.Since(start).String(),
				"ip":         c.RealIP(),
				"user_agent": req.UserAgent(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if err != nil {
				appLogger.Error(req.Context(), "HTTP Request", err, fields)
			} else {
				appLogger.Info(req.Context(), "HTTP Request", fields)
			}
			return nil
		}
	})

	e.GET("/healthz", func(c echo.Context) error {
		health := map[string]any{"status": "ok"}
		if tokenCache != nil {
			health["token_cache_entries"] = tokenCache.Count(c.Request().Context())
		}
		return c.JSON(http.StatusOK, health)
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api.RegisterRoutes(e)

	return e
}

// NewHTTPServer wraps the router in an http.Server listening on cfg.HTTPAddr.
func NewHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
