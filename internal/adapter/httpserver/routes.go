package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const hstsMaxAge = 63072000 // 2 years; only sent over HTTPS

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.httpMetrics.Middleware())
	s.echo.Use(ErrorHandlingMiddleware())
	s.echo.Use(middleware.SecureWithConfig(s.secureConfig()))
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.config.CORSAllowOrigin},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodPatch, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, "X-Requested-With", "Content", echo.HeaderAccept,
			echo.HeaderContentType, echo.HeaderAuthorization,
		},
	}))
	s.echo.Use(middleware.BodyLimit(strconv.FormatInt(s.config.MaxUploadBytes, 10) + "B"))

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerItemRoutes()

	s.echo.Static("/images", s.config.ImageDir)
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))
}

func (s *Server) secureConfig() middleware.SecureConfig {
	cfg := middleware.SecureConfig{
		XSSProtection:         "",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: "default-src 'none'; img-src 'self'; frame-ancestors 'none'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	if s.config.IsProduction() {
		cfg.HSTSMaxAge = hstsMaxAge
		cfg.HSTSPreloadEnabled = true
	}
	return cfg
}

func (s *Server) registerAuthRoutes() {
	g := s.echo.Group("/api/auth")
	g.POST("/signup", s.handleSignup)
	g.POST("/login", s.handleLogin, newRateLimiter(s.config.LoginRatePerSecond, s.config.LoginRateBurst))
}

func (s *Server) registerItemRoutes() {
	g := s.echo.Group("/api/items", s.requireAuth)
	g.GET("", s.handleListItems)
	g.GET("/:id", s.handleGetItem)
	g.POST("", s.handleCreateItem)
	g.PUT("/:id", s.handleUpdateItem)
	g.DELETE("/:id", s.handleDeleteItem)
	g.POST("/:id/vote", s.handleVote)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
