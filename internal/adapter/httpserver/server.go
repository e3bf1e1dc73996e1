package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/csentein/P6-Sentein-Clement/internal/app"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/config"
	"github.com/csentein/P6-Sentein-Clement/internal/rating"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type appService interface {
	ListItems(ctx context.Context) ([]*domain.Item, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*domain.Item, error)
	CreateItem(ctx context.Context, ownerID string, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error)
	UpdateItem(ctx context.Context, callerID string, itemID uuid.UUID, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error)
	DeleteItem(ctx context.Context, callerID string, itemID uuid.UUID) error
	Vote(ctx context.Context, itemID uuid.UUID, userID string, intent domain.VoteIntent) (*rating.Result, error)
	Signup(ctx context.Context, email, password string) (*domain.Account, error)
	Login(ctx context.Context, clientKey, email, password string) (*app.LoginResult, error)
}

// authenticator resolves an Authorization header to a user id.
type authenticator interface {
	Authenticate(header string) (string, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app   appService
	guard authenticator

	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	authMetrics  *metrics.AuthMetrics
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, guard authenticator, registry *prometheus.Registry, authMetrics *metrics.AuthMetrics, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor(cfg)

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		guard:        guard,
		registry:     registry,
		httpMetrics:  metrics.NewHTTPMetrics(registry),
		authMetrics:  authMetrics,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

// ipExtractor decides where c.RealIP comes from. Without trusted proxies the
// TCP peer is the client; forwarding headers are only read when they were
// appended by a configured proxy.
func ipExtractor(cfg *config.Config) echo.IPExtractor {
	// Load already rejected malformed ranges.
	nets, _ := cfg.TrustedProxyNets()
	if len(nets) == 0 {
		return echo.ExtractIPDirect()
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range nets {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func (s *Server) getBaseURL(c echo.Context) string {
	scheme := "http"
	if c.Request().TLS != nil {
		scheme = "https"
	}
	if fwdProto := c.Request().Header.Get("X-Forwarded-Proto"); fwdProto == "http" || fwdProto == "https" {
		scheme = fwdProto
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request().Host)
}
