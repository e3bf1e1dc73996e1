package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/account"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/httpserver"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/imagestore"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/memory"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/postgres"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/redis"
	"github.com/csentein/P6-Sentein-Clement/internal/app"
	"github.com/csentein/P6-Sentein-Clement/internal/auth"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/config"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/logging"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
)

// loginHistoryTTL is how long a client's failed logins are remembered.
const loginHistoryTTL = 24 * time.Hour

type stores struct {
	items    domain.ItemRepository
	accounts domain.AccountRepository
	checks   []httpserver.HealthCheck
	close    func()
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStores(cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) stores {
	if cfg.StoreBackend == config.StoreBackendMemory {
		slog.Warn("Using in-memory store, data is lost on restart")
		return stores{
			items:    memory.NewItemStore(clock),
			accounts: memory.NewAccountStore(),
			close:    func() {},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.NewMetricsTracer(metrics.NewDBMetrics(reg)))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return stores{
		items:    postgres.NewItemRepo(pool),
		accounts: postgres.NewAccountRepo(pool),
		checks: []httpserver.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
		},
		close: pool.Close,
	}
}

// setupThrottle uses Redis when configured so every instance shares one view
// of failed logins, and falls back to process memory otherwise.
func setupThrottle(cfg *config.Config, reg prometheus.Registerer, clock clockwork.Clock) (domain.LoginThrottle, *goredis.Client) {
	policy := domain.LoginBackoff{
		FreeAttempts: cfg.LoginFreeAttempts,
		MinWait:      cfg.LoginMinWait,
		MaxWait:      cfg.LoginMaxWait,
		Forget:       loginHistoryTTL,
	}

	if cfg.RedisURL == "" {
		return memory.NewLoginThrottle(clock, policy), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hook := redis.NewCircuitBreakerHook(metrics.NewBreakerMetrics(reg))
	client, err := redis.NewClient(ctx, cfg.RedisURL, hook)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return redis.NewLoginThrottle(client, clock, policy), client
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "store", cfg.StoreBackend)

	registry := metrics.NewRegistry()

	st := setupStores(cfg, registry, clock)
	defer st.close()

	throttle, redisClient := setupThrottle(cfg, registry, clock)
	healthChecks := st.checks
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	images, err := imagestore.NewDisk(cfg.ImageDir, clock)
	if err != nil {
		slog.Error("Failed to set up image store", "error", err)
		os.Exit(1)
	}

	authMetrics := metrics.NewAuthMetrics(registry)
	appSvc := app.NewService(app.Dependencies{
		Items:       st.items,
		Accounts:    st.accounts,
		Images:      images,
		Throttle:    throttle,
		Hasher:      account.NewBcryptHasher(account.DefaultCost),
		Issuer:      auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL, clock),
		Clock:       clock,
		VoteMetrics: metrics.NewVoteMetrics(registry),
		AuthMetrics: authMetrics,
	})

	guard := auth.NewGuard(auth.NewVerifier(cfg.TokenSecret, clock))
	srv := httpserver.NewServer(cfg, appSvc, guard, registry, authMetrics, healthChecks)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
