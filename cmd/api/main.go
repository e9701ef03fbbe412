package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/expensehub/internal/auth"
	"github.com/geocoder89/expensehub/internal/config"
	"github.com/geocoder89/expensehub/internal/db"
	httpx "github.com/geocoder89/expensehub/internal/http"
	"github.com/geocoder89/expensehub/internal/http/middlewares"
	"github.com/geocoder89/expensehub/internal/observability"
	"github.com/geocoder89/expensehub/internal/redisclient"
	"github.com/geocoder89/expensehub/internal/service"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "expensehub-api", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	openCtx, cancelOpen := context.WithTimeout(ctx, 15*time.Second)
	store, err := db.Open(openCtx, cfg, prom, log)
	cancelOpen()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	var verifier service.IdentityVerifier
	if cfg.GoogleEnabled() {
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	limiter, closeLimiter := newAuthLimiter(ctx, cfg, log)
	defer closeLimiter()

	router := httpx.NewRouter(httpx.Deps{
		Log:          log,
		Env:          cfg.Env,
		Auth:         service.NewAuthService(store.Users, tokens, verifier, log),
		Ledger:       service.NewLedgerService(store.Expenses),
		Tokens:       tokens,
		Ping:         store.Ping,
		AuthLimiter:  limiter,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Prom:         prom,
		Gatherer:     reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", store.Backend, "google", cfg.GoogleEnabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

// newAuthLimiter prefers Redis so limits hold across instances, and falls
// back to an in-process limiter when Redis is not configured or unreachable.
func newAuthLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (middlewares.Limiter, func()) {
	if cfg.RedisAddr == "" {
		return middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow), func() {}
	}

	rc := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, using in-process rate limiter", "addr", cfg.RedisAddr, "err", err)
		_ = rc.Close()
		return middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow), func() {}
	}

	return middlewares.NewRedisRateLimiter(rc.Raw(), cfg.AuthRateLimit, cfg.AuthRateWindow), func() { _ = rc.Close() }
}
