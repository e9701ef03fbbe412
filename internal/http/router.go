package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/expensehub/internal/http/handlers"
	"github.com/geocoder89/expensehub/internal/http/middlewares"
	"github.com/geocoder89/expensehub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "expensehub-api"

// Deps is everything the router wires into handlers.
type Deps struct {
	Log    *slog.Logger
	Env    string
	Auth   handlers.AuthService
	Ledger handlers.ExpenseService
	Tokens middlewares.TokenVerifier
	Ping   func(ctx context.Context) error

	// AuthLimiter guards the unauthenticated /auth routes; nil disables it.
	AuthLimiter middlewares.Limiter

	CORSOrigins  []string
	MaxBodyBytes int64

	// Prom and Gatherer are optional; /metrics is mounted when Gatherer is set.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(d.Ping)
	api.GET("/health", h.Health)
	api.GET("/ready", h.Ready)

	requireAuth := middlewares.NewAuthMiddleware(d.Tokens).RequireAuth()

	// auth
	authHandler := handlers.NewAuthHandler(d.Auth, d.Prom, d.Log)
	authGroup := api.Group("/auth")
	if d.AuthLimiter != nil {
		authGroup.Use(middlewares.RateLimit(d.AuthLimiter, middlewares.KeyByIP, d.Log))
	}
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/google", authHandler.Google)
	api.GET("/auth/me", requireAuth, authHandler.Me)

	// expenses
	expensesHandler := handlers.NewExpensesHandler(d.Ledger, d.Log)
	expenses := api.Group("/expenses", requireAuth)
	expenses.GET("", expensesHandler.ListExpenses)
	expenses.POST("", expensesHandler.CreateExpense)
	expenses.PUT("/:id", expensesHandler.UpdateExpense)
	expenses.DELETE("/:id", expensesHandler.DeleteExpense)

	return r
}
