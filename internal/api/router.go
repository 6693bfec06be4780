package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/prolink/credits-system/internal/api/handler"
	"github.com/prolink/credits-system/internal/api/middleware"
	"github.com/prolink/credits-system/internal/core/domain"
	"github.com/prolink/credits-system/internal/core/service"
	mongodb "github.com/prolink/credits-system/internal/infrastructure/db/mongo"
	redisdb "github.com/prolink/credits-system/internal/infrastructure/db/redis"
	"github.com/prolink/credits-system/internal/infrastructure/queue"
)

// Deps bundles the external connections the router wires together.
type Deps struct {
	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	Redis       *redis.Client
	JWTSecret   string
	Workers     int
	Logger      zerolog.Logger
}

// Router is the fully wired HTTP surface plus the intake dispatcher, which
// the caller must Start.
type Router struct {
	Echo       *echo.Echo
	Dispatcher *queue.Dispatcher
}

// NewRouter builds the Echo instance with all routes registered and all
// services wired against the given stores.
func NewRouter(deps Deps) *Router {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("credits"))

	// --- Repositories ---
	ledgerRepo := mongodb.NewLedgerRepository(deps.MongoClient, deps.MongoDB)
	unlockRepo := mongodb.NewUnlockRepository(deps.MongoClient, deps.MongoDB)
	identityRepo := mongodb.NewIdentityRepository(deps.MongoDB)
	conversationRepo := mongodb.NewConversationRepository(deps.MongoDB)
	authRepo := mongodb.NewAuthRepository(deps.MongoDB)

	paymentDedup := redisdb.NewPaymentDedup(deps.Redis)
	unlockCache := redisdb.NewUnlockCache(deps.Redis)

	// --- Services ---
	authService := service.NewAuthService(authRepo, deps.JWTSecret, 24*time.Hour)
	creditService := service.NewCreditService(ledgerRepo, paymentDedup, deps.Logger)
	unlockService := service.NewUnlockService(unlockRepo, ledgerRepo, conversationRepo, unlockCache, deps.Logger)
	balanceService := service.NewBalanceService(ledgerRepo, deps.Logger)
	disclosureService := service.NewDisclosureService(identityRepo, unlockService, deps.Logger)

	dispatcher := queue.NewDispatcher(deps.Workers, creditService, deps.Logger)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	unlockHandler := handler.NewUnlockHandler(unlockService)
	creditsHandler := handler.NewCreditsHandler(balanceService)
	identityHandler := handler.NewIdentityHandler(disclosureService)
	paymentHandler := handler.NewPaymentHandler(creditService, dispatcher)

	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Professional-facing routes ---
	pro := e.Group("/v1", authMiddleware, middleware.RBAC(domain.RoleProfessional))
	pro.POST("/unlocks", unlockHandler.Spend)
	pro.GET("/unlocks/:client_id", unlockHandler.Status)
	pro.GET("/credits/balance", creditsHandler.Balance)
	pro.GET("/credits/history", creditsHandler.History)

	// --- Identity views (any authenticated role) ---
	identities := e.Group("/v1/identities", authMiddleware,
		middleware.RBAC(domain.RoleProfessional, domain.RoleClient, domain.RoleAdmin))
	identities.GET("/:user_id", identityHandler.View)

	// --- Payment collaborator and back-office routes ---
	payments := e.Group("/v1", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	payments.POST("/payments/confirmed", paymentHandler.Confirmed)
	payments.POST("/payments/refunded", paymentHandler.Refunded)
	payments.POST("/payments/notifications", paymentHandler.Notify)
	payments.POST("/payments/notifications/batch", paymentHandler.NotifyBatch)
	payments.POST("/credits/adjust", paymentHandler.Adjust)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.MongoDB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return &Router{Echo: e, Dispatcher: dispatcher}
}
