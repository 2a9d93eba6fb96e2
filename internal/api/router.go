package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sweetshop/inventory-system/internal/api/handler"
	"github.com/sweetshop/inventory-system/internal/api/middleware"
	"github.com/sweetshop/inventory-system/internal/core/domain"
	"github.com/sweetshop/inventory-system/internal/core/ports"
)

// Dependencies carries the constructed services the router wires into handlers.
type Dependencies struct {
	AuthService     ports.AuthService
	SweetService    ports.SweetService
	MovementService ports.MovementService
	TokenVerifier   ports.TokenVerifier
	UserRepository  ports.UserRepository
	Mongo           *mongo.Database
	Redis           *redis.Client
	Logger          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("sweetshop"))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	sweetHandler := handler.NewSweetHandler(deps.SweetService, deps.MovementService)
	auth := middleware.Auth(deps.TokenVerifier, deps.UserRepository)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, auth)

	// --- Catalog & inventory routes ---
	items := e.Group("/items", auth)
	items.GET("", sweetHandler.List)
	items.GET("/search", sweetHandler.Search)
	items.GET("/:id", sweetHandler.Get)
	items.POST("/:id/purchase", sweetHandler.Purchase)

	items.POST("", sweetHandler.Create, adminOnly)
	items.PUT("/:id", sweetHandler.Update, adminOnly)
	items.DELETE("/:id", sweetHandler.Delete, adminOnly)
	items.POST("/:id/restock", sweetHandler.Restock, adminOnly)
	items.GET("/:id/movements", sweetHandler.Movements, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
