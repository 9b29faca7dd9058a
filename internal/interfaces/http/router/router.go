package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expenseally/backend/internal/infrastructure/auth"
	"github.com/expenseally/backend/internal/infrastructure/config"
	"github.com/expenseally/backend/internal/infrastructure/logger"
	"github.com/expenseally/backend/internal/interfaces/http/handler"
	"github.com/expenseally/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on an authenticated group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	Auth     *handler.AuthHandler
	Company  *handler.CompanyHandler
	Client   *handler.ClientHandler
	Invoice  *handler.InvoiceHandler
	Expense  *handler.ExpenseHandler
	Category *handler.CategoryHandler
	Report   *handler.ReportHandler
	System   *handler.SystemHandler
}

// Config carries everything needed to assemble the HTTP engine
type Config struct {
	App            *config.Config
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	Handlers       Handlers
}

// New assembles the gin engine: middleware chain, public routes and the
// authenticated /api/v1 surface.
func New(cfg Config) (*gin.Engine, error) {
	if cfg.App.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.App.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig(cfg.App)),
		middleware.BodyLimit(cfg.App.HTTP.MaxBodySize),
	)

	api := engine.Group("/api/v1")

	public := api.Group("")
	cfg.Handlers.System.RegisterPublicRoutes(public)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(middleware.JWTConfig{
		JWTService:     cfg.JWTService,
		TokenBlacklist: cfg.TokenBlacklist,
		Logger:         cfg.Logger,
	}))

	cfg.Handlers.Auth.RegisterRoutes(public, authed)

	for _, registrar := range []RouteRegistrar{
		cfg.Handlers.Company,
		cfg.Handlers.Client,
		cfg.Handlers.Invoice,
		cfg.Handlers.Expense,
		cfg.Handlers.Category,
		cfg.Handlers.Report,
		cfg.Handlers.System,
	} {
		registrar.RegisterRoutes(authed)
	}

	return engine, nil
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return cors
}
