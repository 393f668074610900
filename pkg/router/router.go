package router

import (
	"time"

	"ai-companion-demo/backend/internal/api"
	"ai-companion-demo/backend/internal/service"
	"ai-companion-demo/backend/pkg/config"
	"ai-companion-demo/backend/pkg/errors"
	"ai-companion-demo/backend/pkg/jwt"
	"ai-companion-demo/backend/pkg/logger"
	"ai-companion-demo/backend/pkg/metrics"
	"ai-companion-demo/backend/pkg/middleware"

	"github.com/gin-gonic/gin"

	"golang.org/x/time/rate"
)

// Deps carries the wired services the router needs
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	JWTService *jwt.Service
	Users      *service.UserService
	Messages   *service.MessageService
	Metrics    *metrics.Metrics
}

// Router is the main router for the application
type Router struct {
	Engine *gin.Engine
	deps   Deps
}

// New creates a new router with the middleware chain applied
func New(deps Deps) *Router {
	logger.SetGlobal(deps.Logger)

	if deps.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Logger middleware first so every request gets a scoped logger
	engine.Use(logger.Middleware(deps.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(deps.Metrics.Middleware())

	rateLimiter := middleware.NewRateLimiter(deps.Logger, middleware.RateLimiterOptions{
		Limit:          rate.Limit(deps.Config.Security.RateLimit),
		Burst:          deps.Config.Security.RateLimitBurst,
		ExpiryDuration: time.Hour,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
	engine.Use(rateLimiter.Middleware())

	return &Router{Engine: engine, deps: deps}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware())

	jwtAuth := middleware.JWTAuthMiddleware(r.deps.JWTService, r.deps.Logger)

	authHandler := api.NewAuthHandler(r.deps.Users)
	messageHandler := api.NewMessageHandler(r.deps.Messages, r.deps.Users, r.deps.Metrics)
	settingsHandler := api.NewSettingsHandler(r.deps.Users)

	r.setupHealthRoutes()
	r.Engine.GET("/metrics", gin.WrapH(r.deps.Metrics.Handler()))

	authRoutes := r.Engine.Group("/api/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", jwtAuth, authHandler.Me)
	}

	protected := r.Engine.Group("/api")
	protected.Use(jwtAuth)
	{
		protected.GET("/messages", messageHandler.List)
		protected.POST("/messages", messageHandler.Send)
		protected.POST("/generate-message", messageHandler.Generate)
		protected.PATCH("/settings", settingsHandler.Update)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, Authorization, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
