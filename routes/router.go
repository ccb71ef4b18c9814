package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"civictrack-be/controllers"
	"civictrack-be/metrics"
	"civictrack-be/middlewares"
	"civictrack-be/validation"
)

// Options carries everything the router wires into handlers.
type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Authenticator  middlewares.Authenticator
	Redis          *redis.Client
	IssueQueue     string
	IssueLimit     int
	Health         func(ctx context.Context) error

	Auth   *controllers.AuthController
	Issues *controllers.IssueController
	Admin  *controllers.AdminController
	Users  *controllers.UserController
}

func SetupRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	validation.Install()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID(opts.Logger))
	r.Use(middlewares.GinLogger(opts.Logger))
	r.Use(opts.Metrics.Middleware())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", healthHandler(opts.Health))
	r.GET("/metrics", opts.Metrics.Handler())

	AuthRoutes(r, opts)
	IssueRoutes(r, opts)
	AdminRoutes(r, opts)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
	}
}
