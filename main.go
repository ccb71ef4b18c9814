package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"civictrack-be/config"
	"civictrack-be/controllers"
	"civictrack-be/events"
	"civictrack-be/metrics"
	"civictrack-be/repositories"
	"civictrack-be/routes"
	"civictrack-be/services"
	"civictrack-be/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(config.DetermineConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	client, err := config.ConnectDB(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer config.DisconnectDB(client, logger)
	db := client.Database(cfg.Mongo.Database)

	issueRepo := repositories.NewIssueRepository(db)
	logRepo := repositories.NewStatusLogRepository(db)
	flagRepo := repositories.NewFlagRepository(db)
	userRepo := repositories.NewUserRepository(db)
	if err := ensureIndexes(ctx, issueRepo, logRepo, flagRepo, userRepo); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	redisClient, err := config.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	shutdownTracer, err := config.InitTracer(ctx, cfg.Tracing, cfg.Server.RunMode)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	appMetrics := metrics.New()
	deps := services.Deps{
		Issues:  issueRepo,
		Logs:    logRepo,
		Flags:   flagRepo,
		Users:   userRepo,
		Tx:      repositories.NewTransactor(client, cfg.Mongo.Transactions),
		Metrics: appMetrics,
		Logger:  logger,
	}

	if cfg.Cloudinary.URL != "" {
		photos, err := storage.NewPhotoStore(cfg.Cloudinary.URL, cfg.Cloudinary.Folder)
		if err != nil {
			logger.Fatal("Failed to configure Cloudinary", zap.Error(err))
		}
		deps.Photos = photos
	} else {
		logger.Warn("CLOUDINARY_URL not set, photo uploads disabled")
	}

	if cfg.RabbitMQ.URI != "" {
		publisher, err := events.NewPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
		deps.Events = publisher
	}

	authService := services.NewAuthService(deps, services.AuthSettings{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	})
	issueService := services.NewIssueService(deps, services.GeoSettings{
		DefaultRadiusKm: cfg.Geo.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Geo.MaxRadiusKm,
	})
	moderationService := services.NewModerationService(deps, services.ModerationSettings{
		StrictTransitions: cfg.Moderation.StrictTransitions,
		FlagHideThreshold: cfg.Moderation.FlagHideThreshold,
	})
	adminService := services.NewAdminService(deps)

	router := routes.SetupRouter(routes.Options{
		Logger:         logger,
		Metrics:        appMetrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Authenticator:  authService,
		Redis:          redisClient,
		IssueQueue:     cfg.Redis.IssueQueue,
		IssueLimit:     cfg.Redis.IssueDailyLimit,
		Health:         pingMongo(client),
		Auth:           controllers.NewAuthController(authService),
		Issues:         controllers.NewIssueController(issueService, moderationService),
		Admin:          controllers.NewAdminController(adminService, issueService, moderationService),
		Users:          controllers.NewUserController(adminService),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      otelhttp.NewHandler(router, cfg.Tracing.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, repos ...indexer) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, repo := range repos {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}

func pingMongo(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
