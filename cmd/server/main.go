package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ctfplayground/backend/internal/api"
	"github.com/ctfplayground/backend/internal/backend"
	"github.com/ctfplayground/backend/internal/domain"
	"github.com/ctfplayground/backend/internal/feed"
	"github.com/ctfplayground/backend/internal/service"
	"github.com/ctfplayground/backend/pkg/config"
	"github.com/ctfplayground/backend/pkg/logging"
	"github.com/ctfplayground/backend/pkg/middleware"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "Path to configuration file")
	version    = "dev"
	buildTime  = "unknown"
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting CTF Backend Server",
		zap.String("version", version),
		zap.String("build_time", buildTime),
	)

	// Initialize storage backend
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := backend.New(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize storage backend", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	logger.Info("Storage backend initialized", zap.String("type", cfg.Storage.Type))

	// Ping storage to verify connection
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping storage", zap.Error(err))
	}

	// Live solve feed
	feedManager := feed.NewManager(logger)
	defer feedManager.Close()

	// Initialize services
	services := service.NewServices(store, cfg, feedManager, logger)

	// Rate limiters
	var submissionLimiter *middleware.SubmissionLimiter
	if cfg.RateLimit.Submission.Enabled {
		submissionLimiter = middleware.NewSubmissionLimiter(
			cfg.RateLimit.Submission.MaxAttempts,
			time.Duration(cfg.RateLimit.Submission.WindowSeconds)*time.Second,
		)
		defer submissionLimiter.Stop()
	}

	var loginLimiter *middleware.LoginLimiter
	if cfg.RateLimit.Login.Enabled {
		loginLimiter = middleware.NewLoginLimiter(&cfg.RateLimit.Login)
	}

	router := setupRouter(cfg, services, feedManager, submissionLimiter, loginLimiter, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("address", cfg.Server.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func setupRouter(
	cfg *config.Config,
	services *service.Services,
	feedManager *feed.Manager,
	submissionLimiter *middleware.SubmissionLimiter,
	loginLimiter *middleware.LoginLimiter,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	corsOrigins := cfg.Server.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers := api.NewHandlers(services, loginLimiter, logger)
	adminHandlers := api.NewAdminHandlers(services, logger)

	requireUser := middleware.RequireRole(services.Token, domain.RoleUser, logger)
	requireSudo := middleware.RequireRole(services.Token, domain.RoleSudo, logger)

	// Health/status and metrics
	router.GET("/status", handlers.Status)
	router.GET("/health", handlers.Status)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Live solve feed
	router.GET("/ws/feed", func(c *gin.Context) {
		feedManager.HandleConnection(c.Writer, c.Request)
	})

	// Team authentication
	auth := router.Group("/auth")
	{
		login := auth.Group("")
		if loginLimiter != nil {
			login.Use(middleware.LoginRateLimit(loginLimiter, logger))
		}
		login.POST("/login", handlers.LoginTeam)

		auth.GET("/get-team", requireUser, handlers.GetTeam)
	}

	// Challenge catalog and scoring
	challenges := router.Group("/challenges")
	challenges.Use(requireUser)
	{
		challenges.GET("", handlers.ListChallenges)
		challenges.GET("/solved", handlers.ListSolved)

		submit := challenges.Group("")
		if submissionLimiter != nil {
			submit.Use(middleware.SubmissionRateLimit(submissionLimiter, logger))
		}
		submit.POST("/submit", handlers.SubmitFlag)
	}

	// Leaderboard is public; a valid token adds the caller's own row
	router.GET("/leaderboard", middleware.OptionalAuth(services.Token, logger), handlers.Leaderboard)

	// Admin surface
	admin := router.Group("/admin")
	{
		adminLogin := admin.Group("")
		if loginLimiter != nil {
			adminLogin.Use(middleware.LoginRateLimit(loginLimiter, logger))
		}
		adminLogin.POST("/login", adminHandlers.Login)

		protected := admin.Group("")
		protected.Use(requireSudo)
		{
			protected.POST("/registerTeam", adminHandlers.RegisterTeam)
			protected.GET("/teams", adminHandlers.ListTeams)
			protected.POST("/challenges", adminHandlers.CreateChallenge)
			protected.GET("/challenges", adminHandlers.ListChallenges)
			protected.PUT("/challenges/:id", adminHandlers.UpdateChallenge)
			protected.DELETE("/challenges/:id", adminHandlers.DeleteChallenge)
			protected.PATCH("/challenges/toggleVisibility", adminHandlers.ToggleVisibility)
		}
	}

	return router
}
