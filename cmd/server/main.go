package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/ai"
	"github.com/furqan-uddin/SkillForge-Backend/internal/broker"
	"github.com/furqan-uddin/SkillForge-Backend/internal/config"
	"github.com/furqan-uddin/SkillForge-Backend/internal/database"
	"github.com/furqan-uddin/SkillForge-Backend/internal/handler"
	"github.com/furqan-uddin/SkillForge-Backend/internal/journal"
	"github.com/furqan-uddin/SkillForge-Backend/internal/middleware"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/internal/service"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.Connect(cfg)
	database.Migrate()

	modelJournal, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Log.Fatal("Failed to open model output journal", zap.Error(err))
	}
	defer modelJournal.Close()

	// Redis is optional: without it progress events are dropped and AI
	// routes are not rate limited.
	var (
		progressBroker broker.ProgressBroker = broker.NopBroker{}
		aiLimiter      gin.HandlerFunc
	)
	if cfg.RedisURL != "" {
		redisClient, err := broker.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Warn("Redis unavailable, continuing without it", zap.Error(err))
		} else {
			redisBroker := broker.NewRedisProgressBroker(redisClient)
			defer redisBroker.Close()
			progressBroker = redisBroker

			aiLimiter = middleware.NewRateLimiter(redisClient, "ratelimit:ai", middleware.RateLimiterConfig{
				MaxRequests: cfg.RateLimitMaxRequests,
				Window:      cfg.RateLimitWindow,
				BlockTime:   cfg.RateLimitBlockTime,
			}).Middleware()
		}
	}

	completer, err := ai.New(ctx, cfg)
	if errors.Is(err, ai.ErrNotConfigured) {
		logger.Log.Warn("AI provider has no credentials, AI routes will answer 502",
			zap.String("provider", cfg.AIProvider),
		)
		completer = ai.Unavailable{}
	} else if err != nil {
		logger.Log.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(database.DB)
	roadmapRepo := repository.NewRoadmapRepository(database.DB)
	logRepo := repository.NewProgressLogRepository(database.DB)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	profileService := service.NewProfileService(userRepo)
	roadmapService := service.NewRoadmapService(roadmapRepo, logRepo, progressBroker, cfg.RoadmapLimit)
	dashboardService := service.NewDashboardService(userRepo, roadmapRepo, logRepo)
	aiService := service.NewAIService(completer, userRepo, profileService, roadmapService, modelJournal)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(),
		middleware.ErrorHandler(cfg.IsProduction()),
		middleware.SecurityHeadersMiddleware(),
		middleware.HSTSMiddleware(cfg.IsProduction()),
		cors.New(corsConfig),
	)

	handler.RegisterRoutes(router, handler.Routes{
		JWTSecret: cfg.JWTSecret,
		Auth:      handler.NewAuthHandler(authService),
		Roadmaps:  handler.NewRoadmapHandler(roadmapService),
		AI:        handler.NewAIHandler(aiService, cfg.MaxUploadBytes),
		Profile:   handler.NewProfileHandler(profileService, dashboardService),
		Stream:    handler.NewProgressStreamHandler(progressBroker, cfg.CORSOrigins),
		AILimiter: aiLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
			zap.String("ai_provider", cfg.AIProvider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
