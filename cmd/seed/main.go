package main

import (
	"context"
	"log"
	"os"

	"github.com/furqan-uddin/SkillForge-Backend/internal/config"
	"github.com/furqan-uddin/SkillForge-Backend/internal/database"
	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/internal/service"
	"github.com/furqan-uddin/SkillForge-Backend/internal/utils"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var sampleWeeks = map[string]any{
	"Week 1": []any{"Install Go and set up an editor", "Tour of Go basics", "Write a CLI that reads a file", "Learn go test and table tests"},
	"Week 2": []any{"Structs, interfaces and embedding", "Error wrapping with %w", "Build a small HTTP API with gin", "Add structured logging with zap"},
	"Week 3": []any{"Goroutines and channels", "context.Context and cancellation", "Use errgroup for parallel work", "Write a worker pool"},
	"Week 4": []any{"Persist data with gorm", "Write repository tests on SQLite", "Add Redis caching", "Containerize the service"},
}

func main() {
	cfg := config.Load()
	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	name := envOr("SEED_NAME", "Demo Learner")
	email := envOr("SEED_EMAIL", "demo@skillforge.dev")
	password := envOr("SEED_PASSWORD", "DemoPass123")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(database.DB)

	user, err := userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Fatal("Failed to look up seed user", zap.Error(err))
	}
	if user != nil {
		logger.Log.Info("Seed user already exists", zap.String("email", email))
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Fatal("Failed to hash password", zap.Error(err))
	}

	user = &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Interests:    datatypes.JSONSlice[string]{"Golang", "Cloud Computing"},
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		logger.Log.Fatal("Failed to create seed user", zap.Error(err))
	}

	roadmaps := service.NewRoadmapService(
		repository.NewRoadmapRepository(database.DB),
		repository.NewProgressLogRepository(database.DB),
		nil,
		cfg.RoadmapLimit,
	)
	view, err := roadmaps.CreateOrReplace(ctx, user.ID, "Golang", sampleWeeks)
	if err != nil {
		logger.Log.Fatal("Failed to create sample roadmap", zap.Error(err))
	}

	logger.Log.Info("Seed data created",
		zap.String("email", email),
		zap.String("roadmap_id", view.ID.String()),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
