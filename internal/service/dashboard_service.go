package service

import (
	"context"
	"fmt"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/furqan-uddin/SkillForge-Backend/internal/progress"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Dashboard struct {
	ResumeScore int `json:"resumeScore"`
	// RoadmapProgress is the mean completion over the user's roadmaps.
	RoadmapProgress       int      `json:"roadmapProgress"`
	LegacyRoadmapProgress int      `json:"legacyRoadmapProgress"`
	RoadmapCount          int      `json:"roadmapCount"`
	Interests             []string `json:"interests"`
	Badges                []string `json:"badges"`
	progress.Streak
}

type DashboardService struct {
	userRepo    *repository.UserRepository
	roadmapRepo *repository.RoadmapRepository
	logRepo     *repository.ProgressLogRepository
}

func NewDashboardService(userRepo *repository.UserRepository, roadmapRepo *repository.RoadmapRepository, logRepo *repository.ProgressLogRepository) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		roadmapRepo: roadmapRepo,
		logRepo:     logRepo,
	}
}

// Get loads the user, their roadmaps and their activity days in parallel.
func (s *DashboardService) Get(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	start := time.Now()

	var (
		user     *models.User
		roadmaps []*models.Roadmap
		days     []time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetUserByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		roadmaps, err = s.roadmapRepo.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		days, err = s.logRepo.DaysForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}

	percents := make([]int, 0, len(roadmaps))
	for _, r := range roadmaps {
		percents = append(percents, progress.Percent(r.Weeks))
	}

	d := &Dashboard{
		ResumeScore:           user.ResumeScore,
		RoadmapProgress:       progress.Average(percents),
		LegacyRoadmapProgress: user.RoadmapProgress,
		RoadmapCount:          len(roadmaps),
		Interests:             nonNil(user.Interests),
		Badges:                nonNil(user.Badges),
		Streak:                progress.ComputeStreak(days),
	}

	logger.Log.Debug("Dashboard loaded",
		zap.String("user_id", userID.String()),
		zap.Int("roadmaps", len(roadmaps)),
		zap.Duration("duration", time.Since(start)),
	)
	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
