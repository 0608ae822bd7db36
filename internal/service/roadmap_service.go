package service

import (
	"context"
	"fmt"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/broker"
	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/furqan-uddin/SkillForge-Backend/internal/normalize"
	"github.com/furqan-uddin/SkillForge-Backend/internal/progress"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRoadmapLimit caps how many interests a user can keep roadmaps for.
const DefaultRoadmapLimit = 10

const maxInterestLength = 100

const (
	reasonSaved   = "saved"
	reasonToggled = "step_toggled"
)

// RoadmapView is a roadmap together with its derived completion percentage.
type RoadmapView struct {
	*models.Roadmap
	ProgressPercent int `json:"progressPercent"`
}

func newRoadmapView(r *models.Roadmap) *RoadmapView {
	return &RoadmapView{Roadmap: r, ProgressPercent: progress.Percent(r.Weeks)}
}

type RoadmapService struct {
	roadmapRepo *repository.RoadmapRepository
	logRepo     *repository.ProgressLogRepository
	broker      broker.ProgressBroker
	limit       int
	now         func() time.Time
}

func NewRoadmapService(roadmapRepo *repository.RoadmapRepository, logRepo *repository.ProgressLogRepository, b broker.ProgressBroker, limit int) *RoadmapService {
	if limit <= 0 {
		limit = DefaultRoadmapLimit
	}
	if b == nil {
		b = broker.NopBroker{}
	}
	return &RoadmapService{
		roadmapRepo: roadmapRepo,
		logRepo:     logRepo,
		broker:      b,
		limit:       limit,
		now:         time.Now,
	}
}

// SetClock replaces the time source used for completion timestamps and
// snapshot days.
func (s *RoadmapService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateOrReplace stores weeks under the owner's interest. An existing roadmap
// for the same interest key is overwritten and loses its completion state; a
// new interest counts against the per-user limit.
func (s *RoadmapService) CreateOrReplace(ctx context.Context, ownerID uuid.UUID, interest string, weeks any) (*RoadmapView, error) {
	views, err := s.SaveAll(ctx, ownerID, []RoadmapInput{{Interest: interest, Weeks: weeks}})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// RoadmapInput is one interest and its weeks in any accepted shape.
type RoadmapInput struct {
	Interest string
	Weeks    any
}

// SaveAll validates every input and checks the limit for the new interests
// before writing anything, then upserts all of them in one transaction. A
// single invalid input means nothing is saved.
func (s *RoadmapService) SaveAll(ctx context.Context, ownerID uuid.UUID, inputs []RoadmapInput) ([]*RoadmapView, error) {
	start := time.Now()

	if len(inputs) == 0 {
		return nil, apperr.Validation("no roadmaps to save")
	}

	roadmaps := make([]*models.Roadmap, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		roadmap, err := s.prepare(ownerID, in)
		if err != nil {
			return nil, err
		}
		if seen[roadmap.InterestKey] {
			continue
		}
		seen[roadmap.InterestKey] = true
		roadmaps = append(roadmaps, roadmap)
	}

	newKeys := 0
	for _, r := range roadmaps {
		existing, err := s.roadmapRepo.GetByInterestKey(ctx, ownerID, r.InterestKey)
		if err != nil {
			return nil, fmt.Errorf("lookup roadmap: %w", err)
		}
		if existing == nil {
			newKeys++
		}
	}
	if newKeys > 0 {
		count, err := s.roadmapRepo.CountByUser(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("count roadmaps: %w", err)
		}
		if count+int64(newKeys) > int64(s.limit) {
			logger.Log.Warn("Roadmap limit reached",
				zap.String("user_id", ownerID.String()),
				zap.Int64("count", count),
				zap.Int("new", newKeys),
			)
			return nil, apperr.New(apperr.KindQuotaExceeded,
				fmt.Sprintf("You can only keep %d roadmaps. Delete one to add a new interest.", s.limit), nil)
		}
	}

	stored, err := s.roadmapRepo.UpsertAll(ctx, roadmaps)
	if err != nil {
		return nil, fmt.Errorf("save roadmaps: %w", err)
	}

	views := make([]*RoadmapView, 0, len(stored))
	for _, r := range stored {
		view := newRoadmapView(r)
		s.snapshot(ctx, view, reasonSaved)
		views = append(views, view)
	}

	logger.Log.Info("Roadmaps saved",
		zap.String("user_id", ownerID.String()),
		zap.Int("count", len(views)),
		zap.Int("new", newKeys),
		zap.Duration("duration", time.Since(start)),
	)

	return views, nil
}

// prepare cleans the label and normalizes and validates the weeks.
func (s *RoadmapService) prepare(ownerID uuid.UUID, in RoadmapInput) (*models.Roadmap, error) {
	label := normalize.CleanLabel(in.Interest)
	if label == "" {
		return nil, apperr.Validation("interest is required")
	}
	if len([]rune(label)) > maxInterestLength {
		return nil, apperr.Validation("interest must be at most %d characters", maxInterestLength)
	}

	weeks := normalize.NormalizeWeeks(in.Weeks)
	if err := normalize.ValidateWeeks(weeks); err != nil {
		logger.Log.Warn("Roadmap weeks rejected",
			zap.String("user_id", ownerID.String()),
			zap.String("interest", label),
			zap.Error(err),
		)
		return nil, apperr.New(apperr.KindValidation, err.Error(), err)
	}

	return &models.Roadmap{
		UserID:      ownerID,
		Interest:    label,
		InterestKey: normalize.InterestKey(label),
		Weeks:       weeks,
	}, nil
}

// ToggleStep flips a step's completion, or sets it to *completed when given.
func (s *RoadmapService) ToggleStep(ctx context.Context, ownerID uuid.UUID, roadmapID string, weekIndex, stepIndex int, completed *bool) (*RoadmapView, error) {
	roadmap, err := s.loadOwned(ctx, ownerID, roadmapID)
	if err != nil {
		return nil, err
	}

	if weekIndex < 0 || weekIndex >= len(roadmap.Weeks) {
		return nil, apperr.New(apperr.KindInvalidIndex, "Invalid week index", nil)
	}
	steps := roadmap.Weeks[weekIndex].Steps
	if stepIndex < 0 || stepIndex >= len(steps) {
		return nil, apperr.New(apperr.KindInvalidIndex, "Invalid step index", nil)
	}

	step := &steps[stepIndex]
	target := !step.Completed
	if completed != nil {
		target = *completed
	}
	switch {
	case target && !step.Completed:
		at := s.now().UTC()
		step.CompletedAt = &at
	case !target:
		step.CompletedAt = nil
	}
	step.Completed = target

	if err := s.roadmapRepo.UpdateWeeks(ctx, roadmap); err != nil {
		return nil, fmt.Errorf("update roadmap: %w", err)
	}

	view := newRoadmapView(roadmap)
	s.snapshot(ctx, view, reasonToggled)

	logger.Log.Debug("Roadmap step toggled",
		zap.String("roadmap_id", roadmap.ID.String()),
		zap.Int("week", weekIndex),
		zap.Int("step", stepIndex),
		zap.Bool("completed", target),
		zap.Int("progress", view.ProgressPercent),
	)

	return view, nil
}

func (s *RoadmapService) List(ctx context.Context, ownerID uuid.UUID) ([]*RoadmapView, error) {
	roadmaps, err := s.roadmapRepo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	views := make([]*RoadmapView, 0, len(roadmaps))
	for _, r := range roadmaps {
		views = append(views, newRoadmapView(r))
	}
	return views, nil
}

func (s *RoadmapService) Get(ctx context.Context, ownerID uuid.UUID, roadmapID string) (*RoadmapView, error) {
	roadmap, err := s.loadOwned(ctx, ownerID, roadmapID)
	if err != nil {
		return nil, err
	}
	return newRoadmapView(roadmap), nil
}

// Delete removes the roadmap. Its progress snapshots are kept for history.
func (s *RoadmapService) Delete(ctx context.Context, ownerID uuid.UUID, roadmapID string) error {
	id, err := uuid.Parse(roadmapID)
	if err != nil {
		return apperr.NotFound("Roadmap")
	}
	deleted, err := s.roadmapRepo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete roadmap: %w", err)
	}
	if !deleted {
		return apperr.NotFound("Roadmap")
	}

	logger.Log.Info("Roadmap deleted",
		zap.String("user_id", ownerID.String()),
		zap.String("roadmap_id", id.String()),
	)
	return nil
}

// Logs returns the owner's daily snapshots for a roadmap, oldest first. They
// remain readable after the roadmap is deleted.
func (s *RoadmapService) Logs(ctx context.Context, ownerID uuid.UUID, roadmapID string) ([]*models.ProgressLog, error) {
	id, err := uuid.Parse(roadmapID)
	if err != nil {
		return nil, apperr.NotFound("Roadmap")
	}
	logs, err := s.logRepo.ListForRoadmap(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("list progress logs: %w", err)
	}
	return logs, nil
}

// Streak is computed over the owner's snapshots across all roadmaps.
func (s *RoadmapService) Streak(ctx context.Context, ownerID uuid.UUID) (progress.Streak, error) {
	days, err := s.logRepo.DaysForUser(ctx, ownerID)
	if err != nil {
		return progress.Streak{}, fmt.Errorf("load activity days: %w", err)
	}
	return progress.ComputeStreak(days), nil
}

func (s *RoadmapService) RoadmapStreak(ctx context.Context, ownerID uuid.UUID, roadmapID string) (progress.Streak, error) {
	id, err := uuid.Parse(roadmapID)
	if err != nil {
		return progress.Streak{}, apperr.NotFound("Roadmap")
	}
	days, err := s.logRepo.DaysForRoadmap(ctx, ownerID, id)
	if err != nil {
		return progress.Streak{}, fmt.Errorf("load activity days: %w", err)
	}
	return progress.ComputeStreak(days), nil
}

// loadOwned is the single entry point for reading a roadmap by id. Malformed
// ids, unknown ids and other users' ids are indistinguishable.
func (s *RoadmapService) loadOwned(ctx context.Context, ownerID uuid.UUID, roadmapID string) (*models.Roadmap, error) {
	id, err := uuid.Parse(roadmapID)
	if err != nil {
		return nil, apperr.NotFound("Roadmap")
	}
	roadmap, err := s.roadmapRepo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	if roadmap == nil {
		return nil, apperr.NotFound("Roadmap")
	}
	return roadmap, nil
}

// snapshot records today's percentage and notifies live subscribers. The
// roadmap write has already happened, so failures here are logged only.
func (s *RoadmapService) snapshot(ctx context.Context, view *RoadmapView, reason string) {
	day := progress.Day(s.now())

	err := s.logRepo.Upsert(ctx, &models.ProgressLog{
		UserID:    view.UserID,
		RoadmapID: view.ID,
		Day:       day,
		Progress:  view.ProgressPercent,
	})
	if err != nil {
		logger.Log.Error("Failed to record progress snapshot",
			zap.String("roadmap_id", view.ID.String()),
			zap.Error(err),
		)
		return
	}

	event := broker.ProgressEvent{
		UserID:    view.UserID,
		RoadmapID: view.ID,
		Interest:  view.Interest,
		Progress:  view.ProgressPercent,
		Day:       day,
		Reason:    reason,
	}
	if err := s.broker.Publish(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish progress event",
			zap.String("roadmap_id", view.ID.String()),
			zap.Error(err),
		)
	}
}
