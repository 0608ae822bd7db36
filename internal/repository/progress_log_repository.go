package repository

import (
	"context"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressLogRepository struct {
	db *gorm.DB
}

func NewProgressLogRepository(db *gorm.DB) *ProgressLogRepository {
	return &ProgressLogRepository{db: db}
}

// Upsert writes the snapshot for (user, roadmap, day), overwriting the
// progress of an existing row. The unique index makes concurrent calls safe.
func (r *ProgressLogRepository) Upsert(ctx context.Context, log *models.ProgressLog) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "roadmap_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "updated_at"}),
	}).Create(log).Error
}

// ListForRoadmap returns the owner's snapshots for a roadmap, oldest first.
// The roadmap itself need not exist any more.
func (r *ProgressLogRepository) ListForRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) ([]*models.ProgressLog, error) {
	var logs []*models.ProgressLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		Order("day ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// DaysForUser returns the day of every snapshot the user owns.
func (r *ProgressLogRepository) DaysForUser(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	return r.days(ctx, r.db.Where("user_id = ?", userID))
}

func (r *ProgressLogRepository) DaysForRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) ([]time.Time, error) {
	return r.days(ctx, r.db.Where("user_id = ? AND roadmap_id = ?", userID, roadmapID))
}

func (r *ProgressLogRepository) days(ctx context.Context, scope *gorm.DB) ([]time.Time, error) {
	var logs []models.ProgressLog
	if err := scope.WithContext(ctx).Select("day").Order("day ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	days := make([]time.Time, 0, len(logs))
	for _, l := range logs {
		days = append(days, l.Day)
	}
	return days, nil
}
