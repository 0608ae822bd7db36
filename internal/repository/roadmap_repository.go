package repository

import (
	"context"
	"errors"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoadmapRepository struct {
	db *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{db: db}
}

// GetOwned loads a roadmap only if it belongs to userID.
func (r *RoadmapRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&roadmap).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &roadmap, nil
}

func (r *RoadmapRepository) GetByInterestKey(ctx context.Context, userID uuid.UUID, key string) (*models.Roadmap, error) {
	var roadmap models.Roadmap
	err := r.db.WithContext(ctx).Where("user_id = ? AND interest_key = ?", userID, key).First(&roadmap).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &roadmap, nil
}

func (r *RoadmapRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Roadmap{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *RoadmapRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Roadmap, error) {
	var roadmaps []*models.Roadmap
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Find(&roadmaps).Error
	if err != nil {
		return nil, err
	}
	return roadmaps, nil
}

// UpsertAll inserts each roadmap or, when (user_id, interest_key) already
// exists, replaces its label and weeks. All rows are written in one
// transaction or none are. The stored rows are returned in input order.
func (r *RoadmapRepository) UpsertAll(ctx context.Context, roadmaps []*models.Roadmap) ([]*models.Roadmap, error) {
	stored := make([]*models.Roadmap, 0, len(roadmaps))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, roadmap := range roadmaps {
			row, err := upsertRoadmap(tx, roadmap)
			if err != nil {
				return err
			}
			if row == nil {
				return errors.New("roadmap missing after upsert")
			}
			stored = append(stored, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func upsertRoadmap(db *gorm.DB, roadmap *models.Roadmap) (*models.Roadmap, error) {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "interest_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"interest", "weeks", "updated_at"}),
	}).Create(roadmap).Error
	if err != nil {
		return nil, err
	}

	var row models.Roadmap
	err = db.Where("user_id = ? AND interest_key = ?", roadmap.UserID, roadmap.InterestKey).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// UpdateWeeks persists step state for an existing roadmap.
func (r *RoadmapRepository) UpdateWeeks(ctx context.Context, roadmap *models.Roadmap) error {
	roadmap.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(roadmap).
		Select("weeks", "updated_at").
		Updates(map[string]any{"weeks": roadmap.Weeks, "updated_at": roadmap.UpdatedAt}).Error
}

// DeleteOwned removes the roadmap and reports whether it existed.
func (r *RoadmapRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Roadmap{})
	return res.RowsAffected > 0, res.Error
}
