package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressLog is one progress snapshot per (user, roadmap, day).
// Rows outlive their roadmap; they feed streaks and charts only.
type ProgressLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_day,priority:1;index" json:"-"`
	RoadmapID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_day,priority:2" json:"-"`
	Day       time.Time `gorm:"not null;uniqueIndex:idx_progress_day,priority:3" json:"date"`
	Progress  int       `gorm:"not null" json:"progress"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (p *ProgressLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
