package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Step is the smallest completable unit of a roadmap week.
type Step struct {
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

type Week struct {
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// Roadmap is a user's saved learning plan for one interest.
// InterestKey is the normalized form of Interest and is unique per user.
type Roadmap struct {
	ID          uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_roadmap_user_interest,priority:1;index" json:"userId"`
	Interest    string                    `gorm:"type:varchar(100);not null" json:"interest"`
	InterestKey string                    `gorm:"type:varchar(100);not null;uniqueIndex:idx_roadmap_user_interest,priority:2" json:"-"`
	Weeks       datatypes.JSONSlice[Week] `gorm:"not null" json:"weeks"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `gorm:"index" json:"updatedAt"`
}

func (r *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

