package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string                      `gorm:"type:varchar(100);not null" json:"name"`
	Email           string                      `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash    string                      `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	ProfilePic      string                      `gorm:"type:text;not null;default:''" json:"profilePic"`
	Interests       datatypes.JSONSlice[string] `json:"interests"`
	Badges          datatypes.JSONSlice[string] `json:"badges"`
	ResumeScore     int                         `gorm:"not null;default:0" json:"resumeScore"`
	ResumeText      string                      `gorm:"type:text" json:"-"`
	RoadmapProgress int                         `gorm:"not null;default:0" json:"roadmapProgress"` // legacy cache, written only by roadmap generation
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// BeforeCreate assigns an ID so rows can be inserted on any dialect.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasBadge reports whether label is already in the badge list.
func (u *User) HasBadge(label string) bool {
	for _, b := range u.Badges {
		if b == label {
			return true
		}
	}
	return false
}
