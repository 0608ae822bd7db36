package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/furqan-uddin/SkillForge-Backend/internal/normalize"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	MaxInterests      = 10
	minInterestLength = 3
	maxInterestChars  = 50
)

var interestPattern = regexp.MustCompile(`^[\p{L}\p{N} &-]+$`)

type ProfileService struct {
	userRepo *repository.UserRepository
}

func NewProfileService(userRepo *repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

// ProfileUpdate carries the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name       *string
	ProfilePic *string
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.User, error) {
	fields := make(map[string]any)

	if upd.Name != nil {
		name := normalize.CleanLabel(*upd.Name)
		if len(name) < 2 || len(name) > 50 {
			return nil, apperr.Validation("name must be between 2 and 50 characters")
		}
		fields["name"] = name
	}
	if upd.ProfilePic != nil {
		pic := strings.TrimSpace(*upd.ProfilePic)
		if pic != "" {
			u, err := url.Parse(pic)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, apperr.Validation("profilePic must be an http(s) URL")
			}
		}
		fields["profile_pic"] = pic
	}

	if len(fields) > 0 {
		found, err := s.userRepo.UpdateFields(ctx, userID, fields)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		if !found {
			return nil, apperr.NotFound("User")
		}
		logger.Log.Info("Profile updated",
			zap.String("user_id", userID.String()),
			zap.Int("fields", len(fields)),
		)
	}

	return s.Get(ctx, userID)
}

func (s *ProfileService) GetInterests(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Interests == nil {
		return []string{}, nil
	}
	return user.Interests, nil
}

// CleanInterests trims and filters raw interest labels. Entries that are too
// short, too long or contain other than letters, digits, spaces, hyphens and
// ampersands are dropped; duplicates compare case-insensitively.
func CleanInterests(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool)
	for _, r := range raw {
		label := normalize.CleanLabel(r)
		n := len([]rune(label))
		if n < minInterestLength || n > maxInterestChars || !interestPattern.MatchString(label) {
			continue
		}
		key := normalize.InterestKey(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	return out
}

func (s *ProfileService) SaveInterests(ctx context.Context, userID uuid.UUID, raw []string) ([]string, error) {
	interests := CleanInterests(raw)
	if len(raw) > 0 && len(interests) == 0 {
		return nil, apperr.Validation("Please provide valid interests")
	}
	if len(interests) > MaxInterests {
		return nil, apperr.Validation("You can select at most %d interests", MaxInterests)
	}

	found, err := s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"interests": datatypes.JSONSlice[string](interests),
	})
	if err != nil {
		return nil, fmt.Errorf("save interests: %w", err)
	}
	if !found {
		return nil, apperr.NotFound("User")
	}

	logger.Log.Info("Interests saved",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(interests)),
	)
	return interests, nil
}

// AssignBadge appends label to the user's badges unless it is already there.
// It reports whether the label was added.
func (s *ProfileService) AssignBadge(ctx context.Context, userID uuid.UUID, label string) (bool, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.HasBadge(label) {
		return false, nil
	}

	badges := append(datatypes.JSONSlice[string]{}, user.Badges...)
	badges = append(badges, label)
	if _, err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"badges": badges}); err != nil {
		return false, fmt.Errorf("assign badge: %w", err)
	}

	logger.Log.Info("Badge assigned",
		zap.String("user_id", userID.String()),
		zap.String("badge", label),
	)
	return true, nil
}
