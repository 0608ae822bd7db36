package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/ai"
	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/journal"
	"github.com/furqan-uddin/SkillForge-Backend/internal/modeljson"
	"github.com/furqan-uddin/SkillForge-Backend/internal/normalize"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	BadgeResumeReady  = "Resume Ready"
	BadgeResumeMaster = "Resume Master"

	// GeneratedRoadmapProgress is written to the legacy progress field
	// whenever roadmaps are generated.
	GeneratedRoadmapProgress = 10

	maxPromptText = 15000
)

const (
	FeatureRoadmap   = "generate-roadmap"
	FeatureResume    = "analyze-resume"
	FeatureJDMatch   = "match-jd"
	FeatureInterview = "interview"
	FeatureSkillGap  = "skill-gap"
	FeatureInsights  = "insights"
)

// resumeBadges are independent thresholds; one review can earn several.
var resumeBadges = []struct {
	minScore int
	label    string
}{
	{80, BadgeResumeReady},
	{95, BadgeResumeMaster},
}

var ErrNoResumeText = apperr.Validation("No resume text found!")

type AIService struct {
	completer ai.Completer
	userRepo  *repository.UserRepository
	profile   *ProfileService
	roadmaps  *RoadmapService
	journal   journal.Recorder
}

func NewAIService(completer ai.Completer, userRepo *repository.UserRepository, profile *ProfileService, roadmaps *RoadmapService, rec journal.Recorder) *AIService {
	if rec == nil {
		rec = journal.Discard{}
	}
	return &AIService{
		completer: completer,
		userRepo:  userRepo,
		profile:   profile,
		roadmaps:  roadmaps,
		journal:   rec,
	}
}

// GeneratedRoadmapsResult is the generator output plus whatever was saved.
type GeneratedRoadmapsResult struct {
	normalize.GeneratedRoadmaps
	Progress int            `json:"progress"`
	Saved    []*RoadmapView `json:"saved,omitempty"`
}

// GenerateRoadmaps asks the model for a plan per interest. When interests is
// empty the user's saved interests are used. With save set every plan is
// stored together through SaveAll, or none is.
func (s *AIService) GenerateRoadmaps(ctx context.Context, userID uuid.UUID, interests []string, save bool) (*GeneratedRoadmapsResult, error) {
	start := time.Now()

	cleaned, err := s.topics(ctx, userID, interests)
	if err != nil {
		return nil, err
	}
	if len(cleaned) > MaxInterests {
		return nil, apperr.Validation("You can select at most %d interests", MaxInterests)
	}

	parsed, err := s.structured(ctx, FeatureRoadmap, userID, ai.RoadmapPrompt(cleaned))
	if err != nil {
		return nil, err
	}

	generated := normalize.NormalizeGeneratedRoadmaps(parsed.Value)
	if len(generated.Roadmaps) == 0 {
		return nil, s.emptyResult(FeatureRoadmap, userID, "roadmaps")
	}

	result := &GeneratedRoadmapsResult{GeneratedRoadmaps: generated, Progress: GeneratedRoadmapProgress}

	if save {
		inputs := make([]RoadmapInput, 0, len(generated.Roadmaps))
		for _, r := range generated.Roadmaps {
			inputs = append(inputs, RoadmapInput{Interest: r.Interest, Weeks: r.Weeks})
		}
		views, err := s.roadmaps.SaveAll(ctx, userID, inputs)
		if err != nil {
			if ae, ok := apperr.As(err); ok && ae.Kind == apperr.KindValidation {
				return nil, apperr.New(apperr.KindMalformedModel,
					"Generated roadmaps are incomplete: "+ae.Message, err)
			}
			return nil, err
		}
		result.Saved = views
	}

	if _, err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"roadmap_progress": GeneratedRoadmapProgress}); err != nil {
		return nil, fmt.Errorf("update roadmap progress: %w", err)
	}

	logger.Log.Info("Roadmaps generated",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(generated.Roadmaps)),
		zap.Bool("saved", save),
		zap.String("strategy", parsed.Strategy.String()),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// ResumeResult is a resume review with the user's badges after scoring.
type ResumeResult struct {
	normalize.ResumeReview
	Badges   []string `json:"badges"`
	Fallback bool     `json:"-"`
}

// AnalyzeResume scores the resume text. Unreadable model output never fails
// the request; the review falls back to a heuristic over the raw text. The
// score and text are saved and score badges are awarded.
func (s *AIService) AnalyzeResume(ctx context.Context, userID uuid.UUID, text string) (*ResumeResult, error) {
	start := time.Now()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoResumeText
	}

	raw, err := s.complete(ctx, FeatureResume, userID, ai.ResumePrompt(truncatePrompt(text)))
	if err != nil {
		return nil, err
	}

	var (
		review normalize.ResumeReview
		ok     bool
	)
	if parsed, err := modeljson.Extract(raw); err == nil {
		review, ok = normalize.NormalizeResumeReview(parsed.Value)
	}
	fallback := !ok
	if fallback {
		s.record(FeatureResume, userID, raw, "fallback")
		review = normalize.ResumeFallback(raw)
	}

	found, err := s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"resume_score": review.Score,
		"resume_text":  text,
	})
	if err != nil {
		return nil, fmt.Errorf("save resume score: %w", err)
	}
	if !found {
		return nil, apperr.NotFound("User")
	}

	for _, b := range resumeBadges {
		if review.Score < b.minScore {
			continue
		}
		if _, err := s.profile.AssignBadge(ctx, userID, b.label); err != nil {
			return nil, err
		}
	}

	user, err := s.profile.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges := []string(user.Badges)
	if badges == nil {
		badges = []string{}
	}

	logger.Log.Info("Resume analyzed",
		zap.String("user_id", userID.String()),
		zap.Int("score", review.Score),
		zap.Bool("fallback", fallback),
		zap.Duration("duration", time.Since(start)),
	)

	return &ResumeResult{ResumeReview: review, Badges: badges, Fallback: fallback}, nil
}

// MatchJD compares a resume with a job description. Without resumeText the
// last analyzed resume is used.
func (s *AIService) MatchJD(ctx context.Context, userID uuid.UUID, resumeText, jobDescription string) (*normalize.JDMatch, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return nil, apperr.Validation("jobDescription is required")
	}

	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		user, err := s.profile.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		resumeText = strings.TrimSpace(user.ResumeText)
	}
	if resumeText == "" {
		return nil, ErrNoResumeText
	}

	parsed, err := s.structured(ctx, FeatureJDMatch, userID,
		ai.JDMatchPrompt(truncatePrompt(resumeText), truncatePrompt(jobDescription)))
	if err != nil {
		return nil, err
	}

	out := normalize.NormalizeJDMatch(parsed.Value)
	return &out, nil
}

func (s *AIService) Interview(ctx context.Context, userID uuid.UUID, role string) (*normalize.Interview, error) {
	role = normalize.CleanLabel(role)
	if role == "" {
		return nil, apperr.Validation("role is required")
	}

	parsed, err := s.structured(ctx, FeatureInterview, userID, ai.InterviewPrompt(role))
	if err != nil {
		return nil, err
	}

	out := normalize.NormalizeInterview(parsed.Value)
	if len(out.Questions) == 0 {
		return nil, s.emptyResult(FeatureInterview, userID, "questions")
	}
	return &out, nil
}

func (s *AIService) SkillGap(ctx context.Context, userID uuid.UUID, currentSkills []string, targetRole string) (*normalize.SkillGap, error) {
	targetRole = normalize.CleanLabel(targetRole)
	if targetRole == "" {
		return nil, apperr.Validation("targetRole is required")
	}

	skills := make([]string, 0, len(currentSkills))
	for _, sk := range currentSkills {
		if sk = normalize.CleanLabel(sk); sk != "" {
			skills = append(skills, sk)
		}
	}

	parsed, err := s.structured(ctx, FeatureSkillGap, userID, ai.SkillGapPrompt(skills, targetRole))
	if err != nil {
		return nil, err
	}

	out := normalize.NormalizeSkillGap(parsed.Value)
	return &out, nil
}

// Insights falls back to the user's saved interests when none are given.
func (s *AIService) Insights(ctx context.Context, userID uuid.UUID, interests []string) (*normalize.Insights, error) {
	cleaned, err := s.topics(ctx, userID, interests)
	if err != nil {
		return nil, err
	}

	parsed, err := s.structured(ctx, FeatureInsights, userID, ai.InsightsPrompt(cleaned))
	if err != nil {
		return nil, err
	}

	out := normalize.NormalizeInsights(parsed.Value)
	if len(out.Insights) == 0 {
		return nil, s.emptyResult(FeatureInsights, userID, "insights")
	}
	return &out, nil
}

// topics returns the cleaned, de-duplicated labels to prompt with, falling
// back to the user's saved interests.
func (s *AIService) topics(ctx context.Context, userID uuid.UUID, requested []string) ([]string, error) {
	labels := uniqueLabels(requested)
	if len(labels) == 0 {
		stored, err := s.profile.GetInterests(ctx, userID)
		if err != nil {
			return nil, err
		}
		labels = uniqueLabels(stored)
	}
	if len(labels) == 0 {
		return nil, apperr.Validation("Please select at least one interest")
	}
	return labels, nil
}

func uniqueLabels(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		label := normalize.CleanLabel(r)
		key := normalize.InterestKey(label)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	return out
}

// complete makes the single provider call for a feature.
func (s *AIService) complete(ctx context.Context, feature string, userID uuid.UUID, req ai.Request) (string, error) {
	start := time.Now()

	raw, err := s.completer.Complete(ctx, req)
	if err != nil {
		logger.Log.Error("AI completion failed",
			zap.String("feature", feature),
			zap.String("user_id", userID.String()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		if errors.Is(err, ai.ErrNotConfigured) {
			return "", apperr.Upstream("AI provider is not configured", err)
		}
		return "", apperr.Upstream("AI provider request failed", err)
	}

	logger.Log.Debug("AI completion received",
		zap.String("feature", feature),
		zap.Int("chars", len(raw)),
		zap.Duration("duration", time.Since(start)),
	)
	return raw, nil
}

// structured completes the request and parses the reply. Unparseable output
// is journaled and reported as malformed.
func (s *AIService) structured(ctx context.Context, feature string, userID uuid.UUID, req ai.Request) (*modeljson.Result, error) {
	raw, err := s.complete(ctx, feature, userID, req)
	if err != nil {
		return nil, err
	}

	parsed, err := modeljson.Extract(raw)
	if err != nil {
		s.record(feature, userID, raw, "rejected")
		return nil, apperr.New(apperr.KindMalformedModel, "AI response could not be parsed", err)
	}

	logger.Log.Debug("AI output parsed",
		zap.String("feature", feature),
		zap.String("strategy", parsed.Strategy.String()),
	)
	return parsed, nil
}

func (s *AIService) emptyResult(feature string, userID uuid.UUID, what string) error {
	logger.Log.Warn("AI output normalized to an empty result",
		zap.String("feature", feature),
		zap.String("user_id", userID.String()),
	)
	return apperr.New(apperr.KindMalformedModel, fmt.Sprintf("AI response contained no %s", what), modeljson.ErrMalformedModelOutput)
}

func (s *AIService) record(feature string, userID uuid.UUID, raw, handling string) {
	err := s.journal.Record(journal.Entry{
		Feature:  feature,
		UserID:   userID.String(),
		Raw:      raw,
		Handling: handling,
	})
	if err != nil {
		logger.Log.Error("Failed to journal model output",
			zap.String("feature", feature),
			zap.Error(err),
		)
	}
}

func truncatePrompt(s string) string {
	r := []rune(s)
	if len(r) <= maxPromptText {
		return s
	}
	return string(r[:maxPromptText])
}
