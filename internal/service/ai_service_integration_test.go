package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/broker"
	"github.com/furqan-uddin/SkillForge-Backend/internal/journal"
	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/furqan-uddin/SkillForge-Backend/internal/normalize"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/internal/service"
	"github.com/furqan-uddin/SkillForge-Backend/internal/testutil"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const generatedRoadmapReply = `Here you go:
{"Go": {"Week 1": ["a","b","c","d"], "Week 2": ["e","f","g","h"]},
 "Docker": {"Week 1": ["i","j","k","l"]}}`

type AIServiceIntegrationTestSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	userRepo  *repository.UserRepository
	profile   *service.ProfileService
	roadmaps  *service.RoadmapService
	completer *testutil.FakeCompleter
	journal   *journal.Journal
	ai        *service.AIService
	user      *models.User
	ctx       context.Context
}

func (s *AIServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.userRepo = repository.NewUserRepository(s.testDB.DB)
	s.profile = service.NewProfileService(s.userRepo)
	s.roadmaps = service.NewRoadmapService(
		repository.NewRoadmapRepository(s.testDB.DB),
		repository.NewProgressLogRepository(s.testDB.DB),
		broker.NopBroker{},
		service.DefaultRoadmapLimit,
	)
	s.ctx = context.Background()
}

func (s *AIServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AIServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.user = testutil.CreateTestUser(s.T(), s.testDB.DB, "Learner", "learner@example.com")

	j, err := journal.Open(filepath.Join(s.T().TempDir(), "model_output.log"))
	s.Require().NoError(err)
	s.journal = j
	s.T().Cleanup(func() { _ = j.Close() })

	s.completer = &testutil.FakeCompleter{}
	s.ai = service.NewAIService(s.completer, s.userRepo, s.profile, s.roadmaps, s.journal)
}

func (s *AIServiceIntegrationTestSuite) reload() *models.User {
	u, err := s.profile.Get(s.ctx, s.user.ID)
	s.Require().NoError(err)
	return u
}

func (s *AIServiceIntegrationTestSuite) journalEntries() []journal.Entry {
	entries, err := s.journal.ReadAll()
	s.Require().NoError(err)
	return entries
}

func (s *AIServiceIntegrationTestSuite) TestGenerateRoadmaps_SetsLegacyProgress() {
	s.completer.Reply = generatedRoadmapReply

	out, err := s.ai.GenerateRoadmaps(s.ctx, s.user.ID, []string{"Go", "Docker"}, false)
	s.Require().NoError(err)

	assert.Equal(s.T(), normalize.SchemaVersion, out.SchemaVersion)
	assert.Equal(s.T(), service.GeneratedRoadmapProgress, out.Progress)
	s.Require().Len(out.Roadmaps, 2)
	assert.Equal(s.T(), "Docker", out.Roadmaps[0].Interest)
	assert.Empty(s.T(), out.Saved)
	assert.Equal(s.T(), 10, s.reload().RoadmapProgress)
	assert.Contains(s.T(), s.completer.Requests[0].Prompt, "Go, Docker")
}

func (s *AIServiceIntegrationTestSuite) TestGenerateRoadmaps_UsesSavedInterestsAndSaves() {
	_, err := s.profile.SaveInterests(s.ctx, s.user.ID, []string{"Golang", "Docker"})
	s.Require().NoError(err)
	s.completer.Reply = generatedRoadmapReply

	out, err := s.ai.GenerateRoadmaps(s.ctx, s.user.ID, nil, true)
	s.Require().NoError(err)
	s.Require().Len(out.Saved, 2)

	list, err := s.roadmaps.List(s.ctx, s.user.ID)
	s.Require().NoError(err)
	assert.Len(s.T(), list, 2)
}

func (s *AIServiceIntegrationTestSuite) TestGenerateRoadmaps_NoInterests() {
	_, err := s.ai.GenerateRoadmaps(s.ctx, s.user.ID, nil, false)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))
	assert.Zero(s.T(), s.completer.Calls())
}

func (s *AIServiceIntegrationTestSuite) TestGenerateRoadmaps_IncompleteWeeksRejectedOnSave() {
	s.completer.Reply = `{"Go": {"Week 1": ["only one step"]}}`

	_, err := s.ai.GenerateRoadmaps(s.ctx, s.user.ID, []string{"Go"}, true)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindMalformedModel))
}

func (s *AIServiceIntegrationTestSuite) TestGenerateRoadmaps_OneIncompleteRoadmapSavesNothing() {
	s.completer.Reply = `{"Docker": {"Week 1": ["i","j","k","l"]}, "Go": {"Week 1": ["only one"]}}`

	out, err := s.ai.GenerateRoadmaps(s.ctx, s.user.ID, []string{"Docker", "Go"}, true)
	assert.Nil(s.T(), out)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindMalformedModel))

	list, err := s.roadmaps.List(s.ctx, s.user.ID)
	s.Require().NoError(err)
	assert.Empty(s.T(), list)
	assert.Zero(s.T(), s.reload().RoadmapProgress)
}

func (s *AIServiceIntegrationTestSuite) TestStructuredFeatures_ProseIs502AndJournaled() {
	s.completer.Reply = "I'm sorry, I can't help with that."

	_, err := s.ai.Interview(s.ctx, s.user.ID, "Backend Engineer")
	e, ok := apperr.As(err)
	s.Require().True(ok)
	assert.Equal(s.T(), 502, e.Status())

	_, err = s.ai.Insights(s.ctx, s.user.ID, []string{"Cloud"})
	assert.True(s.T(), apperr.IsKind(err, apperr.KindMalformedModel))

	_, err = s.ai.SkillGap(s.ctx, s.user.ID, []string{"Go"}, "SRE")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindMalformedModel))

	_, err = s.ai.MatchJD(s.ctx, s.user.ID, "Go developer", "Needs Go")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindMalformedModel))

	entries := s.journalEntries()
	s.Require().Len(entries, 4)
	assert.Equal(s.T(), service.FeatureInterview, entries[0].Feature)
	assert.Equal(s.T(), "rejected", entries[0].Handling)
	assert.Equal(s.T(), s.completer.Reply, entries[0].Raw)
}

func (s *AIServiceIntegrationTestSuite) TestEmptyCollections() {
	s.completer.Reply = `{"questions": []}`
	_, err := s.ai.Interview(s.ctx, s.user.ID, "Backend Engineer")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindMalformedModel))

	s.completer.Reply = `{"insights": "none"}`
	_, err = s.ai.Insights(s.ctx, s.user.ID, []string{"Cloud"})
	assert.True(s.T(), apperr.IsKind(err, apperr.KindMalformedModel))

	s.completer.Reply = `{"missingSkills": []}`
	gap, err := s.ai.SkillGap(s.ctx, s.user.ID, nil, "SRE")
	s.Require().NoError(err)
	assert.Empty(s.T(), gap.MissingSkills)

	s.completer.Reply = `{}`
	match, err := s.ai.MatchJD(s.ctx, s.user.ID, "resume", "jd")
	s.Require().NoError(err)
	assert.Equal(s.T(), 0, match.MatchScore)
}

func (s *AIServiceIntegrationTestSuite) TestInterview_NormalizesAliases() {
	s.completer.Reply = "```json\n{'interview_questions': [{'q': 'What is a channel?', 'a': 'A typed conduit',},]}\n```"

	out, err := s.ai.Interview(s.ctx, s.user.ID, "Go Developer")
	s.Require().NoError(err)
	assert.Equal(s.T(), []normalize.InterviewQuestion{{Question: "What is a channel?", Answer: "A typed conduit"}}, out.Questions)
}

func (s *AIServiceIntegrationTestSuite) TestUpstreamFailure() {
	s.completer.Err = errors.New("connection reset")

	_, err := s.ai.Interview(s.ctx, s.user.ID, "Backend Engineer")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindUpstream))

	_, err = s.ai.AnalyzeResume(s.ctx, s.user.ID, "Some resume")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindUpstream))
	assert.Empty(s.T(), s.journalEntries())
}

func (s *AIServiceIntegrationTestSuite) TestAnalyzeResume_AwardsBothBadges() {
	s.completer.Reply = `{"score": 97, "suggestions": ["Quantify impact"]}`

	out, err := s.ai.AnalyzeResume(s.ctx, s.user.ID, "Experienced Go developer")
	s.Require().NoError(err)

	assert.Equal(s.T(), 97, out.Score)
	assert.False(s.T(), out.Fallback)
	assert.Equal(s.T(), []string{service.BadgeResumeReady, service.BadgeResumeMaster}, out.Badges)

	user := s.reload()
	assert.Equal(s.T(), 97, user.ResumeScore)
	assert.Equal(s.T(), "Experienced Go developer", user.ResumeText)

	// Scoring again does not duplicate badges.
	_, err = s.ai.AnalyzeResume(s.ctx, s.user.ID, "Experienced Go developer")
	s.Require().NoError(err)
	assert.Len(s.T(), s.reload().Badges, 2)
}

func (s *AIServiceIntegrationTestSuite) TestAnalyzeResume_ThresholdsAreIndependent() {
	s.completer.Reply = `{"score": 85}`

	out, err := s.ai.AnalyzeResume(s.ctx, s.user.ID, "Resume")
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{service.BadgeResumeReady}, out.Badges)
	assert.Equal(s.T(), normalize.DefaultSuggestions(), out.Suggestions)

	s.completer.Reply = `{"score": 40}`
	out, err = s.ai.AnalyzeResume(s.ctx, s.user.ID, "Resume")
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{service.BadgeResumeReady}, out.Badges)
	assert.Equal(s.T(), 40, s.reload().ResumeScore)
}

func (s *AIServiceIntegrationTestSuite) TestAnalyzeResume_MalformedOutputFallsBack() {
	s.completer.Reply = "Score: 72/100\n- Add a summary section\n- Remove the photo"

	out, err := s.ai.AnalyzeResume(s.ctx, s.user.ID, "Resume text")
	s.Require().NoError(err)

	assert.True(s.T(), out.Fallback)
	assert.Equal(s.T(), 72, out.Score)
	assert.Equal(s.T(), []string{"Add a summary section", "Remove the photo"}, out.Suggestions)
	assert.Equal(s.T(), 72, s.reload().ResumeScore)

	entries := s.journalEntries()
	s.Require().Len(entries, 1)
	assert.Equal(s.T(), "fallback", entries[0].Handling)
	assert.Equal(s.T(), service.FeatureResume, entries[0].Feature)
}

func (s *AIServiceIntegrationTestSuite) TestAnalyzeResume_EmptyText() {
	_, err := s.ai.AnalyzeResume(s.ctx, s.user.ID, "  \n ")
	assert.ErrorIs(s.T(), err, service.ErrNoResumeText)
	assert.Zero(s.T(), s.completer.Calls())
}

func (s *AIServiceIntegrationTestSuite) TestMatchJD_UsesStoredResume() {
	_, err := s.ai.MatchJD(s.ctx, s.user.ID, "", "Needs Go")
	assert.ErrorIs(s.T(), err, service.ErrNoResumeText)

	s.completer.Queue = []string{`{"score": 60}`, `{"matchScore": 75, "matchedSkills": ["Go"]}`}
	_, err = s.ai.AnalyzeResume(s.ctx, s.user.ID, "Go developer with 5 years")
	s.Require().NoError(err)

	out, err := s.ai.MatchJD(s.ctx, s.user.ID, "", "Needs Go")
	s.Require().NoError(err)
	assert.Equal(s.T(), 75, out.MatchScore)
	assert.Contains(s.T(), s.completer.Requests[1].Prompt, "Go developer with 5 years")
}

func TestAIServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AIServiceIntegrationTestSuite))
}
