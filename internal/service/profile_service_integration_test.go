package service_test

import (
	"context"
	"testing"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/furqan-uddin/SkillForge-Backend/internal/repository"
	"github.com/furqan-uddin/SkillForge-Backend/internal/service"
	"github.com/furqan-uddin/SkillForge-Backend/internal/testutil"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ProfileServiceIntegrationTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDatabase
	profile *service.ProfileService
	user    *models.User
	ctx     context.Context
}

func (s *ProfileServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.profile = service.NewProfileService(repository.NewUserRepository(s.testDB.DB))
	s.ctx = context.Background()
}

func (s *ProfileServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *ProfileServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.user = testutil.CreateTestUser(s.T(), s.testDB.DB, "Learner", "learner@example.com")
}

func (s *ProfileServiceIntegrationTestSuite) TestAssignBadge_Idempotent() {
	added, err := s.profile.AssignBadge(s.ctx, s.user.ID, "Resume Ready")
	s.Require().NoError(err)
	assert.True(s.T(), added)

	added, err = s.profile.AssignBadge(s.ctx, s.user.ID, "Resume Ready")
	s.Require().NoError(err)
	assert.False(s.T(), added)

	_, err = s.profile.AssignBadge(s.ctx, s.user.ID, "Early Bird")
	s.Require().NoError(err)

	user, err := s.profile.Get(s.ctx, s.user.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{"Resume Ready", "Early Bird"}, []string(user.Badges))
}

func (s *ProfileServiceIntegrationTestSuite) TestSaveInterests_CleansAndDedupes() {
	saved, err := s.profile.SaveInterests(s.ctx, s.user.ID, []string{
		"  Web   Development ",
		"web development",
		"AI & ML",
		"C#",
		"UX",
		"Data-Science",
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{"Web Development", "AI & ML", "Data-Science"}, saved)

	got, err := s.profile.GetInterests(s.ctx, s.user.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), saved, got)
}

func (s *ProfileServiceIntegrationTestSuite) TestSaveInterests_Limits() {
	many := make([]string, 0, 11)
	for i := 0; i < 11; i++ {
		many = append(many, "Interest "+string(rune('A'+i)))
	}
	_, err := s.profile.SaveInterests(s.ctx, s.user.ID, many)
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))

	_, err = s.profile.SaveInterests(s.ctx, s.user.ID, []string{"!!", "x"})
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))

	cleared, err := s.profile.SaveInterests(s.ctx, s.user.ID, []string{})
	s.Require().NoError(err)
	assert.Empty(s.T(), cleared)
}

func (s *ProfileServiceIntegrationTestSuite) TestUpdate() {
	name := "  New   Name "
	pic := "https://cdn.example.com/me.png"

	user, err := s.profile.Update(s.ctx, s.user.ID, service.ProfileUpdate{Name: &name, ProfilePic: &pic})
	s.Require().NoError(err)
	assert.Equal(s.T(), "New Name", user.Name)
	assert.Equal(s.T(), pic, user.ProfilePic)
	assert.Equal(s.T(), s.user.Email, user.Email)

	bad := "javascript:alert(1)"
	_, err = s.profile.Update(s.ctx, s.user.ID, service.ProfileUpdate{ProfilePic: &bad})
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))

	short := "A"
	_, err = s.profile.Update(s.ctx, s.user.ID, service.ProfileUpdate{Name: &short})
	assert.True(s.T(), apperr.IsKind(err, apperr.KindValidation))
}

func (s *ProfileServiceIntegrationTestSuite) TestUnknownUser() {
	_, err := s.profile.Get(s.ctx, uuid.New())
	assert.True(s.T(), apperr.IsKind(err, apperr.KindNotFound))

	_, err = s.profile.AssignBadge(s.ctx, uuid.New(), "x")
	assert.True(s.T(), apperr.IsKind(err, apperr.KindNotFound))
}

func TestProfileServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ProfileServiceIntegrationTestSuite))
}
