package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNormalizeWeeks_ShapesProduceIdenticalBytes(t *testing.T) {
	fromMap := NormalizeWeeks(decode(t, `{"Week 1": ["a","b","c","d"]}`))
	fromArray := NormalizeWeeks(decode(t, `[{"title":"Week 1","steps":["a","b","c","d"]}]`))

	mapBytes, err := json.Marshal(fromMap)
	require.NoError(t, err)
	arrayBytes, err := json.Marshal(fromArray)
	require.NoError(t, err)

	assert.Equal(t, string(mapBytes), string(arrayBytes))
	assert.NoError(t, ValidateWeeks(fromMap))
}

func TestNormalizeWeeks_MapOrderFollowsWeekNumber(t *testing.T) {
	steps := `["a","b","c","d"]`
	weeks := NormalizeWeeks(decode(t, `{"Week 10": `+steps+`, "Week 2": `+steps+`, "Week 1": `+steps+`, "Bonus": `+steps+`}`))

	titles := make([]string, 0, len(weeks))
	for _, w := range weeks {
		titles = append(titles, w.Title)
	}
	assert.Equal(t, []string{"Week 1", "Week 2", "Week 10", "Bonus"}, titles)
}

func TestNormalizeWeeks_DuplicateTitlesCollapse(t *testing.T) {
	weeks := NormalizeWeeks(decode(t, `{"Week 1": ["a","b","c","d"], "  week   1 ": ["e","f","g","h"]}`))
	require.Len(t, weeks, 1)
}

func TestNormalizeWeeks_StepAliasesAndReset(t *testing.T) {
	weeks := NormalizeWeeks(decode(t, `[{"week": "  Week   1 ", "tasks": [
		{"text": "a", "completed": true},
		{"step": "b"},
		{"task": "c"},
		"d"
	]}]`))

	require.Len(t, weeks, 1)
	assert.Equal(t, "Week 1", weeks[0].Title)
	require.Len(t, weeks[0].Steps, 4)
	assert.Equal(t, "a", weeks[0].Steps[0].Text)
	assert.False(t, weeks[0].Steps[0].Completed)
	assert.Nil(t, weeks[0].Steps[0].CompletedAt)
	assert.Equal(t, "d", weeks[0].Steps[3].Text)
}

func TestNormalizeWeeks_DescriptionIsNotStepText(t *testing.T) {
	weeks := NormalizeWeeks(decode(t, `[{"title": "Week 1", "steps": [{"description": "read the docs"}]}]`))

	require.Len(t, weeks, 1)
	require.Len(t, weeks[0].Steps, 1)
	assert.Empty(t, weeks[0].Steps[0].Text)
}

func TestNormalizeWeeks_TypedWeeksAreReset(t *testing.T) {
	now := time.Now()
	in := []models.Week{{Title: " Week  1", Steps: []models.Step{{Text: "a", Completed: true, CompletedAt: &now}}}}

	weeks := NormalizeWeeks(in)
	require.Len(t, weeks, 1)
	assert.Equal(t, "Week 1", weeks[0].Title)
	assert.False(t, weeks[0].Steps[0].Completed)
	assert.Nil(t, weeks[0].Steps[0].CompletedAt)
	assert.True(t, in[0].Steps[0].Completed)
}

func TestNormalizeWeeks_GarbageBecomesEmpty(t *testing.T) {
	assert.Empty(t, NormalizeWeeks(nil))
	assert.Empty(t, NormalizeWeeks("weeks"))
	assert.Empty(t, NormalizeWeeks(float64(3)))
}

func TestValidateWeeks(t *testing.T) {
	four := []models.Step{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}

	tests := []struct {
		name  string
		weeks []models.Week
		ok    bool
	}{
		{"valid", []models.Week{{Title: "Week 1", Steps: four}}, true},
		{"three steps", []models.Week{{Title: "Week 1", Steps: four[:3]}}, false},
		{"five steps", []models.Week{{Title: "Week 1", Steps: append(append([]models.Step{}, four...), models.Step{Text: "e"})}}, false},
		{"empty title", []models.Week{{Title: "", Steps: four}}, false},
		{"empty step", []models.Week{{Title: "Week 1", Steps: []models.Step{{Text: "a"}, {Text: ""}, {Text: "c"}, {Text: "d"}}}}, false},
		{"no weeks", []models.Week{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeeks(tt.weeks)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.NotEmpty(t, schemaErr.Problems)
		})
	}
}

func TestNormalizeGeneratedRoadmaps_DedupesInterestKeys(t *testing.T) {
	steps := `["a","b","c","d"]`
	out := NormalizeGeneratedRoadmaps(decode(t, `{
		"Web Development": {"Week 1": `+steps+`},
		"web  development ": {"Week 1": `+steps+`, "Week 2": `+steps+`},
		"Data Science": [{"title": "Week 1", "steps": `+steps+`}]
	}`))

	assert.Equal(t, SchemaVersion, out.SchemaVersion)
	require.Len(t, out.Roadmaps, 2)
	assert.Equal(t, "Data Science", out.Roadmaps[0].Interest)
	assert.Equal(t, "Web Development", out.Roadmaps[1].Interest)
	assert.Len(t, out.Roadmaps[1].Weeks, 1)
}

func TestNormalizeGeneratedRoadmaps_ListShape(t *testing.T) {
	out := NormalizeGeneratedRoadmaps(decode(t, `{"roadmaps": [{"interest": "Go", "weeks": {"Week 1": ["a","b","c","d"]}}]}`))
	require.Len(t, out.Roadmaps, 1)
	assert.Equal(t, "Go", out.Roadmaps[0].Interest)
	assert.NoError(t, ValidateWeeks(out.Roadmaps[0].Weeks))
}

func TestInterestKey(t *testing.T) {
	assert.Equal(t, "machine learning", InterestKey("  Machine   Learning "))
	assert.Equal(t, InterestKey("ＵＩ Design"), InterestKey("ui design"))
}

func TestNormalizeInterview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []InterviewQuestion
	}{
		{
			name: "canonical",
			in:   `{"questions": [{"question": "Q1", "answer": "A1"}]}`,
			want: []InterviewQuestion{{Question: "Q1", Answer: "A1"}},
		},
		{
			name: "aliases first present wins",
			in:   `{"qa": [{"q": "Q1", "prompt": "ignored", "sampleAnswer": "A1"}]}`,
			want: []InterviewQuestion{{Question: "Q1", Answer: "A1"}},
		},
		{
			name: "bare strings wrapped",
			in:   `{"questions": ["What is a goroutine?"]}`,
			want: []InterviewQuestion{{Question: "What is a goroutine?", Answer: ""}},
		},
		{
			name: "root array",
			in:   `[{"prompt": "Q1"}]`,
			want: []InterviewQuestion{{Question: "Q1"}},
		},
		{
			name: "non-array coerced to empty",
			in:   `{"questions": "none"}`,
			want: []InterviewQuestion{},
		},
		{
			name: "missing collection",
			in:   `{"other": 1}`,
			want: []InterviewQuestion{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NormalizeInterview(decode(t, tt.in))
			assert.Equal(t, SchemaVersion, out.SchemaVersion)
			assert.Equal(t, tt.want, out.Questions)
		})
	}
}

func TestNormalizeSkillGap(t *testing.T) {
	out := NormalizeSkillGap(decode(t, `{"missing_skills": ["Docker", {"name": "Kubernetes", "reason": "used in prod"}, 7], "overview": "close"}`))

	assert.Equal(t, []SkillItem{
		{Skill: "Docker", Description: ""},
		{Skill: "Kubernetes", Description: "used in prod"},
	}, out.MissingSkills)
	assert.Equal(t, "close", out.Summary)

	empty := NormalizeSkillGap(decode(t, `{"missingSkills": {"not": "a list"}}`))
	assert.NotNil(t, empty.MissingSkills)
	assert.Empty(t, empty.MissingSkills)
}

func TestNormalizeInsights(t *testing.T) {
	out := NormalizeInsights(decode(t, `{"careerInsights": ["Cloud is growing", {"heading": "AI", "details": "hot"}], "summary": "ok"}`))
	assert.Equal(t, []Insight{
		{Title: "Cloud is growing"},
		{Title: "AI", Description: "hot"},
	}, out.Insights)
	assert.Equal(t, "ok", out.Summary)
}

func TestNormalizeJDMatch(t *testing.T) {
	out := NormalizeJDMatch(decode(t, `{"match_score": "82%", "matchingSkills": ["Go", {"skill": "SQL"}], "missingSkills": ["Kafka"], "summary": "good fit"}`))
	assert.Equal(t, 82, out.MatchScore)
	assert.Equal(t, []string{"Go", "SQL"}, out.MatchedSkills)
	assert.Equal(t, []SkillItem{{Skill: "Kafka"}}, out.MissingSkills)

	clamped := NormalizeJDMatch(decode(t, `{"matchScore": 140}`))
	assert.Equal(t, 100, clamped.MatchScore)
	assert.NotNil(t, clamped.MatchedSkills)

	notObject := NormalizeJDMatch(decode(t, `[1, 2]`))
	assert.Equal(t, 0, notObject.MatchScore)
	assert.Empty(t, notObject.MissingSkills)
}

func TestNormalizeResumeReview(t *testing.T) {
	review, ok := NormalizeResumeReview(decode(t, `{"score": 87, "suggestions": ["Quantify impact", {"tip": "Trim to one page"}]}`))
	require.True(t, ok)
	assert.Equal(t, 87, review.Score)
	assert.Equal(t, []string{"Quantify impact", "Trim to one page"}, review.Suggestions)

	noSuggestions, ok := NormalizeResumeReview(decode(t, `{"rating": "70/100"}`))
	require.True(t, ok)
	assert.Equal(t, 70, noSuggestions.Score)
	assert.Equal(t, DefaultSuggestions(), noSuggestions.Suggestions)

	_, ok = NormalizeResumeReview(decode(t, `{"suggestions": ["x"]}`))
	assert.False(t, ok)
}

func TestResumeFallback(t *testing.T) {
	review := ResumeFallback("Score: 78/100\n- Add measurable achievements\n• Use a cleaner layout\nok")
	assert.Equal(t, 78, review.Score)
	assert.Equal(t, []string{"Add measurable achievements", "Use a cleaner layout"}, review.Suggestions)

	capped := ResumeFallback("Rating 450 overall")
	assert.Equal(t, 100, capped.Score)

	none := ResumeFallback("nice")
	assert.Equal(t, DefaultResumeScore, none.Score)
	assert.Equal(t, DefaultSuggestions(), none.Suggestions)
}
