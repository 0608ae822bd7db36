package normalize

import (
	"regexp"
	"strings"
)

type InterviewQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Interview struct {
	SchemaVersion string              `json:"schemaVersion"`
	Questions     []InterviewQuestion `json:"questions"`
}

type SkillItem struct {
	Skill       string `json:"skill"`
	Description string `json:"description"`
}

type SkillGap struct {
	SchemaVersion string      `json:"schemaVersion"`
	MissingSkills []SkillItem `json:"missingSkills"`
	Summary       string      `json:"summary"`
}

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Insights struct {
	SchemaVersion string    `json:"schemaVersion"`
	Insights      []Insight `json:"insights"`
	Summary       string    `json:"summary"`
}

type JDMatch struct {
	SchemaVersion string      `json:"schemaVersion"`
	MatchScore    int         `json:"matchScore"`
	MatchedSkills []string    `json:"matchedSkills"`
	MissingSkills []SkillItem `json:"missingSkills"`
	Summary       string      `json:"summary"`
}

type ResumeReview struct {
	SchemaVersion string   `json:"schemaVersion"`
	Score         int      `json:"score"`
	Suggestions   []string `json:"suggestions"`
}

// collection returns the list stored under field, or v itself when the model
// answered with a bare array.
func collection(v any, field string) ([]any, map[string]any) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		return lookupList(t, field), t
	default:
		return nil, nil
	}
}

func NormalizeInterview(v any) Interview {
	out := Interview{SchemaVersion: SchemaVersion, Questions: make([]InterviewQuestion, 0)}
	items, _ := collection(v, "questions")
	for _, item := range items {
		if q, a, ok := pair(item, "question", "answer"); ok {
			out.Questions = append(out.Questions, InterviewQuestion{Question: q, Answer: a})
		}
	}
	return out
}

func skillItems(items []any) []SkillItem {
	out := make([]SkillItem, 0, len(items))
	for _, item := range items {
		if s, d, ok := pair(item, "skill", "description"); ok {
			out = append(out, SkillItem{Skill: s, Description: d})
		}
	}
	return out
}

func NormalizeSkillGap(v any) SkillGap {
	items, root := collection(v, "missingSkills")
	out := SkillGap{SchemaVersion: SchemaVersion, MissingSkills: skillItems(items)}
	if root != nil {
		out.Summary = lookupString(root, "summary")
	}
	return out
}

func NormalizeInsights(v any) Insights {
	items, root := collection(v, "insights")
	out := Insights{SchemaVersion: SchemaVersion, Insights: make([]Insight, 0, len(items))}
	for _, item := range items {
		if t, d, ok := pair(item, "insightTitle", "description"); ok {
			out.Insights = append(out.Insights, Insight{Title: t, Description: d})
		}
	}
	if root != nil {
		out.Summary = lookupString(root, "summary")
	}
	return out
}

func NormalizeJDMatch(v any) JDMatch {
	out := JDMatch{
		SchemaVersion: SchemaVersion,
		MatchedSkills: make([]string, 0),
		MissingSkills: make([]SkillItem, 0),
	}
	root, ok := v.(map[string]any)
	if !ok {
		return out
	}
	if s, ok := lookup(root, "matchScore"); ok {
		out.MatchScore, _ = asScore(s)
	}
	matched, _ := lookup(root, "matchedSkills")
	out.MatchedSkills = stringList(matched, "skill")
	out.MissingSkills = skillItems(lookupList(root, "missingSkills"))
	out.Summary = lookupString(root, "summary")
	return out
}

// NormalizeResumeReview reads {score, suggestions}. ok is false when the
// output carries no usable score, so callers can fall back to the text
// heuristic.
func NormalizeResumeReview(v any) (ResumeReview, bool) {
	out := ResumeReview{SchemaVersion: SchemaVersion, Suggestions: make([]string, 0)}
	root, isMap := v.(map[string]any)
	if !isMap {
		return out, false
	}
	raw, found := lookup(root, "score")
	if !found {
		return out, false
	}
	score, ok := asScore(raw)
	if !ok {
		return out, false
	}
	out.Score = score
	suggestions, _ := lookup(root, "suggestions")
	out.Suggestions = stringList(suggestions, "suggestion")
	if len(out.Suggestions) == 0 {
		out.Suggestions = DefaultSuggestions()
	}
	return out, true
}

// DefaultResumeScore is used when a review contains no number at all.
const DefaultResumeScore = 50

// DefaultSuggestions returns the stock advice used when nothing better is
// available.
func DefaultSuggestions() []string {
	return []string{
		"Add measurable achievements.",
		"Use strong action verbs.",
		"Tailor resume for specific roles.",
	}
}

var (
	suggestionSplit = regexp.MustCompile(`\n|•|-`)
	mentionsScore   = regexp.MustCompile(`(?i)score`)
)

// ResumeFallback derives a review from free text: the first 1-3 digit number
// capped at 100 is the score, and every line longer than five characters that
// does not mention the score becomes a suggestion.
func ResumeFallback(text string) ResumeReview {
	out := ResumeReview{SchemaVersion: SchemaVersion, Score: DefaultResumeScore}
	if s, ok := asScore(text); ok {
		out.Score = s
	}

	out.Suggestions = make([]string, 0)
	for _, part := range suggestionSplit.Split(text, -1) {
		part = strings.TrimSpace(part)
		if len(part) > 5 && !mentionsScore.MatchString(part) {
			out.Suggestions = append(out.Suggestions, part)
		}
	}
	if len(out.Suggestions) == 0 {
		out.Suggestions = DefaultSuggestions()
	}
	return out
}
