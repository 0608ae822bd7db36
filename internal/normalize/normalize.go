// Package normalize coerces loosely typed model output into the canonical,
// versioned response shapes. Coercion never fails: missing or mistyped
// collections become empty, bare strings are wrapped, and alternate key
// names resolve through a single alias table.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SchemaVersion is stamped on every canonical output.
const SchemaVersion = "1"

// aliases lists the accepted spellings of each canonical field, in priority
// order. The first alias present in an object wins.
var aliases = map[string][]string{
	"question":      {"question", "q", "prompt"},
	"answer":        {"answer", "a", "sampleAnswer", "sample_answer", "response"},
	"questions":     {"questions", "interviewQuestions", "interview_questions", "qa", "items"},
	"skill":         {"skill", "name", "skillName", "skill_name"},
	"description":   {"description", "desc", "details", "detail", "reason", "explanation"},
	"missingSkills": {"missingSkills", "missing_skills", "skillGaps", "skill_gaps", "gaps"},
	"matchedSkills": {"matchedSkills", "matched_skills", "matchingSkills", "matching_skills", "strengths"},
	"insights":      {"insights", "careerInsights", "career_insights", "items"},
	"insightTitle":  {"title", "heading", "insight", "name"},
	"summary":       {"summary", "overview", "verdict"},
	"matchScore":    {"matchScore", "match_score", "score", "matchPercentage", "match_percentage"},
	"score":         {"score", "resumeScore", "resume_score", "rating"},
	"suggestions":   {"suggestions", "improvements", "recommendations", "tips"},
	"suggestion":    {"suggestion", "text", "description", "tip"},
	"weekTitle":     {"title", "week", "name"},
	"steps":         {"steps", "tasks", "items"},
	"stepText":      {"text", "step", "title", "task"},
	"interest":      {"interest", "topic", "name", "title"},
	"weeks":         {"weeks", "roadmap", "plan"},
	"roadmaps":      {"roadmaps", "items"},
}

// lookup returns the value under the first alias of field present in m.
func lookup(m map[string]any, field string) (any, bool) {
	for _, key := range aliases[field] {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupString(m map[string]any, field string) string {
	v, _ := lookup(m, field)
	return asString(v)
}

func lookupList(m map[string]any, field string) []any {
	v, _ := lookup(m, field)
	return asList(v)
}

// asList returns v when it is an array and nil otherwise.
func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

var firstNumber = regexp.MustCompile(`\d{1,3}`)

// asScore reads a 0-100 score from a number or from the first 1-3 digit run
// of a string. ok is false when no number is present.
func asScore(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return clampScore(int(math.Round(t))), true
	case string:
		m := firstNumber.FindString(t)
		if m == "" {
			return 0, false
		}
		n, _ := strconv.Atoi(m)
		return clampScore(n), true
	default:
		return 0, false
	}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// pair wraps a bare string as {primary: v, secondary: ""} and reads objects
// through the alias table. ok is false when the primary field is empty.
func pair(v any, primary, secondary string) (string, string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, "", s != ""
	case map[string]any:
		p := lookupString(t, primary)
		return p, lookupString(t, secondary), p != ""
	default:
		return "", "", false
	}
}

func stringList(v any, field string) []string {
	out := make([]string, 0)
	for _, item := range asList(v) {
		var s string
		switch t := item.(type) {
		case map[string]any:
			s = lookupString(t, field)
		default:
			s = asString(t)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CleanLabel trims, collapses inner whitespace and applies NFC.
func CleanLabel(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// InterestKey is the natural key for an interest label: NFKC folded,
// lower-cased and whitespace-collapsed.
func InterestKey(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(norm.NFKC.String(label)), " "))
}
