package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/furqan-uddin/SkillForge-Backend/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

// StepsPerWeek is the fixed number of steps every roadmap week must carry.
const StepsPerWeek = 4

const weeksSchemaJSON = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["title", "steps"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"steps": {
				"type": "array",
				"minItems": 4,
				"maxItems": 4,
				"items": {
					"type": "object",
					"required": ["text"],
					"properties": {"text": {"type": "string", "minLength": 1}}
				}
			}
		}
	}
}`

var weeksSchema = mustSchema(weeksSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("normalize: invalid schema: %v", err))
	}
	return s
}

// SchemaError lists every violation found by a schema check.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "roadmap weeks failed schema validation: " + strings.Join(e.Problems, "; ")
}

// ValidateWeeks checks that there is at least one week and that each week has
// a title and exactly four non-empty steps.
func ValidateWeeks(weeks []models.Week) error {
	res, err := weeksSchema.Validate(gojsonschema.NewGoLoader(weeks))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, e.String())
	}
	return &SchemaError{Problems: problems}
}

// NormalizeWeeks accepts either an array of {title, steps} objects or a map
// of week title to step list and returns canonical weeks with completion
// state cleared. Map entries are ordered by the first number in their title,
// and titles that normalize to the same key keep only the first entry.
func NormalizeWeeks(v any) []models.Week {
	weeks := make([]models.Week, 0)

	switch t := v.(type) {
	case []models.Week:
		for _, w := range t {
			steps := make([]models.Step, 0, len(w.Steps))
			for _, s := range w.Steps {
				steps = append(steps, models.Step{Text: CleanLabel(s.Text)})
			}
			weeks = append(weeks, models.Week{Title: CleanLabel(w.Title), Steps: steps})
		}
	case []any:
		for _, item := range t {
			switch w := item.(type) {
			case map[string]any:
				weeks = append(weeks, models.Week{
					Title: CleanLabel(lookupString(w, "weekTitle")),
					Steps: normalizeSteps(lookupList(w, "steps")),
				})
			case string:
				weeks = append(weeks, models.Week{Title: CleanLabel(w), Steps: []models.Step{}})
			}
		}
	case map[string]any:
		seen := make(map[string]bool, len(t))
		for _, key := range orderedKeys(t) {
			k := InterestKey(key)
			if seen[k] {
				continue
			}
			seen[k] = true
			weeks = append(weeks, models.Week{
				Title: CleanLabel(key),
				Steps: normalizeSteps(asList(t[key])),
			})
		}
	}

	return weeks
}

func normalizeSteps(items []any) []models.Step {
	steps := make([]models.Step, 0, len(items))
	for _, item := range items {
		var text string
		switch s := item.(type) {
		case map[string]any:
			text = lookupString(s, "stepText")
		default:
			text = asString(s)
		}
		steps = append(steps, models.Step{Text: CleanLabel(text)})
	}
	return steps
}

var weekNumber = regexp.MustCompile(`\d+`)

// orderedKeys sorts map keys by their first embedded number so "Week 10"
// follows "Week 9". Keys without a number sort after numbered ones.
func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ni, iok := leadingNumber(keys[i])
		nj, jok := leadingNumber(keys[j])
		switch {
		case iok && jok && ni != nj:
			return ni < nj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func leadingNumber(s string) (int, bool) {
	m := weekNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

// GeneratedRoadmap is one interest's plan as produced by the generator.
type GeneratedRoadmap struct {
	Interest string        `json:"interest"`
	Weeks    []models.Week `json:"weeks"`
}

type GeneratedRoadmaps struct {
	SchemaVersion string             `json:"schemaVersion"`
	Roadmaps      []GeneratedRoadmap `json:"roadmaps"`
}

// NormalizeGeneratedRoadmaps accepts {"Interest": weeks} or
// {"roadmaps": [{"interest", "weeks"}]}. When interests collide after
// InterestKey folding only the first one seen is kept.
func NormalizeGeneratedRoadmaps(v any) GeneratedRoadmaps {
	out := GeneratedRoadmaps{SchemaVersion: SchemaVersion, Roadmaps: make([]GeneratedRoadmap, 0)}
	seen := make(map[string]bool)

	add := func(label string, weeks any) {
		label = CleanLabel(label)
		key := InterestKey(label)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out.Roadmaps = append(out.Roadmaps, GeneratedRoadmap{Interest: label, Weeks: NormalizeWeeks(weeks)})
	}

	var list []any
	switch t := v.(type) {
	case []any:
		list = t
	case map[string]any:
		if l, ok := lookup(t, "roadmaps"); ok {
			list = asList(l)
			break
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k, t[k])
		}
	}

	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			weeks, _ := lookup(m, "weeks")
			add(lookupString(m, "interest"), weeks)
		}
	}

	return out
}
