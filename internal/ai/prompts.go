package ai

import (
	"fmt"
	"strings"
)

const jsonOnly = "You are a helpful career assistant. Reply with valid JSON only, no markdown fences and no commentary."

// RoadmapPrompt asks for one six-week plan per interest.
func RoadmapPrompt(interests []string) Request {
	return Request{
		System: jsonOnly,
		Prompt: fmt.Sprintf(`Create a learning roadmap for each of these interests: %s.
For every interest produce 6 weeks with exactly 4 concrete steps per week.
Respond with a JSON object shaped like:
{"<Interest>": {"Week 1": ["step", "step", "step", "step"], "Week 2": [...]}}`,
			strings.Join(interests, ", ")),
		Temperature: 0.7,
		MaxTokens:   4096,
		JSON:        true,
	}
}

func ResumePrompt(text string) Request {
	return Request{
		System: jsonOnly,
		Prompt: `Review the resume below. Score it from 0 to 100 and give short, actionable suggestions.
Respond as {"score": <number>, "suggestions": ["...", "..."]}.

Resume:
` + text,
		Temperature: 0.3,
		MaxTokens:   1024,
		JSON:        true,
	}
}

func JDMatchPrompt(resumeText, jobDescription string) Request {
	return Request{
		System: jsonOnly,
		Prompt: `Compare the resume with the job description.
Respond as {"matchScore": <0-100>, "matchedSkills": ["..."], "missingSkills": ["..."], "summary": "..."}.

Resume:
` + resumeText + `

Job description:
` + jobDescription,
		Temperature: 0.3,
		MaxTokens:   1024,
		JSON:        true,
	}
}

func InterviewPrompt(role string) Request {
	return Request{
		System: jsonOnly,
		Prompt: fmt.Sprintf(`Write 5 interview questions with model answers for a %s role.
Respond as {"questions": [{"question": "...", "answer": "..."}]}.`, role),
		Temperature: 0.7,
		MaxTokens:   2048,
		JSON:        true,
	}
}

func SkillGapPrompt(currentSkills []string, targetRole string) Request {
	return Request{
		System: jsonOnly,
		Prompt: fmt.Sprintf(`A candidate with the skills [%s] wants to become a %s.
List the skills they are missing with a one-line description each.
Respond as {"missingSkills": [{"skill": "...", "description": "..."}]}.`,
			strings.Join(currentSkills, ", "), targetRole),
		Temperature: 0.5,
		MaxTokens:   1024,
		JSON:        true,
	}
}

func InsightsPrompt(interests []string) Request {
	return Request{
		System: jsonOnly,
		Prompt: fmt.Sprintf(`Give 3 short career insights for someone interested in: %s.
Respond as {"insights": [{"title": "...", "description": "..."}]}.`, strings.Join(interests, ", ")),
		Temperature: 0.7,
		MaxTokens:   1024,
		JSON:        true,
	}
}
