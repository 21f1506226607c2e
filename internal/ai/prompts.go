package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/match_score.md
var matchScorePromptRaw string

//go:embed prompts/cover_letter.md
var coverLetterPromptRaw string

//go:embed prompts/resume_gaps.md
var resumeGapsPromptRaw string

// Prompt templates, parsed once at package init and reused on every call.
var (
	matchScoreTemplate  = template.Must(template.New("match_score").Parse(matchScorePromptRaw))
	coverLetterTemplate = template.Must(template.New("cover_letter").Parse(coverLetterPromptRaw))
	resumeGapsTemplate  = template.Must(template.New("resume_gaps").Parse(resumeGapsPromptRaw))
)
