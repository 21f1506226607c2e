package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/kwhitfield/jobradar/internal/model"
)

// maxDescriptionChars bounds the job description sent to the model so one
// oversized posting cannot blow the prompt budget.
const maxDescriptionChars = 4000

// Scorer rates jobs against a resume using an LLM.
type Scorer struct {
	provider LLMProvider
	resume   string
	logger   *slog.Logger
}

// NewScorer creates a scorer for the given resume text.
func NewScorer(provider LLMProvider, resume string, logger *slog.Logger) *Scorer {
	return &Scorer{
		provider: provider,
		resume:   resume,
		logger:   logger,
	}
}

// Score rates how well job matches the resume. Returns a 0-100 score and the
// model's reasoning text. The raw model response never reaches the caller:
// unparseable responses surface as *model.ScoreParseError.
func (s *Scorer) Score(ctx context.Context, job model.Job) (int, string, error) {
	prompt, err := renderPrompt(matchScoreTemplate, s.resume, job)
	if err != nil {
		return 0, "", err
	}

	raw, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return 0, "", fmt.Errorf("llm complete: %w", err)
	}

	score, reasoning, err := ParseScore(raw)
	if err != nil {
		return 0, "", err
	}

	s.logger.Debug("scored job", "job_id", job.ID, "company", job.Company, "score", score)
	return score, reasoning, nil
}

// prosodyScoreRe catches responses that ignored the SCORE: label but still
// state a score in prose, e.g. "I'd give this a Score: 87/100" or
// "match score of 62".
var prosodyScoreRe = regexp.MustCompile(`(?i)\bscore\b[^0-9]{0,20}(\d{1,3})`)

// ParseScore extracts the numeric score and reasoning text from a model
// response. It prefers the labeled SCORE:/REASONING: format the prompt asks
// for, falls back to a prose scan for the score, and returns
// *model.ScoreParseError when no number can be found at all. Scores outside
// 0-100 are clamped.
func ParseScore(response string) (int, string, error) {
	score := -1
	reasoning := ""

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SCORE:"):
			if n, err := parseScoreValue(strings.TrimPrefix(line, "SCORE:")); err == nil {
				score = n
			}
		case strings.HasPrefix(line, "REASONING:"):
			reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		}
	}

	if score < 0 {
		if m := prosodyScoreRe.FindStringSubmatch(response); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				score = n
			}
		}
	}
	if score < 0 {
		return 0, "", &model.ScoreParseError{Response: response}
	}
	score = clamp(score, 0, 100)

	// Fold the structured matches/gaps lines into the reasoning so the
	// stored text is self-contained.
	if reasoning == "" {
		return score, strings.TrimSpace(response), nil
	}
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "KEY_MATCHES:"):
			if matches := strings.TrimSpace(strings.TrimPrefix(line, "KEY_MATCHES:")); matches != "" {
				reasoning += "\n\nKey matches: " + matches
			}
		case strings.HasPrefix(line, "KEY_GAPS:"):
			if gaps := strings.TrimSpace(strings.TrimPrefix(line, "KEY_GAPS:")); gaps != "" && !strings.EqualFold(gaps, "none") {
				reasoning += "\nGaps: " + gaps
			}
		}
	}

	return score, reasoning, nil
}

var firstNumberRe = regexp.MustCompile(`-?\d+`)

// parseScoreValue reads the number from a SCORE: line remainder, tolerating
// decoration like "87/100" or "[87]".
func parseScoreValue(s string) (int, error) {
	if m := firstNumberRe.FindString(strings.TrimSpace(s)); m != "" {
		return strconv.Atoi(m)
	}
	return 0, fmt.Errorf("no number in %q", s)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// promptData is the shared template payload for all prompts.
type promptData struct {
	Resume      string
	Company     string
	Title       string
	Location    string
	Description string
}

func renderPrompt(tmpl *template.Template, resume string, job model.Job) (string, error) {
	desc := job.Description
	if len(desc) > maxDescriptionChars {
		desc = desc[:maxDescriptionChars]
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{
		Resume:      resume,
		Company:     job.Company,
		Title:       job.Title,
		Location:    job.Location,
		Description: desc,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
