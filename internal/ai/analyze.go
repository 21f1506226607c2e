package ai

import (
	"context"
	"fmt"

	"github.com/kwhitfield/jobradar/internal/model"
)

// Analyzer produces free-form application prep text for a single job. Unlike
// Scorer its output is shown verbatim, so there is nothing to parse.
type Analyzer struct {
	provider LLMProvider
	resume   string
}

// NewAnalyzer creates an analyzer for the given resume text.
func NewAnalyzer(provider LLMProvider, resume string) *Analyzer {
	return &Analyzer{provider: provider, resume: resume}
}

// CoverLetterPoints suggests the points to emphasize in a cover letter for job.
func (a *Analyzer) CoverLetterPoints(ctx context.Context, job model.Job) (string, error) {
	prompt, err := renderPrompt(coverLetterTemplate, a.resume, job)
	if err != nil {
		return "", err
	}
	text, err := a.provider.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}
	return text, nil
}

// ResumeGaps identifies resume gaps relative to job's requirements and how to
// address them.
func (a *Analyzer) ResumeGaps(ctx context.Context, job model.Job) (string, error) {
	prompt, err := renderPrompt(resumeGapsTemplate, a.resume, job)
	if err != nil {
		return "", err
	}
	text, err := a.provider.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}
	return text, nil
}
