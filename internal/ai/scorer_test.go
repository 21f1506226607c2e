package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/kwhitfield/jobradar/internal/model"
)

func TestParseScore_LabeledFormat(t *testing.T) {
	response := `SCORE: 85
REASONING: Strong overlap in cloud architecture and federal experience.
KEY_MATCHES: AWS, TOGAF, Secret clearance
KEY_GAPS: Kubernetes at scale`

	score, reasoning, err := ParseScore(response)
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	if score != 85 {
		t.Errorf("score = %d, want 85", score)
	}
	if !strings.HasPrefix(reasoning, "Strong overlap") {
		t.Errorf("reasoning = %q", reasoning)
	}
	if !strings.Contains(reasoning, "Key matches: AWS, TOGAF, Secret clearance") {
		t.Errorf("key matches not folded into reasoning: %q", reasoning)
	}
	if !strings.Contains(reasoning, "Gaps: Kubernetes at scale") {
		t.Errorf("gaps not folded into reasoning: %q", reasoning)
	}
}

func TestParseScore_GapsNoneOmitted(t *testing.T) {
	response := `SCORE: 92
REASONING: Near-perfect match.
KEY_MATCHES: Everything
KEY_GAPS: None`

	_, reasoning, err := ParseScore(response)
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	if strings.Contains(reasoning, "Gaps:") {
		t.Errorf("KEY_GAPS None should not appear in reasoning: %q", reasoning)
	}
}

func TestParseScore_ProseFallback(t *testing.T) {
	response := "The candidate is well qualified. Score: 87/100. " +
		"Their federal background lines up with the posting."

	score, reasoning, err := ParseScore(response)
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	if score != 87 {
		t.Errorf("score = %d, want 87", score)
	}
	// Without a REASONING label the full response is the reasoning.
	if reasoning != strings.TrimSpace(response) {
		t.Errorf("reasoning = %q", reasoning)
	}
}

func TestParseScore_ScoreWithDecoration(t *testing.T) {
	score, _, err := ParseScore("SCORE: [73]\nREASONING: Decent fit.")
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	if score != 73 {
		t.Errorf("score = %d, want 73", score)
	}
}

func TestParseScore_ClampsOutOfRange(t *testing.T) {
	score, _, err := ParseScore("SCORE: 140\nREASONING: Overenthusiastic model.")
	if err != nil {
		t.Fatalf("ParseScore: %v", err)
	}
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
}

func TestParseScore_NoNumberFails(t *testing.T) {
	_, _, err := ParseScore("I am unable to evaluate this posting.")
	if err == nil {
		t.Fatal("expected error for response with no score")
	}
	var parseErr *model.ScoreParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected ScoreParseError, got %T", err)
	}
}

func TestParseScore_Deterministic(t *testing.T) {
	response := "SCORE: 64\nREASONING: Same input, same output."
	s1, r1, err1 := ParseScore(response)
	s2, r2, err2 := ParseScore(response)
	if err1 != nil || err2 != nil {
		t.Fatalf("ParseScore: %v / %v", err1, err2)
	}
	if s1 != s2 || r1 != r2 {
		t.Errorf("parse not deterministic: (%d,%q) vs (%d,%q)", s1, r1, s2, r2)
	}
}

type fakeProvider struct {
	response string
	err      error
	prompt   string
}

func (f *fakeProvider) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScorer_Score(t *testing.T) {
	provider := &fakeProvider{response: "SCORE: 78\nREASONING: Solid match."}
	scorer := NewScorer(provider, "Twenty years of architecture experience.", testLogger())

	job := model.Job{
		ID:          1,
		Title:       "Enterprise Architect",
		Company:     "Acme Federal",
		Location:    "Arlington, VA",
		Description: "Lead architecture for federal programs.",
	}

	score, reasoning, err := scorer.Score(context.Background(), job)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 78 {
		t.Errorf("score = %d, want 78", score)
	}
	if reasoning != "Solid match." {
		t.Errorf("reasoning = %q", reasoning)
	}

	for _, want := range []string{
		"Twenty years of architecture experience.",
		"Enterprise Architect",
		"Acme Federal",
		"Arlington, VA",
		"SCORE:",
	} {
		if !strings.Contains(provider.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestScorer_TruncatesLongDescription(t *testing.T) {
	provider := &fakeProvider{response: "SCORE: 50\nREASONING: ok"}
	scorer := NewScorer(provider, "resume", testLogger())

	job := model.Job{Description: strings.Repeat("x", maxDescriptionChars+500)}
	if _, _, err := scorer.Score(context.Background(), job); err != nil {
		t.Fatalf("Score: %v", err)
	}
	if strings.Contains(provider.prompt, strings.Repeat("x", maxDescriptionChars+1)) {
		t.Error("description was not truncated in prompt")
	}
}

func TestScorer_ProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	scorer := NewScorer(provider, "resume", testLogger())

	if _, _, err := scorer.Score(context.Background(), model.Job{}); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestAnalyzer_CoverLetterPoints(t *testing.T) {
	provider := &fakeProvider{response: "- Emphasize cloud migration work"}
	analyzer := NewAnalyzer(provider, "resume text")

	text, err := analyzer.CoverLetterPoints(context.Background(), model.Job{
		Title: "Architect", Company: "Initech", Description: "desc",
	})
	if err != nil {
		t.Fatalf("CoverLetterPoints: %v", err)
	}
	if text != "- Emphasize cloud migration work" {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(provider.prompt, "cover letter") {
		t.Errorf("prompt missing cover letter instruction: %q", provider.prompt)
	}
}

func TestAnalyzer_ResumeGaps(t *testing.T) {
	provider := &fakeProvider{response: "Gap: no Kubernetes experience listed."}
	analyzer := NewAnalyzer(provider, "resume text")

	text, err := analyzer.ResumeGaps(context.Background(), model.Job{
		Title: "Architect", Company: "Initech", Description: "desc",
	})
	if err != nil {
		t.Fatalf("ResumeGaps: %v", err)
	}
	if text == "" {
		t.Error("expected gap analysis text")
	}
	if !strings.Contains(provider.prompt, "gaps or weaknesses") {
		t.Errorf("prompt missing gap instruction: %q", provider.prompt)
	}
}
