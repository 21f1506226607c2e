package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kwhitfield/jobradar/internal/model"
)

// JobScorer rates one job against the resume. Implemented by ai.Scorer.
type JobScorer interface {
	Score(ctx context.Context, job model.Job) (score int, reasoning string, err error)
}

// ScoringSummary counts the outcomes of one scoring run.
type ScoringSummary struct {
	Scored      int
	Failed      int // unparseable responses or provider errors; jobs stay unscored
	HighMatches int // scored at or above the configured threshold
}

func (s ScoringSummary) String() string {
	return fmt.Sprintf("scored %d, failed %d, high matches %d", s.Scored, s.Failed, s.HighMatches)
}

// Scoring rates every unscored job with bounded parallelism. Each job's
// result is written in its own store call, so two overlapping runs cannot
// produce a torn row; re-scoring an already-scored job is a no-op here
// because only unscored jobs are selected.
type Scoring struct {
	store         model.JobStore
	scorer        JobScorer
	notifier      model.Notifier
	concurrency   int
	minMatchScore int
	logger        *slog.Logger
}

// NewScoring creates a scoring pipeline wired with all its dependencies.
func NewScoring(
	store model.JobStore,
	scorer JobScorer,
	notifier model.Notifier,
	concurrency int,
	minMatchScore int,
	logger *slog.Logger,
) *Scoring {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scoring{
		store:         store,
		scorer:        scorer,
		notifier:      notifier,
		concurrency:   concurrency,
		minMatchScore: minMatchScore,
		logger:        logger,
	}
}

// Run scores all currently-unscored jobs and notifies about high matches.
// A job whose response cannot be parsed is counted as failed and left
// unscored for the next run; only cancellation aborts the batch.
func (s *Scoring) Run(ctx context.Context, reporter model.ProgressReporter) (ScoringSummary, error) {
	jobs, err := s.store.ListUnscored()
	if err != nil {
		return ScoringSummary{}, fmt.Errorf("listing unscored jobs: %w", err)
	}

	var (
		mu          sync.Mutex
		summary     ScoringSummary
		done        int
		highMatches []model.Job
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	total := len(jobs)
	for _, job := range jobs {
		g.Go(func() error {
			score, reasoning, err := s.scoreOne(gctx, job)

			mu.Lock()
			defer mu.Unlock()
			done++
			if reporter != nil {
				reporter.ReportProgress(done, total, fmt.Sprintf("%s at %s", job.Title, job.Company))
			}

			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				summary.Failed++
				s.logger.Warn("scoring failed", "job_id", job.ID, "company", job.Company, "error", err)
				return nil
			}

			summary.Scored++
			if score >= s.minMatchScore {
				summary.HighMatches++
				job.MatchScore = &score
				job.MatchReasoning = reasoning
				highMatches = append(highMatches, job)
				s.logger.Info("high match", "job_id", job.ID, "title", job.Title, "company", job.Company, "score", score)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	if len(highMatches) > 0 && s.notifier != nil {
		if err := s.notifier.Notify(highMatches); err != nil {
			// Notification is best-effort; the scores are already stored.
			s.logger.Warn("high-match notification failed", "error", err)
		}
	}

	s.logger.Info("scoring run complete",
		"scored", summary.Scored,
		"failed", summary.Failed,
		"high_matches", summary.HighMatches,
	)
	return summary, nil
}

func (s *Scoring) scoreOne(ctx context.Context, job model.Job) (int, string, error) {
	score, reasoning, err := s.scorer.Score(ctx, job)
	if err != nil {
		return 0, "", err
	}
	if err := s.store.UpdateScore(job.ID, score, reasoning); err != nil {
		return 0, "", err
	}
	return score, reasoning, nil
}
