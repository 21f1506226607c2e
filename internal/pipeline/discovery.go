// Package pipeline owns the two long-running flows: discovery
// (search → parse → extract → filter → store) and scoring
// (unscored jobs → LLM → store). Per-item failures are isolated and
// counted; only configuration-level failures abort a run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kwhitfield/jobradar/internal/extract"
	"github.com/kwhitfield/jobradar/internal/filter"
	"github.com/kwhitfield/jobradar/internal/model"
	"github.com/kwhitfield/jobradar/internal/query"
	"github.com/kwhitfield/jobradar/internal/serp"
)

// DiscoverySummary counts the outcomes of one discovery run.
type DiscoverySummary struct {
	Discovered int // result links seen across all queries
	Inserted   int // new rows
	Updated    int // existing rows refreshed
	Skipped    int // filtered out (site restriction, location, already seen this run)
	Failed     int // per-item fetch/parse/store failures
}

func (s DiscoverySummary) String() string {
	return fmt.Sprintf("discovered %d, inserted %d, updated %d, skipped %d, failed %d",
		s.Discovered, s.Inserted, s.Updated, s.Skipped, s.Failed)
}

// Discovery runs search queries sequentially through the shared-throttle
// fetcher and stores what survives extraction and the location filter.
// Queries are never parallelized: the proxy service enforces per-account
// rate limits, so wall-clock time is traded for request-budget safety.
type Discovery struct {
	builder        *query.Builder
	fetcher        model.Fetcher
	locations      *filter.LocationFilter
	store          model.JobStore
	maxDetailPages int
	logger         *slog.Logger
}

// NewDiscovery creates a discovery pipeline wired with all its dependencies.
func NewDiscovery(
	builder *query.Builder,
	fetcher model.Fetcher,
	locations *filter.LocationFilter,
	store model.JobStore,
	maxDetailPages int,
	logger *slog.Logger,
) *Discovery {
	return &Discovery{
		builder:        builder,
		fetcher:        fetcher,
		locations:      locations,
		store:          store,
		maxDetailPages: maxDetailPages,
		logger:         logger,
	}
}

// Run executes every configured query and returns the run summary. The
// summary is valid even on error: it reflects whatever completed before the
// abort. Cancellation is checked between queries and between detail pages so
// a cancelled run never cuts a job row in half.
func (d *Discovery) Run(ctx context.Context, reporter model.ProgressReporter) (DiscoverySummary, error) {
	var summary DiscoverySummary

	// URLs already handled in this run; a posting surfaced by two queries
	// is fetched once.
	seen := make(map[string]bool)

	total := d.builder.Count()
	n := 0
	for q := range d.builder.Queries() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		n++
		if reporter != nil {
			reporter.ReportProgress(n, total, fmt.Sprintf("%s / %s", q.Keyword, q.Location))
		}

		d.logger.Info("running search", "keyword", q.Keyword, "location", q.Location, "query", n, "of", total)

		body, err := d.fetcher.Fetch(ctx, q.URL())
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.Failed++
			d.logger.Warn("search fetch failed", "keyword", q.Keyword, "location", q.Location, "error", err)
			continue
		}

		results, err := serp.Parse(body)
		if err != nil {
			summary.Failed++
			d.logger.Warn("search page unparseable", "keyword", q.Keyword, "location", q.Location, "error", err)
			continue
		}

		d.processResults(ctx, q, results, seen, &summary)
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
	}

	d.logger.Info("discovery run complete",
		"discovered", summary.Discovered,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (d *Discovery) processResults(ctx context.Context, q query.SearchQuery, results []serp.Result, seen map[string]bool, summary *DiscoverySummary) {
	fetched := 0
	for _, res := range results {
		if ctx.Err() != nil {
			return
		}
		if fetched >= d.maxDetailPages {
			d.logger.Debug("detail page cap reached", "cap", d.maxDetailPages, "keyword", q.Keyword)
			return
		}

		summary.Discovered++

		if seen[res.URL] {
			summary.Skipped++
			continue
		}
		seen[res.URL] = true

		if !serp.AllowedSite(res.URL, q.Sites) {
			summary.Skipped++
			d.logger.Debug("result outside included sites", "url", res.URL)
			continue
		}

		fetched++
		body, err := d.fetcher.Fetch(ctx, res.URL)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			summary.Failed++
			d.logger.Warn("detail fetch failed", "url", res.URL, "error", err)
			continue
		}

		job, err := extract.Extract(res.URL, body, time.Now().UTC())
		if err != nil {
			summary.Failed++
			d.logger.Warn("extraction failed", "url", res.URL, "error", err)
			continue
		}

		if !d.locations.Match(job.Location) {
			summary.Skipped++
			d.logger.Debug("location mismatch", "url", res.URL, "location", job.Location)
			continue
		}

		_, inserted, err := d.store.UpsertByURL(job)
		if err != nil {
			// The row was never written, so the next run retries it.
			summary.Failed++
			d.logger.Error("store upsert failed", "url", res.URL, "error", err)
			continue
		}
		if inserted {
			summary.Inserted++
			d.logger.Info("new job stored", "title", job.Title, "company", job.Company, "url", res.URL)
		} else {
			summary.Updated++
			d.logger.Debug("existing job refreshed", "url", res.URL)
		}
	}
}
