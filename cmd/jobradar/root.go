package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwhitfield/jobradar/internal/ai"
	"github.com/kwhitfield/jobradar/internal/config"
	"github.com/kwhitfield/jobradar/internal/fetch"
	"github.com/kwhitfield/jobradar/internal/filter"
	"github.com/kwhitfield/jobradar/internal/model"
	"github.com/kwhitfield/jobradar/internal/notifier"
	"github.com/kwhitfield/jobradar/internal/pipeline"
	"github.com/kwhitfield/jobradar/internal/query"
	"github.com/kwhitfield/jobradar/internal/ratelimit"
	"github.com/kwhitfield/jobradar/internal/resume"
	"github.com/kwhitfield/jobradar/internal/retry"
	"github.com/kwhitfield/jobradar/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobradar",
	Short: "Job radar — find and score postings that match your resume",
	Long:  "JobRadar discovers job postings through web search, filters them by location,\nand scores each one against your resume with an LLM.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func openStore(cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", "path", cfg.DatabasePath)
	return st, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildFetcher assembles the discovery egress path: proxy client behind the
// shared per-domain throttle, wrapped with retries.
func buildFetcher(cfg *config.Config, logger *slog.Logger) model.Fetcher {
	httpClient := &http.Client{Timeout: 90 * time.Second}
	limiter := ratelimit.NewDomainRateLimiter(cfg.Scraper.RequestDelay)
	client := fetch.NewProxyClient(cfg.Scraper.BaseURL, cfg.Scraper.APIKey, httpClient, limiter, logger)
	return retry.NewFetcher(client, 2, 5*time.Second, logger)
}

func buildDiscovery(cfg *config.Config, st model.JobStore, logger *slog.Logger) *pipeline.Discovery {
	return pipeline.NewDiscovery(
		query.NewBuilder(cfg.Search),
		buildFetcher(cfg, logger),
		filter.NewLocationFilter(cfg.Search.Locations),
		st,
		cfg.Scraper.MaxDetailPages,
		logger,
	)
}

func buildScoring(ctx context.Context, cfg *config.Config, st model.JobStore, logger *slog.Logger) (*pipeline.Scoring, error) {
	resumeText, err := resume.Load(cfg.ResumePath)
	if err != nil {
		return nil, err
	}

	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	return pipeline.NewScoring(
		st,
		ai.NewScorer(provider, resumeText, logger),
		setupNotifier(cfg, httpClient, logger),
		cfg.AI.Concurrency,
		cfg.AI.MinMatchScore,
		logger,
	), nil
}

func buildAnalyzer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ai.Analyzer, error) {
	resumeText, err := resume.Load(cfg.ResumePath)
	if err != nil {
		return nil, err
	}
	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}
	return ai.NewAnalyzer(provider, resumeText), nil
}
