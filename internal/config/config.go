package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobradar.
type Config struct {
	Search       SearchConfig
	Scraper      ScraperConfig
	AI           AIConfig
	Notification NotificationConfig
	ResumePath   string
	DatabasePath string
	ListenAddr   string
}

// DateRange values accepted by search.date_range.
const (
	DatePastDay   = "past_day"
	DatePastWeek  = "past_week"
	DatePastMonth = "past_month"
	DateAny       = "any"
)

// Provider values accepted by ai.provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// SearchConfig drives the query builder. One search request is issued per
// (keyword, location) combination.
type SearchConfig struct {
	Keywords         []string `yaml:"keywords"`
	Locations        []string `yaml:"locations"`
	DateRange        string   `yaml:"date_range"`
	IncludedSites    []string `yaml:"included_sites"`
	MinSalary        int      `yaml:"min_salary"`
	MaxSalary        int      `yaml:"max_salary"`
	ExperienceLevels []string `yaml:"experience_levels"`
	ResultsPerSearch int      `yaml:"results_per_search"`
}

// ScraperConfig controls the proxy fetch layer.
type ScraperConfig struct {
	APIKey         string        // expanded from env var by Load
	BaseURL        string        // proxy endpoint, defaults to ScraperAPI
	RequestDelay   time.Duration // minimum gap between requests to the same domain
	MaxDetailPages int           // detail pages fetched per search query
}

// AIConfig selects and configures the scoring provider.
type AIConfig struct {
	Provider      string        // "openai" or "gemini"
	APIKey        string        // expanded from env var by Load
	Model         string        // provider model identifier
	BaseURL       string        // openai only; defaults to the public API
	Timeout       time.Duration // per-request timeout
	Concurrency   int           // parallel scoring requests
	MinMatchScore int           // threshold for high-match notification/highlighting
}

// NotificationConfig controls which notifier announces high-match jobs.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultScraperBaseURL = "https://api.scraperapi.com/"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
)

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings).
type rawConfig struct {
	Search       SearchConfig       `yaml:"search"`
	Scraper      rawScraperConfig   `yaml:"scraper"`
	AI           rawAIConfig        `yaml:"ai"`
	Notification NotificationConfig `yaml:"notification"`
	ResumePath   string             `yaml:"resume_path"`
	DatabasePath string             `yaml:"database_path"`
	ListenAddr   string             `yaml:"listen_addr"`
}

type rawScraperConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	RequestDelay   string `yaml:"request_delay"`
	MaxDetailPages int    `yaml:"max_detail_pages"`
}

type rawAIConfig struct {
	Provider      string `yaml:"provider"`
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	BaseURL       string `yaml:"base_url"`
	Timeout       string `yaml:"timeout"`
	Concurrency   int    `yaml:"concurrency"`
	MinMatchScore int    `yaml:"min_match_score"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file are expanded first so
// credentials can live outside the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	requestDelay := 2 * time.Second
	if raw.Scraper.RequestDelay != "" {
		requestDelay, err = time.ParseDuration(raw.Scraper.RequestDelay)
		if err != nil {
			return nil, fmt.Errorf("parse scraper.request_delay %q: %w", raw.Scraper.RequestDelay, err)
		}
	}

	aiTimeout := 60 * time.Second
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	cfg := &Config{
		Search:       raw.Search,
		Notification: raw.Notification,
		Scraper: ScraperConfig{
			APIKey:         raw.Scraper.APIKey,
			BaseURL:        raw.Scraper.BaseURL,
			RequestDelay:   requestDelay,
			MaxDetailPages: raw.Scraper.MaxDetailPages,
		},
		AI: AIConfig{
			Provider:      raw.AI.Provider,
			APIKey:        raw.AI.APIKey,
			Model:         raw.AI.Model,
			BaseURL:       raw.AI.BaseURL,
			Timeout:       aiTimeout,
			Concurrency:   raw.AI.Concurrency,
			MinMatchScore: raw.AI.MinMatchScore,
		},
		ResumePath:   raw.ResumePath,
		DatabasePath: raw.DatabasePath,
		ListenAddr:   raw.ListenAddr,
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Search.DateRange == "" {
		cfg.Search.DateRange = DatePastWeek
	}
	if cfg.Search.ResultsPerSearch <= 0 {
		cfg.Search.ResultsPerSearch = 20
	}
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = defaultScraperBaseURL
	}
	if cfg.Scraper.MaxDetailPages <= 0 {
		cfg.Scraper.MaxDetailPages = 20
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ProviderOpenAI
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.AI.Concurrency <= 0 {
		cfg.AI.Concurrency = 3
	}
	if cfg.AI.MinMatchScore <= 0 {
		cfg.AI.MinMatchScore = 70
	}
	if cfg.ResumePath == "" {
		cfg.ResumePath = "resume.txt"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "jobs.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8421"
	}
}

func validate(cfg *Config) error {
	if len(cfg.Search.Keywords) == 0 {
		return fmt.Errorf("search.keywords must not be empty")
	}
	if len(cfg.Search.Locations) == 0 {
		return fmt.Errorf("search.locations must not be empty")
	}

	switch cfg.Search.DateRange {
	case DatePastDay, DatePastWeek, DatePastMonth, DateAny:
	default:
		return fmt.Errorf("search.date_range must be one of past_day, past_week, past_month, any; got %q", cfg.Search.DateRange)
	}

	if cfg.Search.MinSalary > 0 && cfg.Search.MaxSalary > 0 && cfg.Search.MaxSalary < cfg.Search.MinSalary {
		return fmt.Errorf("search.max_salary (%d) is below search.min_salary (%d)", cfg.Search.MaxSalary, cfg.Search.MinSalary)
	}

	if cfg.Scraper.APIKey == "" {
		return fmt.Errorf("scraper.api_key is required (set SCRAPERAPI_KEY and reference it in the config)")
	}
	if cfg.Scraper.RequestDelay <= 0 {
		return fmt.Errorf("scraper.request_delay must be positive, got %v", cfg.Scraper.RequestDelay)
	}

	switch cfg.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("ai.provider must be \"openai\" or \"gemini\", got %q", cfg.AI.Provider)
	}
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required")
	}
	if cfg.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if cfg.AI.MinMatchScore > 100 {
		return fmt.Errorf("ai.min_match_score must be at most 100, got %d", cfg.AI.MinMatchScore)
	}

	if cfg.Notification.Type == "slack" && cfg.Notification.WebhookURL == "" {
		return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
	}

	return nil
}
