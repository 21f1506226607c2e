package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kwhitfield/jobradar/internal/model"
	"github.com/kwhitfield/jobradar/internal/ratelimit"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure ProxyClient implements model.Fetcher.
var _ model.Fetcher = (*ProxyClient)(nil)

// ProxyClient fetches pages through a ScraperAPI-style render proxy. It is the
// sole network egress point for discovery, which makes it the natural place to
// enforce the shared per-domain throttle.
type ProxyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.DomainRateLimiter
	logger     *slog.Logger
}

// NewProxyClient creates a fetcher that routes all requests through the proxy
// at baseURL. The limiter must be shared by every component that fetches.
func NewProxyClient(baseURL, apiKey string, httpClient *http.Client, limiter *ratelimit.DomainRateLimiter, logger *slog.Logger) *ProxyClient {
	return &ProxyClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// Fetch retrieves the raw body of target through the proxy. The throttle is
// keyed by the target's domain, not the proxy's, so distinct upstream sites
// do not block each other while the same site is never hammered.
func (c *ProxyClient) Fetch(ctx context.Context, target string) ([]byte, error) {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return nil, &model.ParseError{URL: target, Reason: "not a fetchable URL"}
	}

	if err := c.limiter.Wait(ctx, parsed.Host); err != nil {
		return nil, err
	}

	v := url.Values{}
	v.Set("api_key", c.apiKey)
	v.Set("url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build proxy request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.FetchError{URL: target, Err: err}
	}

	c.logger.Debug("fetched page",
		"url", target,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	return body, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
