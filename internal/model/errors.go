package model

import (
	"fmt"
	"time"
)

// FetchError wraps a failed outbound request so retry logic can inspect the
// status code and Retry-After hint. A zero StatusCode means the request never
// got a response (network/DNS failure).
type FetchError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError marks a malformed result or detail page. The affected entry is
// dropped and the run continues.
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

// ScoreParseError means an AI response contained no usable score. The job is
// left unscored so the next scoring run retries it; it is never defaulted to 0
// because 0 is a real score.
type ScoreParseError struct {
	Response string
}

func (e *ScoreParseError) Error() string {
	return "no numeric score found in model response"
}
