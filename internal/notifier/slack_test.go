package notifier

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kwhitfield/jobradar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(n int) *int { return &n }

func sampleJob(title, company string) model.Job {
	return model.Job{
		ID:             123,
		Company:        company,
		Title:          title,
		Location:       "Remote - US",
		URL:            "https://example.com/apply",
		PostedDate:     "2026-08-18",
		MatchScore:     intPtr(88),
		MatchReasoning: "Strong overlap in skills and clearance.",
	}
}

func TestSlackNotifier_EmptyJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())

	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.Job{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleJob(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	job := sampleJob("Enterprise Architect", "Acme Federal")

	if err := n.Notify([]model.Job{job}); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	header := payload.Blocks[0]
	if header.Text.Text != "🎯 Acme Federal: Enterprise Architect" {
		t.Errorf("header text = %q, want company: title", header.Text.Text)
	}

	scoreField := payload.Blocks[1].Fields[0]
	if scoreField.Text != "*Match score:*\n88/100" {
		t.Errorf("score field = %q", scoreField.Text)
	}

	reasoning := payload.Blocks[3]
	if reasoning.Text == nil || reasoning.Text.Text != "Strong overlap in skills and clearance." {
		t.Errorf("reasoning block = %+v", reasoning)
	}

	actionURL := payload.Blocks[4].Elements[0].URL
	if actionURL != "https://example.com/apply" {
		t.Errorf("action URL = %q", actionURL)
	}
}

func TestSlackNotifier_PayloadWithoutReasoning(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	job := model.Job{
		ID:       456,
		Company:  "TestCo",
		Title:    "SRE",
		Location: "NYC",
		URL:      "https://example.com/sre",
		// MatchScore nil, no reasoning, no posted date.
	}

	if err := n.Notify([]model.Job{job}); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(payload.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" {
		t.Errorf("block[0] type = %q, want header", payload.Blocks[0].Type)
	}
	if payload.Blocks[1].Fields[0].Text != "*Match score:*\nUnscored" {
		t.Errorf("score field = %q", payload.Blocks[1].Fields[0].Text)
	}
	if payload.Blocks[2].Fields[1].Text != "*Posted:*\nNot listed" {
		t.Errorf("posted field = %q", payload.Blocks[2].Fields[1].Text)
	}
	if payload.Blocks[3].Type != "actions" || payload.Blocks[3].Elements[0].Style != "primary" {
		t.Errorf("block[3] not a primary-button actions block")
	}
	if payload.Blocks[4].Type != "divider" {
		t.Errorf("block[4] type = %q, want divider", payload.Blocks[4].Type)
	}
}

func TestSlackNotifier_MultipleJobs(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	jobs := []model.Job{
		sampleJob("Engineer 1", "A"),
		sampleJob("Engineer 2", "B"),
		sampleJob("Engineer 3", "C"),
	}

	if err := n.Notify(jobs); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 3 {
		t.Errorf("expected 3 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	jobs := []model.Job{
		sampleJob("A", "X"),
		sampleJob("B", "Y"),
	}

	if err := n.Notify(jobs); err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	jobs := []model.Job{
		sampleJob("Fails", "A"),
		sampleJob("Succeeds", "B"),
	}

	if err := n.Notify(jobs); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify([]model.Job{sampleJob("Rate Limited Job", "Test")}); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}
