package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kwhitfield/jobradar/internal/model"
	"github.com/kwhitfield/jobradar/internal/store"
	"github.com/kwhitfield/jobradar/internal/task"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore, *task.Tracker) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tracker := task.NewTracker(testLogger())

	discover := func(ctx context.Context, rep *task.Reporter) (string, error) {
		rep.ReportProgress(1, 1, "done")
		return "discovery finished", nil
	}
	score := func(ctx context.Context, rep *task.Reporter) (string, error) {
		return "scoring finished", nil
	}

	srv := httptest.NewServer(NewServer(st, tracker, discover, score, testLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv, st, tracker
}

func seedJob(t *testing.T, st *store.SQLiteStore, url string) int64 {
	t.Helper()
	id, _, err := st.UpsertByURL(model.Job{
		URL:       url,
		Title:     "Enterprise Architect",
		Company:   "Acme Federal",
		Location:  "Arlington, VA",
		ScrapedAt: time.Now().UTC(),
		Status:    model.StatusNew,
	})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return id
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestScrapeEndpointStartsTask(t *testing.T) {
	srv, _, tracker := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/scrape", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	id := body["task_id"]
	if id == "" {
		t.Fatal("no task_id in response")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snapshot, ok := tracker.Get(id)
		if ok && snapshot.Status == task.StatusCompleted {
			if snapshot.Message != "discovery finished" {
				t.Errorf("message = %q", snapshot.Message)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("task never completed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTaskEndpoints(t *testing.T) {
	srv, _, tracker := newTestServer(t)

	release := make(chan struct{})
	id := tracker.Start("scrape", func(ctx context.Context, rep *task.Reporter) (string, error) {
		rep.ReportProgress(2, 5, "query 2")
		<-release
		return "ok", nil
	})
	defer close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if snapshot, _ := tracker.Get(id); snapshot.Progress == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("progress never reported")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get(srv.URL + "/api/tasks/" + id)
	if err != nil {
		t.Fatal(err)
	}
	got := decode[task.Task](t, resp)
	if got.Status != task.StatusRunning || got.Progress != 2 || got.Total != 5 {
		t.Errorf("task = %+v", got)
	}

	resp, err = http.Get(srv.URL + "/api/tasks")
	if err != nil {
		t.Fatal(err)
	}
	list := decode[[]task.Task](t, resp)
	if len(list) != 1 || list[0].ID != id {
		t.Errorf("task list = %+v", list)
	}

	resp, err = http.Get(srv.URL + "/api/tasks/unknown")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown task status = %d, want 404", resp.StatusCode)
	}
}

func TestJobEndpoints(t *testing.T) {
	srv, st, _ := newTestServer(t)
	id := seedJob(t, st, "https://jobs.acme.com/1")
	seedJob(t, st, "https://jobs.acme.com/2")

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/jobs")
		if err != nil {
			t.Fatal(err)
		}
		jobs := decode[[]model.Job](t, resp)
		if len(jobs) != 2 {
			t.Errorf("got %d jobs, want 2", len(jobs))
		}
	})

	t.Run("list with bad status", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/jobs?status=archived")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/jobs/" + itoa(id))
		if err != nil {
			t.Fatal(err)
		}
		job := decode[model.Job](t, resp)
		if job.Company != "Acme Federal" {
			t.Errorf("company = %q", job.Company)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/jobs/9999")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("update status", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut,
			srv.URL+"/api/jobs/"+itoa(id)+"/status",
			bytes.NewReader([]byte(`{"status":"applied"}`)))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		job := decode[model.Job](t, resp)
		if job.Status != model.StatusApplied {
			t.Errorf("status = %q, want applied", job.Status)
		}
	})

	t.Run("update status invalid", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut,
			srv.URL+"/api/jobs/"+itoa(id)+"/status",
			bytes.NewReader([]byte(`{"status":"archived"}`)))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("update notes", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut,
			srv.URL+"/api/jobs/"+itoa(id)+"/notes",
			bytes.NewReader([]byte(`{"notes":"phone screen Friday"}`)))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		job := decode[model.Job](t, resp)
		if job.Notes != "phone screen Friday" {
			t.Errorf("notes = %q", job.Notes)
		}
	})
}

func TestStatsEndpoint(t *testing.T) {
	srv, st, _ := newTestServer(t)
	seedJob(t, st, "https://jobs.acme.com/1")

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	stats := decode[model.Stats](t, resp)
	if stats.Total != 1 || stats.Unscored != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestExportCSV(t *testing.T) {
	srv, st, _ := newTestServer(t)
	id := seedJob(t, st, "https://jobs.acme.com/1")
	if err := st.UpdateScore(id, 85, "good fit"); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/api/export.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,url,title") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "85") || !strings.Contains(lines[1], "Acme Federal") {
		t.Errorf("row = %q", lines[1])
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
