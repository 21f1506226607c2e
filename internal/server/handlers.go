package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kwhitfield/jobradar/internal/model"
)

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	id := s.tracker.Start("scrape", s.discover)
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id := s.tracker.Start("score", s.score)
	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.List())
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tracker.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	if !s.tracker.Cancel(r.PathValue("id")) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancellation requested"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobs, err := s.store.ListFiltered(filter)
	if err != nil {
		s.logger.Error("listing jobs", "error", err)
		http.Error(w, "listing jobs failed", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job, err := s.store.GetByID(id)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !model.ValidStatus(model.Status(body.Status)) {
		http.Error(w, fmt.Sprintf("invalid status %q", body.Status), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateStatus(id, model.Status(body.Status)); err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	job, err := s.store.GetByID(id)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateNotes(id, body.Notes); err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	job, err := s.store.GetByID(id)
	if err != nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.logger.Error("computing stats", "error", err)
		http.Error(w, "stats failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Export everything matching unless the caller narrowed it.
	if filter.Limit == 0 {
		filter.Limit = 10000
	}

	jobs, err := s.store.ListFiltered(filter)
	if err != nil {
		s.logger.Error("listing jobs for export", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="jobs.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "url", "title", "company", "location", "posted_date", "match_score", "status", "notes"})
	for _, j := range jobs {
		score := ""
		if j.MatchScore != nil {
			score = strconv.Itoa(*j.MatchScore)
		}
		cw.Write([]string{
			strconv.FormatInt(j.ID, 10),
			j.URL,
			j.Title,
			j.Company,
			j.Location,
			j.PostedDate,
			score,
			string(j.Status),
			j.Notes,
		})
	}
	cw.Flush()
}

func filterFromQuery(r *http.Request) (model.ListFilter, error) {
	var f model.ListFilter
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		if !model.ValidStatus(model.Status(status)) {
			return f, fmt.Errorf("invalid status %q", status)
		}
		f.Status = model.Status(status)
	}
	if raw := q.Get("min_score"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("invalid min_score %q", raw)
		}
		f.MinScore = &n
	}
	f.Company = q.Get("company")
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit %q", raw)
		}
		f.Limit = n
	}
	return f, nil
}

func jobID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid job id %q", r.PathValue("id"))
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
