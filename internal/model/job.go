package model

import (
	"context"
	"time"
)

// Status tracks where a job sits in the application funnel.
type Status string

const (
	StatusNew          Status = "new"
	StatusReviewed     Status = "reviewed"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusRejected     Status = "rejected"
)

// ValidStatus reports whether s is one of the recognized status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusReviewed, StatusApplied, StatusInterviewing, StatusRejected:
		return true
	}
	return false
}

// Job is a discovered posting as stored in the job table.
type Job struct {
	ID          int64     `json:"id"`          // store-assigned
	URL         string    `json:"url"`         // canonical source link; unique, used for dedup
	Title       string    `json:"title"`       // job title
	Company     string    `json:"company"`     // company name
	Location    string    `json:"location"`    // free-text location
	Description string    `json:"description"` // may be empty
	PostedDate  string    `json:"posted_date"` // raw posted-date string from the source, empty if absent
	ScrapedAt   time.Time `json:"scraped_at"`  // when discovery found it

	MatchScore     *int   `json:"match_score"`     // 0–100, nil until scored
	MatchReasoning string `json:"match_reasoning"` // free-text explanation, empty until scored

	Status Status `json:"status"` // defaults to StatusNew
	Notes  string `json:"notes"`  // user-owned

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scored reports whether the job has been through the scoring pipeline.
func (j Job) Scored() bool { return j.MatchScore != nil }

// ListFilter narrows ListFiltered results. Zero values mean "no constraint".
type ListFilter struct {
	Status   Status
	MinScore *int
	Company  string // substring match, case-insensitive
	Limit    int
}

// Stats is the aggregate view rendered by the stats command and API.
type Stats struct {
	Total     int            `json:"total"`
	ByStatus  map[Status]int `json:"by_status"`
	ByCompany map[string]int `json:"by_company"`
	AvgScore  *float64       `json:"avg_score"` // nil when nothing is scored yet
	Unscored  int            `json:"unscored"`
}

// JobStore is the persistence contract shared by both pipelines and the
// presentation layers. Discovery only calls UpsertByURL; scoring only calls
// ListUnscored and UpdateScore.
type JobStore interface {
	UpsertByURL(job Job) (id int64, inserted bool, err error)
	GetByID(id int64) (Job, error)
	ListUnscored() ([]Job, error)
	ListFiltered(f ListFilter) ([]Job, error)
	UpdateScore(id int64, score int, reasoning string) error
	UpdateStatus(id int64, status Status) error
	UpdateNotes(id int64, notes string) error
	Stats() (Stats, error)
}

// Fetcher retrieves the raw body of a URL. The proxy client, retry decorator,
// and rate limiter all speak this interface.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Notifier announces high-match jobs after a scoring run.
type Notifier interface {
	Notify(jobs []Job) error
}

// ProgressReporter receives pipeline checkpoints: one call per query processed
// during discovery, one per job during scoring.
type ProgressReporter interface {
	ReportProgress(current, total int, currentItem string)
}
