package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kwhitfield/jobradar/internal/model"
)

// Ensure SQLiteStore implements model.JobStore.
var _ model.JobStore = (*SQLiteStore)(nil)

// SQLiteStore persists jobs in a SQLite database. One row per canonical URL,
// enforced by a unique index; the upsert path never touches user- or
// scorer-owned fields.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS jobs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	url             TEXT NOT NULL UNIQUE,
	title           TEXT NOT NULL,
	company         TEXT NOT NULL,
	location        TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	posted_date     TEXT NOT NULL DEFAULT '',
	scraped_at      DATETIME NOT NULL,
	match_score     INTEGER,
	match_reasoning TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'new',
	notes           TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_score   ON jobs(match_score DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_status  ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(company);`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the jobs table exists. WAL mode keeps concurrent readers (the API poller)
// seeing consistent row snapshots while a pipeline writes.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// UpsertByURL inserts the job, or refreshes the descriptive fields of the
// existing row with the same URL. Status, notes, match score, and reasoning
// are never overwritten here: a re-scrape must not clobber user work or an
// earlier scoring run. The whole operation is one transaction so a cancelled
// run never leaves a partially written row.
func (s *SQLiteStore) UpsertByURL(job model.Job) (int64, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, false, fmt.Errorf("upsert %s: begin: %w", job.URL, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var existingID int64
	err = tx.QueryRow("SELECT id FROM jobs WHERE url = ?", job.URL).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		status := job.Status
		if status == "" {
			status = model.StatusNew
		}
		res, err := tx.Exec(`INSERT INTO jobs
			(url, title, company, location, description, posted_date, scraped_at, status, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.URL, job.Title, job.Company, job.Location, job.Description,
			job.PostedDate, job.ScrapedAt.UTC(), string(status), job.Notes, now, now,
		)
		if err != nil {
			return 0, false, fmt.Errorf("upsert %s: insert: %w", job.URL, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("upsert %s: last insert id: %w", job.URL, err)
		}
		if err := tx.Commit(); err != nil {
			return 0, false, fmt.Errorf("upsert %s: commit: %w", job.URL, err)
		}
		return id, true, nil

	case err != nil:
		return 0, false, fmt.Errorf("upsert %s: lookup: %w", job.URL, err)
	}

	_, err = tx.Exec(`UPDATE jobs SET
		title = ?, company = ?, location = ?, description = ?, posted_date = ?, scraped_at = ?, updated_at = ?
		WHERE id = ?`,
		job.Title, job.Company, job.Location, job.Description,
		job.PostedDate, job.ScrapedAt.UTC(), now, existingID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("upsert %s: update: %w", job.URL, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("upsert %s: commit: %w", job.URL, err)
	}
	return existingID, false, nil
}

// GetByID returns one job, or an error when no row exists.
func (s *SQLiteStore) GetByID(id int64) (model.Job, error) {
	row := s.db.QueryRow(selectColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return model.Job{}, fmt.Errorf("job %d not found", id)
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("get job %d: %w", id, err)
	}
	return job, nil
}

// ListUnscored returns jobs not yet touched by the scoring pipeline, oldest
// first so retries keep their original order.
func (s *SQLiteStore) ListUnscored() ([]model.Job, error) {
	rows, err := s.db.Query(selectColumns + " FROM jobs WHERE match_score IS NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list unscored: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ListFiltered returns jobs matching the filter, best score first with
// unscored jobs last.
func (s *SQLiteStore) ListFiltered(f model.ListFilter) ([]model.Job, error) {
	query := selectColumns + " FROM jobs WHERE 1=1"
	var args []any

	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, string(f.Status))
	}
	if f.MinScore != nil {
		query += " AND match_score >= ?"
		args = append(args, *f.MinScore)
	}
	if f.Company != "" {
		query += " AND company LIKE ? COLLATE NOCASE"
		args = append(args, "%"+f.Company+"%")
	}

	query += " ORDER BY match_score IS NULL, match_score DESC, id DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

// UpdateScore records the scoring result. Re-scoring overwrites the previous
// value; scoring is idempotent for a fixed response.
func (s *SQLiteStore) UpdateScore(id int64, score int, reasoning string) error {
	res, err := s.db.Exec(
		"UPDATE jobs SET match_score = ?, match_reasoning = ?, updated_at = ? WHERE id = ?",
		score, reasoning, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update score for job %d: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateStatus moves a job through the application funnel.
func (s *SQLiteStore) UpdateStatus(id int64, status model.Status) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := s.db.Exec(
		"UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update status for job %d: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateNotes replaces the user-owned notes text.
func (s *SQLiteStore) UpdateNotes(id int64, notes string) error {
	res, err := s.db.Exec(
		"UPDATE jobs SET notes = ?, updated_at = ? WHERE id = ?",
		notes, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update notes for job %d: %w", id, err)
	}
	return requireRow(res, id)
}

// Stats aggregates the table for the stats command and API.
func (s *SQLiteStore) Stats() (model.Stats, error) {
	stats := model.Stats{
		ByStatus:  make(map[model.Status]int),
		ByCompany: make(map[string]int),
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM jobs").Scan(&stats.Total); err != nil {
		return model.Stats{}, fmt.Errorf("stats total: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM jobs WHERE match_score IS NULL").Scan(&stats.Unscored); err != nil {
		return model.Stats{}, fmt.Errorf("stats unscored: %w", err)
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRow("SELECT AVG(match_score) FROM jobs WHERE match_score IS NOT NULL").Scan(&avg); err != nil {
		return model.Stats{}, fmt.Errorf("stats avg score: %w", err)
	}
	if avg.Valid {
		stats.AvgScore = &avg.Float64
	}

	rows, err := s.db.Query("SELECT status, COUNT(*) FROM jobs GROUP BY status")
	if err != nil {
		return model.Stats{}, fmt.Errorf("stats by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return model.Stats{}, fmt.Errorf("stats by status: %w", err)
		}
		stats.ByStatus[model.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return model.Stats{}, fmt.Errorf("stats by status: %w", err)
	}

	companyRows, err := s.db.Query("SELECT company, COUNT(*) FROM jobs GROUP BY company")
	if err != nil {
		return model.Stats{}, fmt.Errorf("stats by company: %w", err)
	}
	defer companyRows.Close()
	for companyRows.Next() {
		var company string
		var count int
		if err := companyRows.Scan(&company, &count); err != nil {
			return model.Stats{}, fmt.Errorf("stats by company: %w", err)
		}
		stats.ByCompany[company] = count
	}
	if err := companyRows.Err(); err != nil {
		return model.Stats{}, fmt.Errorf("stats by company: %w", err)
	}

	return stats, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, url, title, company, location, description,
	posted_date, scraped_at, match_score, match_reasoning, status, notes,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (model.Job, error) {
	var (
		job    model.Job
		score  sql.NullInt64
		status string
	)
	err := row.Scan(
		&job.ID, &job.URL, &job.Title, &job.Company, &job.Location,
		&job.Description, &job.PostedDate, &job.ScrapedAt, &score,
		&job.MatchReasoning, &status, &job.Notes, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return model.Job{}, err
	}
	if score.Valid {
		v := int(score.Int64)
		job.MatchScore = &v
	}
	job.Status = model.Status(strings.TrimSpace(status))
	return job, nil
}

func collectJobs(rows *sql.Rows) ([]model.Job, error) {
	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job rows: %w", err)
	}
	return jobs, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for job %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("job %d not found", id)
	}
	return nil
}
