// Package task tracks background pipeline runs: each run gets an id, a state,
// and progress counters that a caller can poll while the run executes.
package task

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a background run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is a point-in-time snapshot of one background run.
type Task struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	CurrentItem string     `json:"current_item,omitempty"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunFunc is the body of a background run. It reports progress through
// reporter and returns a completion message or an error. The context is
// cancelled when the task is cancelled or the tracker shuts down.
type RunFunc func(ctx context.Context, reporter *Reporter) (string, error)

type record struct {
	task   Task
	cancel context.CancelFunc
}

// Tracker is an in-memory registry of background runs. Task records live for
// the process lifetime; the job data itself is in the store, so losing
// progress history on restart is acceptable.
type Tracker struct {
	mu     sync.Mutex
	tasks  map[string]*record
	logger *slog.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		tasks:  make(map[string]*record),
		logger: logger,
	}
}

// Start registers a new run of the given kind and launches fn in a goroutine.
// It returns the task id immediately; callers poll Get for progress.
func (t *Tracker) Start(kind string, fn RunFunc) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	t.tasks[id] = &record{
		task: Task{
			ID:        id,
			Kind:      kind,
			Status:    StatusRunning,
			StartedAt: time.Now().UTC(),
		},
		cancel: cancel,
	}
	t.mu.Unlock()

	t.logger.Info("task started", "task_id", id, "kind", kind)

	go func() {
		defer cancel()
		message, err := fn(ctx, &Reporter{tracker: t, id: id})
		t.finish(id, message, err)
	}()

	return id
}

// Get returns a snapshot of the task, or false if the id is unknown.
func (t *Tracker) Get(id string) (Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[id]
	if !ok {
		return Task{}, false
	}
	return rec.task, true
}

// List returns snapshots of all tasks, newest first.
func (t *Tracker) List() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	tasks := make([]Task, 0, len(t.tasks))
	for _, rec := range t.tasks {
		tasks = append(tasks, rec.task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].StartedAt.After(tasks[j].StartedAt)
	})
	return tasks
}

// Cancel requests cancellation of a running task. The task transitions to
// failed when its run function observes the cancelled context and returns.
func (t *Tracker) Cancel(id string) bool {
	t.mu.Lock()
	rec, ok := t.tasks[id]
	t.mu.Unlock()
	if !ok {
		return false
	}
	rec.cancel()
	t.logger.Info("task cancellation requested", "task_id", id)
	return true
}

func (t *Tracker) finish(id, message string, err error) {
	now := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[id]
	if !ok {
		return
	}
	rec.task.CompletedAt = &now
	if err != nil {
		rec.task.Status = StatusFailed
		rec.task.Error = err.Error()
		t.logger.Error("task failed", "task_id", id, "kind", rec.task.Kind, "error", err)
		return
	}
	rec.task.Status = StatusCompleted
	rec.task.Message = message
	t.logger.Info("task completed", "task_id", id, "kind", rec.task.Kind, "message", message)
}

// Reporter updates one task's progress counters. It is handed to the run
// function and is safe for concurrent use.
type Reporter struct {
	tracker *Tracker
	id      string
}

// ReportProgress records the run's position and the item being processed.
func (r *Reporter) ReportProgress(current, total int, currentItem string) {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	rec, ok := r.tracker.tasks[r.id]
	if !ok {
		return
	}
	rec.task.Progress = current
	rec.task.Total = total
	rec.task.CurrentItem = currentItem
}
