package notifier

import (
	"log/slog"

	"github.com/kwhitfield/jobradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes high-match jobs to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with company, title, location, score, and URL.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{"company", j.Company, "title", j.Title, "location", j.Location, "url", j.URL}
		if j.MatchScore != nil {
			args = append(args, "score", *j.MatchScore)
		}
		n.logger.Info("high match", args...)
	}
	return nil
}
