// Package publisher defines the run-event publishing abstraction. Downstream
// consumers (a website rebuild job, alerting) subscribe to run summaries.
package publisher

import (
	"context"
	"time"
)

// RunEvent is published after each collection run.
type RunEvent struct {
	RunID        string    `json:"run_id"`
	Keyword      string    `json:"keyword"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	YearsUpdated []int     `json:"years_updated"`
	YearsFailed  []int     `json:"years_failed"`
	DatasetURI   string    `json:"dataset_uri,omitempty"`
	ChartURI     string    `json:"chart_uri,omitempty"`
}

// Publisher pushes run events to a topic.
type Publisher interface {
	Publish(ctx context.Context, event RunEvent) (string, error)
}
