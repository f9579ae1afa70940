package model

import "time"

type RunState string

const (
	StatePending   RunState = "PENDING"
	StateRunning   RunState = "RUNNING"
	StateSucceeded RunState = "SUCCEEDED"
	StateFailed    RunState = "FAILED"
	StateTimedOut  RunState = "TIMED_OUT"
	StateErrored   RunState = "ERRORED"
)

// RunResult is the outcome record of executing a single job once. It is
// created by the runner and immutable afterwards.
type RunResult struct {
	Name        string            `json:"name"`
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
	StartedAt   time.Time         `json:"last_run"`
	Duration    float64           `json:"duration"`
	Success     bool              `json:"success"`
	ReturnCode  int               `json:"return_code"`
	State       RunState          `json:"state,omitempty"`
	Stats       map[string]string `json:"stats"`
	Stdout      string            `json:"stdout"`
	Stderr      string            `json:"stderr"`
	Error       string            `json:"error,omitempty"`
}

// Summary counts the outcome of one batch over its enabled jobs.
type Summary struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// StatusDocument is the persisted aggregate: the latest RunResult per job
// plus run counters. The dashboard reads it; only the batch writes it.
type StatusDocument struct {
	Jobs        map[string]RunResult `json:"jobs"`
	LastRun     *time.Time           `json:"last_run"`
	TotalRuns   int                  `json:"total_runs"`
	LastSummary *Summary             `json:"last_summary,omitempty"`
}

// NewStatusDocument is the documented never-run default.
func NewStatusDocument() *StatusDocument {
	return &StatusDocument{Jobs: make(map[string]RunResult)}
}
