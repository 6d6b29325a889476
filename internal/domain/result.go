package domain

import "time"

// Run is one complete pass over the configured targets. Results keep the
// order of the target list.
type Run struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Results    []CheckResult `json:"results"`
}
