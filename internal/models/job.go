package models

import "time"

// JobStatus итог последнего запуска фоновой задачи.
type JobStatus struct {
	Family     string    `json:"family"`
	RunID      string    `json:"run_id"`
	Outcome    string    `json:"outcome"`
	Attempt    int       `json:"attempt"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
