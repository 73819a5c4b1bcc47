package domain

import "time"

// JobRun is the persisted metadata record for one digest job execution.
type JobRun struct {
	ID             string    `json:"id" db:"id"`
	JobName        string    `json:"job_name" db:"job_name"`
	Date           string    `json:"date" db:"date"`
	Success        bool      `json:"success" db:"success"`
	PartialSuccess bool      `json:"partial_success" db:"partial_success"`
	Attempts       int       `json:"attempts" db:"attempts"`
	DurationMs     int64     `json:"duration_ms" db:"duration_ms"`
	WorldArticles  int       `json:"world_articles" db:"world_articles"`
	JapanArticles  int       `json:"japan_articles" db:"japan_articles"`
	Error          string    `json:"error_msg" db:"error_msg"`
	StartedAt      time.Time `json:"started_at" db:"started_at"`
	FinishedAt     time.Time `json:"finished_at" db:"finished_at"`
}
