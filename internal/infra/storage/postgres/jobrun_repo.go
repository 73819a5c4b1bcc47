package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/newsdigest/internal/core/domain"
	"github.com/vietddude/newsdigest/internal/infra/storage"
)

// JobRunRepo implements storage.JobRunRepository using PostgreSQL.
type JobRunRepo struct {
	db *DB
}

// NewJobRunRepo creates a new PostgreSQL job run repository.
func NewJobRunRepo(db *DB) *JobRunRepo {
	return &JobRunRepo{db: db}
}

// Save saves a job run record.
func (r *JobRunRepo) Save(ctx context.Context, run *domain.JobRun) error {
	query := `
		INSERT INTO job_runs (id, job_name, date, success, partial_success, attempts, duration_ms,
			world_articles, japan_articles, error_msg, started_at, finished_at)
		VALUES (:id, :job_name, :date, :success, :partial_success, :attempts, :duration_ms,
			:world_articles, :japan_articles, :error_msg, :started_at, :finished_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to save job run: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent run of a job.
func (r *JobRunRepo) GetLatest(ctx context.Context, jobName string) (*domain.JobRun, error) {
	query := `
		SELECT id, job_name, date, success, partial_success, attempts, duration_ms,
			world_articles, japan_articles, error_msg, started_at, finished_at
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run domain.JobRun
	err := r.db.GetContext(ctx, &run, query, jobName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest job run: %w", err)
	}
	return &run, nil
}

// GetRecent retrieves the most recent runs of a job, newest first.
func (r *JobRunRepo) GetRecent(
	ctx context.Context,
	jobName string,
	limit int,
) ([]*domain.JobRun, error) {
	query := `
		SELECT id, job_name, date, success, partial_success, attempts, duration_ms,
			world_articles, japan_articles, error_msg, started_at, finished_at
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	var runs []*domain.JobRun
	if err := r.db.SelectContext(ctx, &runs, query, jobName, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent job runs: %w", err)
	}
	return runs, nil
}

// DeleteOlderThan deletes runs started before the threshold.
func (r *JobRunRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) error {
	query := `
		DELETE FROM job_runs
		WHERE started_at < $1
	`
	if _, err := r.db.ExecContext(ctx, query, threshold); err != nil {
		return fmt.Errorf("failed to delete old job runs: %w", err)
	}
	return nil
}
