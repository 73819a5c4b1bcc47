package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/newsdigest/internal/core/domain"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("record not found")
)

// ArticleRepository handles article storage operations
type ArticleRepository interface {
	// SaveBatch saves multiple articles
	SaveBatch(ctx context.Context, articles []*domain.Article) error

	// GetByDate retrieves all articles of an edition created on a date (YYYY-MM-DD)
	GetByDate(ctx context.Context, edition domain.Edition, date string) ([]*domain.Article, error)

	// CountByDate counts articles created on a date
	CountByDate(ctx context.Context, date string) (int, error)

	// DeleteOlderThan deletes articles created before the threshold
	DeleteOlderThan(ctx context.Context, threshold time.Time) error
}

// JobRunRepository handles job run metadata operations
type JobRunRepository interface {
	// Save saves a job run record
	Save(ctx context.Context, run *domain.JobRun) error

	// GetLatest retrieves the most recent run of a job
	GetLatest(ctx context.Context, jobName string) (*domain.JobRun, error)

	// GetRecent retrieves the most recent runs of a job, newest first
	GetRecent(ctx context.Context, jobName string, limit int) ([]*domain.JobRun, error)

	// DeleteOlderThan deletes runs started before the threshold
	DeleteOlderThan(ctx context.Context, threshold time.Time) error
}
