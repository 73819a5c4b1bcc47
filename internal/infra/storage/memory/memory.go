package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/newsdigest/internal/core/domain"
	"github.com/vietddude/newsdigest/internal/infra/storage"
)

// MemoryStorage backs the repositories when no database is configured.
type MemoryStorage struct {
	articles map[string]*domain.Article // keyed by URL
	runs     []*domain.JobRun
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		articles: make(map[string]*domain.Article),
	}
}

// -----------------------------------------------------------------------------
// Article Repository
// -----------------------------------------------------------------------------

type ArticleRepo struct {
	store *MemoryStorage
}

func NewArticleRepo(store *MemoryStorage) *ArticleRepo {
	return &ArticleRepo{store: store}
}

func (r *ArticleRepo) SaveBatch(ctx context.Context, articles []*domain.Article) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range articles {
		r.store.articles[a.URL] = a
	}
	return nil
}

func (r *ArticleRepo) GetByDate(
	ctx context.Context,
	edition domain.Edition,
	date string,
) ([]*domain.Article, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Article
	for _, a := range r.store.articles {
		if a.Edition == edition && a.CreatedAt.Format("2006-01-02") == date {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

func (r *ArticleRepo) CountByDate(ctx context.Context, date string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, a := range r.store.articles {
		if a.CreatedAt.Format("2006-01-02") == date {
			count++
		}
	}
	return count, nil
}

func (r *ArticleRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for url, a := range r.store.articles {
		if a.CreatedAt.Before(threshold) {
			delete(r.store.articles, url)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// JobRun Repository
// -----------------------------------------------------------------------------

type JobRunRepo struct {
	store *MemoryStorage
}

func NewJobRunRepo(store *MemoryStorage) *JobRunRepo {
	return &JobRunRepo{store: store}
}

func (r *JobRunRepo) Save(ctx context.Context, run *domain.JobRun) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.runs = append(r.store.runs, run)
	return nil
}

func (r *JobRunRepo) GetLatest(ctx context.Context, jobName string) (*domain.JobRun, error) {
	runs, err := r.GetRecent(ctx, jobName, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, storage.ErrNotFound
	}
	return runs[0], nil
}

func (r *JobRunRepo) GetRecent(
	ctx context.Context,
	jobName string,
	limit int,
) ([]*domain.JobRun, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.JobRun
	for _, run := range r.store.runs {
		if run.JobName == jobName {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *JobRunRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.runs[:0]
	for _, run := range r.store.runs {
		if !run.StartedAt.Before(threshold) {
			kept = append(kept, run)
		}
	}
	r.store.runs = kept
	return nil
}
