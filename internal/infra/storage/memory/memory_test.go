package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/newsdigest/internal/core/domain"
	"github.com/vietddude/newsdigest/internal/infra/storage"
)

func article(url string, edition domain.Edition, createdAt time.Time) *domain.Article {
	return &domain.Article{
		ID:          url,
		Edition:     edition,
		Title:       "title",
		URL:         url,
		CreatedAt:   createdAt,
		PublishedAt: createdAt,
	}
}

func TestArticleRepo_SaveBatchUpsertsByURL(t *testing.T) {
	store := NewMemoryStorage()
	repo := NewArticleRepo(store)
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveBatch(ctx, []*domain.Article{
		article("https://example.com/1", domain.EditionWorld, now),
		article("https://example.com/2", domain.EditionWorld, now),
	}))
	// Same URL again must not duplicate.
	require.NoError(t, repo.SaveBatch(ctx, []*domain.Article{
		article("https://example.com/1", domain.EditionWorld, now),
	}))

	count, err := repo.CountByDate(ctx, "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestArticleRepo_GetByDate(t *testing.T) {
	store := NewMemoryStorage()
	repo := NewArticleRepo(store)
	ctx := context.Background()
	day := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveBatch(ctx, []*domain.Article{
		article("https://example.com/old", domain.EditionWorld, day.Add(-24*time.Hour)),
		article("https://example.com/w1", domain.EditionWorld, day),
		article("https://example.com/w2", domain.EditionWorld, day.Add(time.Hour)),
		article("https://example.com/j1", domain.EditionJapan, day),
	}))

	world, err := repo.GetByDate(ctx, domain.EditionWorld, "2026-08-29")
	require.NoError(t, err)
	require.Len(t, world, 2)
	// Newest first.
	assert.Equal(t, "https://example.com/w2", world[0].URL)
	assert.Equal(t, "https://example.com/w1", world[1].URL)
}

func TestArticleRepo_DeleteOlderThan(t *testing.T) {
	store := NewMemoryStorage()
	repo := NewArticleRepo(store)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.SaveBatch(ctx, []*domain.Article{
		article("https://example.com/old", domain.EditionWorld, now.Add(-48*time.Hour)),
		article("https://example.com/new", domain.EditionWorld, now),
	}))

	require.NoError(t, repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour)))

	count, err := repo.CountByDate(ctx, now.Format("2006-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestJobRunRepo(t *testing.T) {
	store := NewMemoryStorage()
	repo := NewJobRunRepo(store)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.GetLatest(ctx, "daily-digest")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	for i, started := range []time.Time{now.Add(-2 * time.Hour), now.Add(-time.Hour), now} {
		require.NoError(t, repo.Save(ctx, &domain.JobRun{
			ID:        string(rune('a' + i)),
			JobName:   "daily-digest",
			StartedAt: started,
			Success:   i == 2,
		}))
	}
	require.NoError(t, repo.Save(ctx, &domain.JobRun{
		ID:        "other",
		JobName:   "other-job",
		StartedAt: now,
	}))

	latest, err := repo.GetLatest(ctx, "daily-digest")
	require.NoError(t, err)
	assert.Equal(t, "c", latest.ID)
	assert.True(t, latest.Success)

	recent, err := repo.GetRecent(ctx, "daily-digest", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)

	require.NoError(t, repo.DeleteOlderThan(ctx, now.Add(-90*time.Minute)))
	all, err := repo.GetRecent(ctx, "daily-digest", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
