package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/newsdigest/internal/core/domain"
	"github.com/vietddude/newsdigest/internal/infra/news"
	"github.com/vietddude/newsdigest/internal/infra/storage/memory"
)

type fakeFetcher struct {
	headlines map[domain.Edition][]news.Headline
	errs      map[domain.Edition]error
	calls     []domain.Edition
}

func (f *fakeFetcher) FetchTopHeadlines(ctx context.Context, ed domain.Edition) ([]news.Headline, error) {
	f.calls = append(f.calls, ed)
	if err := f.errs[ed]; err != nil {
		return nil, err
	}
	return f.headlines[ed], nil
}

type fetcherFunc func(ctx context.Context, ed domain.Edition) ([]news.Headline, error)

func (f fetcherFunc) FetchTopHeadlines(ctx context.Context, ed domain.Edition) ([]news.Headline, error) {
	return f(ctx, ed)
}

type fakeSummarizer struct {
	errs  map[string]error // keyed by language
	calls []string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, language string, headlines []string) (string, error) {
	f.calls = append(f.calls, language)
	if err := f.errs[language]; err != nil {
		return "", err
	}
	return "summary (" + language + ")", nil
}

type fakeDeduper struct {
	seen      map[string]bool
	marked    []string
	filterErr error
}

func (f *fakeDeduper) FilterUnseen(ctx context.Context, ed domain.Edition, urls []string) ([]string, error) {
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	var out []string
	for _, u := range urls {
		if !f.seen[u] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeDeduper) MarkSeen(ctx context.Context, ed domain.Edition, urls []string, ttl time.Duration) error {
	f.marked = append(f.marked, urls...)
	return nil
}

func headlinesFor(ed domain.Edition, n int) []news.Headline {
	out := make([]news.Headline, n)
	for i := range out {
		out[i] = news.Headline{
			Title:       string(ed) + " headline",
			URL:         "https://example.com/" + string(ed) + "/" + string(rune('a'+i)),
			Source:      "example",
			Language:    "en",
			PublishedAt: time.Now(),
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(fetcher NewsFetcher, summarizer Summarizer, dedup Deduper) (*DailyJob, *memory.MemoryStorage, *memory.JobRunRepo) {
	store := memory.NewMemoryStorage()
	runs := memory.NewJobRunRepo(store)
	job := NewDailyJob(fetcher, summarizer, memory.NewArticleRepo(store), runs, dedup, discardLogger())
	return job, store, runs
}

func TestRun_Success(t *testing.T) {
	fetcher := &fakeFetcher{headlines: map[domain.Edition][]news.Headline{
		domain.EditionWorld: headlinesFor(domain.EditionWorld, 3),
		domain.EditionJapan: headlinesFor(domain.EditionJapan, 2),
	}}
	summarizer := &fakeSummarizer{}
	job, _, runs := newTestEnv(fetcher, summarizer, nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.PartialSuccess)
	assert.False(t, result.TimedOut)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, result.WorldArticles)
	assert.Equal(t, 2, result.JapanArticles)
	assert.Equal(t, []string{"en", "ja"}, summarizer.calls)

	run, err := runs.GetLatest(context.Background(), JobName)
	require.NoError(t, err)
	assert.True(t, run.Success)
	assert.Equal(t, 1, run.Attempts)
	assert.Equal(t, 3, run.WorldArticles)
	assert.Empty(t, run.Error)
}

func TestRun_PartialSuccess_JapanFetchFails(t *testing.T) {
	fetcher := &fakeFetcher{
		headlines: map[domain.Edition][]news.Headline{
			domain.EditionWorld: headlinesFor(domain.EditionWorld, 2),
		},
		errs: map[domain.Edition]error{
			domain.EditionJapan: errors.New("upstream 500"),
		},
	}
	job, _, runs := newTestEnv(fetcher, &fakeSummarizer{}, nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.True(t, result.PartialSuccess)
	assert.Equal(t, 2, result.WorldArticles)
	assert.Zero(t, result.JapanArticles)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "japan-news-fetch", result.Errors[0].Type)
	assert.Equal(t, "upstream 500", result.Errors[0].Message)

	run, err := runs.GetLatest(context.Background(), JobName)
	require.NoError(t, err)
	assert.True(t, run.PartialSuccess)
	assert.Equal(t, "japan-news-fetch: upstream 500", run.Error)
}

func TestRun_PartialSuccess_SummaryFails(t *testing.T) {
	fetcher := &fakeFetcher{headlines: map[domain.Edition][]news.Headline{
		domain.EditionWorld: headlinesFor(domain.EditionWorld, 2),
		domain.EditionJapan: headlinesFor(domain.EditionJapan, 2),
	}}
	summarizer := &fakeSummarizer{errs: map[string]error{"ja": errors.New("model overloaded")}}
	job, _, _ := newTestEnv(fetcher, summarizer, nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	// Headlines still get saved without their summary.
	assert.True(t, result.PartialSuccess)
	assert.Equal(t, 2, result.JapanArticles)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "japan-news-summary", result.Errors[0].Type)
}

func TestRun_AllFetchesFail(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[domain.Edition]error{
		domain.EditionWorld: errors.New("world down"),
		domain.EditionJapan: errors.New("japan down"),
	}}
	job, _, runs := newTestEnv(fetcher, &fakeSummarizer{}, nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.False(t, result.PartialSuccess)
	assert.True(t, result.Failed())

	// Both fetch errors plus the empty-save failure.
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "world-news-fetch", result.Errors[0].Type)
	assert.Equal(t, "japan-news-fetch", result.Errors[1].Type)
	assert.Equal(t, "firestore-save", result.Errors[2].Type)

	// The run record is still written for failed runs.
	run, err := runs.GetLatest(context.Background(), JobName)
	require.NoError(t, err)
	assert.False(t, run.Success)
	assert.False(t, run.PartialSuccess)
}

func TestRun_QuietDay(t *testing.T) {
	fetcher := &fakeFetcher{} // both editions return no headlines
	summarizer := &fakeSummarizer{}
	job, _, runs := newTestEnv(fetcher, summarizer, nil)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Zero(t, result.WorldArticles)
	assert.Zero(t, result.JapanArticles)
	assert.Empty(t, summarizer.calls)

	run, err := runs.GetLatest(context.Background(), JobName)
	require.NoError(t, err)
	assert.True(t, run.Success)
}

func TestRun_Timeout(t *testing.T) {
	now := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)

	fetcher := fetcherFunc(func(ctx context.Context, ed domain.Edition) ([]news.Headline, error) {
		// The world fetch blows the whole execution budget.
		now = now.Add(301 * time.Second)
		return headlinesFor(ed, 2), nil
	})
	job, _, runs := newTestEnv(fetcher, &fakeSummarizer{}, nil)
	job.clock = func() time.Time { return now }

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.TimedOut)
	assert.False(t, result.Success)
	assert.False(t, result.PartialSuccess)
	// Nothing was saved, so the japan fetch and all later phases were skipped.
	assert.Zero(t, result.WorldArticles)
	assert.Zero(t, result.JapanArticles)

	_, err = runs.GetLatest(context.Background(), JobName)
	assert.Error(t, err, "timed-out run with no saved articles must not record metadata")
}

func TestRun_DedupFiltersSeenURLs(t *testing.T) {
	world := headlinesFor(domain.EditionWorld, 3)
	fetcher := &fakeFetcher{headlines: map[domain.Edition][]news.Headline{
		domain.EditionWorld: world,
	}}
	dedup := &fakeDeduper{seen: map[string]bool{world[1].URL: true}}
	job, _, _ := newTestEnv(fetcher, &fakeSummarizer{}, dedup)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.WorldArticles)
	assert.Len(t, dedup.marked, 2)
	assert.NotContains(t, dedup.marked, world[1].URL)
}

func TestRun_DedupFailureIsBestEffort(t *testing.T) {
	fetcher := &fakeFetcher{headlines: map[domain.Edition][]news.Headline{
		domain.EditionWorld: headlinesFor(domain.EditionWorld, 2),
	}}
	dedup := &fakeDeduper{filterErr: errors.New("redis down")}
	job, _, _ := newTestEnv(fetcher, &fakeSummarizer{}, dedup)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.WorldArticles, "a dedup outage must not drop headlines")
}

func TestRun_ContextAlreadyCancelled(t *testing.T) {
	job, _, _ := newTestEnv(&fakeFetcher{}, &fakeSummarizer{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := job.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRun_TracksAttemptsAcrossRetries(t *testing.T) {
	fetcher := &fakeFetcher{headlines: map[domain.Edition][]news.Headline{
		domain.EditionWorld: headlinesFor(domain.EditionWorld, 1),
	}}
	job, _, runs := newTestEnv(fetcher, &fakeSummarizer{}, nil)

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	_, err = job.Run(context.Background())
	require.NoError(t, err)

	run, err := runs.GetLatest(context.Background(), JobName)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Attempts)
}
