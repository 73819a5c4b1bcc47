// Package pipeline builds the daily digest job: fetch world and japan
// headlines, summarize each edition, save articles, and record run
// metadata. Every step outcome flows through the step and execution
// loggers so a crash mid-run still leaves a complete ordered trail.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/newsdigest/internal/batch/execlog"
	"github.com/vietddude/newsdigest/internal/batch/metrics"
	"github.com/vietddude/newsdigest/internal/batch/steplog"
	"github.com/vietddude/newsdigest/internal/core/domain"
	"github.com/vietddude/newsdigest/internal/infra/news"
	"github.com/vietddude/newsdigest/internal/infra/storage"
)

// NewsFetcher fetches headlines for an edition.
type NewsFetcher interface {
	FetchTopHeadlines(ctx context.Context, edition domain.Edition) ([]news.Headline, error)
}

// Summarizer produces one summary for a batch of headlines.
type Summarizer interface {
	Summarize(ctx context.Context, language string, headlines []string) (string, error)
}

// Deduper filters already-processed URLs. Optional: a nil Deduper
// disables deduplication.
type Deduper interface {
	FilterUnseen(ctx context.Context, edition domain.Edition, urls []string) ([]string, error)
	MarkSeen(ctx context.Context, edition domain.Edition, urls []string, ttl time.Duration) error
}

// JobName is the canonical name of the daily digest job.
const JobName = "daily-digest"

const seenTTL = 7 * 24 * time.Hour

// DailyJob assembles one triggered digest run. Create a fresh DailyJob
// per trigger: it counts its own attempts so the metadata step can
// record which retry produced the stored run.
type DailyJob struct {
	news       NewsFetcher
	summarizer Summarizer
	articles   storage.ArticleRepository
	runs       storage.JobRunRepository
	dedup      Deduper
	log        *slog.Logger

	clock   func() time.Time
	attempt int
}

// NewDailyJob creates a daily digest job.
func NewDailyJob(
	fetcher NewsFetcher,
	summarizer Summarizer,
	articles storage.ArticleRepository,
	runs storage.JobRunRepository,
	dedup Deduper,
	log *slog.Logger,
) *DailyJob {
	if log == nil {
		log = slog.Default()
	}
	return &DailyJob{
		news:       fetcher,
		summarizer: summarizer,
		articles:   articles,
		runs:       runs,
		dedup:      dedup,
		log:        log,
		clock:      time.Now,
	}
}

type edition struct {
	id          domain.Edition
	fetchStep   domain.BatchStep
	summaryStep domain.BatchStep
	language    string
	headlines   []news.Headline
	summary     string
}

// Run executes one attempt of the digest pipeline and returns its
// BatchResult. Business failures are reported on the result, never as
// an error; the error return fires only when the context is already
// dead, which the retry controller counts as a failed attempt.
func (j *DailyJob) Run(ctx context.Context) (*domain.BatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("digest run aborted: %w", err)
	}
	j.attempt++

	exec := execlog.New(JobName, j.log)
	exec.SetClock(j.clock)
	steps := steplog.New(JobName, j.log)

	startedAt := j.clock()
	exec.Start()

	result := &domain.BatchResult{
		Date: startedAt.Format("2006-01-02"),
	}

	editions := []*edition{
		{id: domain.EditionWorld, fetchStep: domain.StepWorldNewsFetch, summaryStep: domain.StepWorldNewsSummary, language: "en"},
		{id: domain.EditionJapan, fetchStep: domain.StepJapanNewsFetch, summaryStep: domain.StepJapanNewsSummary, language: "ja"},
	}

	timedOut := false

	// Fetch phase
	for _, ed := range editions {
		if timedOut = timedOut || exec.CheckTimeout(); timedOut {
			break
		}
		j.runStep(exec, steps, result, ed.fetchStep, func() error {
			headlines, err := j.fetchEdition(ctx, ed.id)
			if err != nil {
				return err
			}
			ed.headlines = headlines
			return nil
		})
	}

	// Summary phase
	for _, ed := range editions {
		if timedOut = timedOut || exec.CheckTimeout(); timedOut {
			break
		}
		if len(ed.headlines) == 0 {
			continue
		}
		j.runStep(exec, steps, result, ed.summaryStep, func() error {
			titles := make([]string, len(ed.headlines))
			for i, h := range ed.headlines {
				titles[i] = h.Title
			}
			summary, err := j.summarizer.Summarize(ctx, ed.language, titles)
			if err != nil {
				return err
			}
			ed.summary = summary
			return nil
		})
	}

	// Save phase. A quiet day (no new headlines, no errors) is a clean
	// noop; zero articles after a failed fetch is a save failure.
	saved := 0
	pending := 0
	for _, ed := range editions {
		pending += len(ed.headlines)
	}
	if timedOut = timedOut || exec.CheckTimeout(); !timedOut && (pending > 0 || len(result.Errors) > 0) {
		j.runStep(exec, steps, result, domain.StepFirestoreSave, func() error {
			for _, ed := range editions {
				articles := j.buildArticles(ed)
				if len(articles) == 0 {
					continue
				}
				if err := j.articles.SaveBatch(ctx, articles); err != nil {
					return err
				}
				saved += len(articles)
				metrics.ArticlesSavedTotal.WithLabelValues(string(ed.id)).Add(float64(len(articles)))
				if ed.id == domain.EditionWorld {
					result.WorldArticles = len(articles)
				} else {
					result.JapanArticles = len(articles)
				}
				j.markSeen(ctx, ed)
			}
			if saved == 0 {
				return fmt.Errorf("no articles to save")
			}
			return nil
		})
	}

	result.TimedOut = timedOut
	result.Success = len(result.Errors) == 0 && !timedOut
	result.PartialSuccess = !result.Success && saved > 0

	// Metadata phase: persists the run record even for failed runs.
	if !timedOut || saved > 0 {
		j.runStep(exec, steps, result, domain.StepMetadataUpdate, func() error {
			return j.saveRunRecord(ctx, result, startedAt)
		})
		// A metadata failure demotes a clean run.
		result.Success = len(result.Errors) == 0 && !timedOut
		result.PartialSuccess = !result.Success && saved > 0
	}

	summary, err := exec.End(j.terminalError(result))
	if err != nil {
		return nil, err
	}
	result.ProcessingTimeMs = summary.DurationMs

	stepSummary := steps.GetSummary()
	exec.Log(execlog.LevelInfo, "digest run finished", map[string]any{
		"success":        result.Success,
		"partialSuccess": result.PartialSuccess,
		"attempt":        j.attempt,
		"steps":          stepSummary.TotalSteps,
		"stepErrors":     stepSummary.ErrorCount,
	})

	return result, nil
}

// runStep executes one pipeline step, recording timing and outcome in
// both loggers and the batch result.
func (j *DailyJob) runStep(
	exec *execlog.Logger,
	steps *steplog.Logger,
	result *domain.BatchResult,
	step domain.BatchStep,
	fn func() error,
) {
	start := j.clock()
	err := fn()
	duration := j.clock().Sub(start)

	exec.LogStep(string(step), err == nil, duration, err)
	if err == nil {
		steps.LogStepSuccess(step, nil)
		return
	}

	info := domain.BatchErrorInfo{
		Type:      string(step),
		Message:   err.Error(),
		Timestamp: j.clock(),
	}
	steps.LogStepError(step, info)
	result.Errors = append(result.Errors, info)
	metrics.StepFailuresTotal.WithLabelValues(JobName, string(step)).Inc()
}

func (j *DailyJob) fetchEdition(ctx context.Context, ed domain.Edition) ([]news.Headline, error) {
	headlines, err := j.news.FetchTopHeadlines(ctx, ed)
	if err != nil {
		return nil, err
	}
	if j.dedup == nil || len(headlines) == 0 {
		return headlines, nil
	}

	urls := make([]string, len(headlines))
	byURL := make(map[string]news.Headline, len(headlines))
	for i, h := range headlines {
		urls[i] = h.URL
		byURL[h.URL] = h
	}

	unseen, err := j.dedup.FilterUnseen(ctx, ed, urls)
	if err != nil {
		// Dedup is best effort; process everything rather than fail the step.
		j.log.Warn("dedup filter failed, processing all headlines", "edition", ed, "error", err)
		return headlines, nil
	}

	out := make([]news.Headline, 0, len(unseen))
	for _, u := range unseen {
		out = append(out, byURL[u])
	}
	return out, nil
}

func (j *DailyJob) markSeen(ctx context.Context, ed *edition) {
	if j.dedup == nil {
		return
	}
	urls := make([]string, len(ed.headlines))
	for i, h := range ed.headlines {
		urls[i] = h.URL
	}
	if err := j.dedup.MarkSeen(ctx, ed.id, urls, seenTTL); err != nil {
		j.log.Warn("failed to mark urls as seen", "edition", ed.id, "error", err)
	}
}

func (j *DailyJob) buildArticles(ed *edition) []*domain.Article {
	if len(ed.headlines) == 0 {
		return nil
	}
	now := j.clock()
	articles := make([]*domain.Article, len(ed.headlines))
	for i, h := range ed.headlines {
		articles[i] = &domain.Article{
			ID:          uuid.New().String(),
			Edition:     ed.id,
			Title:       h.Title,
			URL:         h.URL,
			Source:      h.Source,
			Summary:     ed.summary,
			Language:    h.Language,
			PublishedAt: h.PublishedAt,
			CreatedAt:   now,
		}
	}
	return articles
}

func (j *DailyJob) saveRunRecord(
	ctx context.Context,
	result *domain.BatchResult,
	startedAt time.Time,
) error {
	finished := j.clock()
	run := &domain.JobRun{
		ID:             uuid.New().String(),
		JobName:        JobName,
		Date:           result.Date,
		Success:        result.Success,
		PartialSuccess: result.PartialSuccess,
		Attempts:       j.attempt,
		DurationMs:     finished.Sub(startedAt).Milliseconds(),
		WorldArticles:  result.WorldArticles,
		JapanArticles:  result.JapanArticles,
		Error:          j.joinErrors(result),
		StartedAt:      startedAt,
		FinishedAt:     finished,
	}
	return j.runs.Save(ctx, run)
}

func (j *DailyJob) joinErrors(result *domain.BatchResult) string {
	if len(result.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func (j *DailyJob) terminalError(result *domain.BatchResult) error {
	if result.Success || result.PartialSuccess {
		return nil
	}
	if result.TimedOut {
		return fmt.Errorf("digest run exceeded execution budget")
	}
	return fmt.Errorf("digest run failed: %s", j.joinErrors(result))
}
