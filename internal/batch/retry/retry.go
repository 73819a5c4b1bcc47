// Package retry wraps a batch job function with bounded
// exponential-backoff retry.
//
// The controller absorbs business failures and job errors until retries
// are exhausted, then returns a RetryResult describing the outcome
// instead of failing. Callers inspect Success/PartialSuccess on the
// result; an error is returned only when the context is cancelled
// during a backoff wait.
package retry

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/vietddude/newsdigest/internal/batch/metrics"
	"github.com/vietddude/newsdigest/internal/core/domain"
)

// JobFunc runs one batch job attempt. A non-nil error means the attempt
// blew up before producing a result; it counts as a failed attempt and
// is not propagated while retries remain.
type JobFunc func(ctx context.Context) (*domain.BatchResult, error)

// OnRetryFunc is invoked synchronously before each backoff wait, never
// after the attempt that produced the returned result. lastResult is nil
// when the attempt failed with an error instead of a result.
type OnRetryFunc func(attempt int, delay time.Duration, lastResult *domain.BatchResult)

// Config holds the retry tunables.
type Config struct {
	MaxRetries int           // attempts = MaxRetries + 1; 0 means a single attempt
	BaseDelay  time.Duration // first backoff delay
	MaxDelay   time.Duration // backoff cap
	OnRetry    OnRetryFunc
}

// DefaultConfig matches the host's execution budget: at most 4 attempts
// with 1s/2s/4s backoff.
var DefaultConfig = Config{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Controller executes job functions with retry. It holds no per-run
// state and may be reused across sequential job invocations.
type Controller struct {
	cfg Config
	log *slog.Logger
}

// New creates a controller, filling unset config fields with defaults.
func New(cfg Config, log *slog.Logger) *Controller {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig.BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{cfg: cfg, log: log}
}

// CalculateDelay returns the backoff delay before the attempt following
// attemptNumber: BaseDelay * 2^(attemptNumber-1), capped at MaxDelay.
// No jitter: retries must stay deterministic for the fixed budget.
func (c *Controller) CalculateDelay(attemptNumber int) time.Duration {
	delay := float64(c.cfg.BaseDelay) * math.Pow(2, float64(attemptNumber-1))
	if delay > float64(c.cfg.MaxDelay) {
		return c.cfg.MaxDelay
	}
	return time.Duration(delay)
}

// ExecuteWithRetry invokes fn until it produces an acceptable outcome or
// retries are exhausted. Attempts never overlap: each completes fully
// before the next begins. Partial success is terminal so that
// side-effecting steps which already completed are not re-run.
func (c *Controller) ExecuteWithRetry(ctx context.Context, fn JobFunc) (*domain.RetryResult, error) {
	attempts := c.cfg.MaxRetries + 1
	start := time.Now()

	var last *domain.BatchResult
	var lastErr error
	exception := false

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err != nil {
			exception = true
			lastErr = err
			last = nil
			c.log.Error("job attempt failed", "attempt", attempt, "error", err)
		} else {
			last = result
			if result.Success || result.PartialSuccess {
				return c.finish(result, attempt, exception, start), nil
			}
			c.log.Warn("job attempt unsuccessful", "attempt", attempt, "errors", len(result.Errors))
		}

		if attempt == attempts {
			break
		}

		delay := c.CalculateDelay(attempt)
		if c.cfg.OnRetry != nil {
			c.cfg.OnRetry(attempt, delay, last)
		}
		metrics.JobRetriesTotal.Inc()
		c.log.Info("retrying job", "attempt", attempt+1, "delay", delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if last == nil {
		last = c.syntheticFailure(lastErr)
	}
	return c.finish(last, attempts, exception, start), nil
}

func (c *Controller) finish(result *domain.BatchResult, attempt int, exception bool, start time.Time) *domain.RetryResult {
	return &domain.RetryResult{
		BatchResult:           *result,
		AttemptCount:          attempt,
		TotalRetries:          attempt - 1,
		ExceptionOccurred:     exception,
		TotalProcessingTimeMs: time.Since(start).Milliseconds(),
	}
}

// syntheticFailure stands in for the terminal result when every attempt
// failed with an error and no BatchResult was ever produced, keeping the
// no-throw contract intact.
func (c *Controller) syntheticFailure(lastErr error) *domain.BatchResult {
	now := time.Now()
	msg := "job produced no result"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	return &domain.BatchResult{
		Success:        false,
		PartialSuccess: false,
		Date:           now.Format("2006-01-02"),
		Errors: []domain.BatchErrorInfo{
			{Type: string(domain.StepUnknown), Message: msg, Timestamp: now},
		},
	}
}
