// Package execlog tracks the wall-clock lifetime of one batch job
// execution: structured log emission, a fixed timeout budget, and a
// terminal JobSummary for monitoring tooling.
package execlog

import (
	"errors"
	"log/slog"
	"time"
)

// The host runtime grants each invocation a fixed execution budget.
// These are not runtime-configurable.
const (
	hardTimeout   = 300000 * time.Millisecond
	warnThreshold = 240000 * time.Millisecond
)

// ErrNotStarted is returned by End when Start was never called.
var ErrNotStarted = errors.New("execution logger was not started")

// Log levels accepted by Log.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Entry is one structured log line emitted during the execution.
type Entry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// StepRecord is one step's timing outcome inside a JobSummary.
type StepRecord struct {
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// JobSummary is the terminal record of one job execution. Its field
// names are the stable contract consumed by log aggregation.
type JobSummary struct {
	JobName           string       `json:"jobName"`
	StartTime         time.Time    `json:"startTime"`
	EndTime           time.Time    `json:"endTime"`
	DurationMs        int64        `json:"durationMs"`
	DurationFormatted string       `json:"durationFormatted"`
	Success           bool         `json:"success"`
	Error             string       `json:"error,omitempty"`
	Steps             []StepRecord `json:"steps"`
}

// Logger tracks one job execution. It is owned by exactly one execution
// and must not be shared across concurrent jobs.
type Logger struct {
	jobName string
	log     *slog.Logger
	now     func() time.Time

	started   bool
	startTime time.Time
	warned    bool
	entries   []Entry
	steps     []StepRecord
}

// New creates an execution logger for the named job.
func New(jobName string, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{
		jobName: jobName,
		log:     log,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Used by tests to drive the
// timeout budget without real waiting.
func (l *Logger) SetClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// Start records the start timestamp and resets all buffers, including
// the one-shot timeout warning flag.
func (l *Logger) Start() {
	l.started = true
	l.startTime = l.now()
	l.warned = false
	l.entries = nil
	l.steps = nil
	l.log.Info("job started", "job", l.jobName)
}

// Log appends a structured entry and writes it to the sink immediately.
func (l *Logger) Log(level, message string, data map[string]any) {
	entry := Entry{
		Level:     level,
		Message:   message,
		Data:      data,
		Timestamp: l.now(),
	}
	l.entries = append(l.entries, entry)

	attrs := make([]any, 0, 2+2*len(data))
	attrs = append(attrs, "job", l.jobName)
	for k, v := range data {
		attrs = append(attrs, k, v)
	}
	switch level {
	case LevelError:
		l.log.Error(message, attrs...)
	case LevelWarn:
		l.log.Warn(message, attrs...)
	default:
		l.log.Info(message, attrs...)
	}
}

// LogStep records one step's timing outcome for the final summary.
func (l *Logger) LogStep(name string, success bool, duration time.Duration, err error) {
	rec := StepRecord{
		Name:       name,
		Success:    success,
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	l.steps = append(l.steps, rec)

	if success {
		l.log.Info("step completed", "job", l.jobName, "step", name, "duration", FormatDuration(rec.DurationMs))
	} else {
		l.log.Error("step failed", "job", l.jobName, "step", name, "duration", FormatDuration(rec.DurationMs), "error", rec.Error)
	}
}

// CheckTimeout reports whether the hard execution budget is spent. It is
// advisory: the caller polls it between steps and is responsible for
// aborting remaining work. Crossing the warning threshold emits exactly
// one warning per execution.
func (l *Logger) CheckTimeout() bool {
	elapsed := l.now().Sub(l.startTime)

	if elapsed >= warnThreshold && !l.warned {
		l.warned = true
		l.Log(LevelWarn, "approaching execution time limit", map[string]any{
			"elapsedMs": elapsed.Milliseconds(),
			"limitMs":   hardTimeout.Milliseconds(),
		})
	}

	return elapsed >= hardTimeout
}

// End computes the terminal summary and writes one closing log line.
// It fails if Start was never called.
func (l *Logger) End(jobErr error) (*JobSummary, error) {
	if !l.started {
		return nil, ErrNotStarted
	}

	end := l.now()
	durationMs := end.Sub(l.startTime).Milliseconds()

	summary := &JobSummary{
		JobName:           l.jobName,
		StartTime:         l.startTime,
		EndTime:           end,
		DurationMs:        durationMs,
		DurationFormatted: FormatDuration(durationMs),
		Success:           jobErr == nil,
		Steps:             append([]StepRecord(nil), l.steps...),
	}
	if jobErr != nil {
		summary.Error = jobErr.Error()
		l.log.Error("job failed", "job", l.jobName, "duration", summary.DurationFormatted, "error", jobErr)
	} else {
		l.log.Info("job completed", "job", l.jobName, "duration", summary.DurationFormatted)
	}

	return summary, nil
}
