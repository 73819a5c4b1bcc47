// Package steplog records per-step outcomes for a single batch job
// execution and classifies raw error tags into canonical steps.
//
// A Logger is owned by exactly one job execution. It is constructed at
// job start and discarded after the summary is read; it is not meant to
// be shared across concurrent jobs.
package steplog

import (
	"log/slog"
	"time"

	"github.com/vietddude/newsdigest/internal/core/domain"
)

// Entry is one recorded step outcome. Entries are appended and never
// mutated after creation.
type Entry struct {
	Step      domain.BatchStep       `json:"step"`
	Success   bool                   `json:"success"`
	Error     *domain.BatchErrorInfo `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
}

// Summary aggregates the recorded entries. FailedSteps and
// SuccessfulSteps preserve recording order and may repeat a step that
// logged multiple times.
type Summary struct {
	TotalSteps      int                `json:"totalSteps"`
	SuccessCount    int                `json:"successCount"`
	ErrorCount      int                `json:"errorCount"`
	FailedSteps     []domain.BatchStep `json:"failedSteps"`
	SuccessfulSteps []domain.BatchStep `json:"successfulSteps"`
}

// Logger accumulates step outcomes for one job execution.
type Logger struct {
	jobName string
	log     *slog.Logger
	now     func() time.Time
	entries []Entry
}

// New creates a step logger for one job execution.
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

// LogStepSuccess appends a success entry for the given step.
func (l *Logger) LogStepSuccess(step domain.BatchStep, metadata map[string]any) {
	entry := Entry{
		Step:      step,
		Success:   true,
		Timestamp: l.now(),
		Metadata:  metadata,
	}
	l.entries = append(l.entries, entry)
	l.log.Info("step succeeded", "job", l.jobName, "step", step)
}

// LogStepError appends a failure entry carrying the error details.
func (l *Logger) LogStepError(step domain.BatchStep, errInfo domain.BatchErrorInfo) {
	entry := Entry{
		Step:      step,
		Success:   false,
		Error:     &errInfo,
		Timestamp: l.now(),
	}
	l.entries = append(l.entries, entry)
	l.log.Error("step failed", "job", l.jobName, "step", step, "error", errInfo.Message)
}

// LogErrorsFromBatchResult classifies and records each error in input
// order, so the resulting log preserves the ordering of the batch result.
func (l *Logger) LogErrorsFromBatchResult(errors []domain.BatchErrorInfo) {
	for _, e := range errors {
		l.LogStepError(Classify(e.Type), e)
	}
}

// GetLogs returns a copy of all recorded entries.
func (l *Logger) GetLogs() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// GetLogsByStep returns a copy of the entries recorded for one step.
func (l *Logger) GetLogsByStep(step domain.BatchStep) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Step == step {
			out = append(out, e)
		}
	}
	return out
}

// GetErrorLogs returns a copy of the failure entries.
func (l *Logger) GetErrorLogs() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if !e.Success {
			out = append(out, e)
		}
	}
	return out
}

// GetSummary aggregates the recorded entries into a Summary.
func (l *Logger) GetSummary() Summary {
	s := Summary{
		TotalSteps:      len(l.entries),
		FailedSteps:     []domain.BatchStep{},
		SuccessfulSteps: []domain.BatchStep{},
	}
	for _, e := range l.entries {
		if e.Success {
			s.SuccessCount++
			s.SuccessfulSteps = append(s.SuccessfulSteps, e.Step)
		} else {
			s.ErrorCount++
			s.FailedSteps = append(s.FailedSteps, e.Step)
		}
	}
	return s
}

// Clear discards all recorded entries.
func (l *Logger) Clear() {
	l.entries = nil
}
