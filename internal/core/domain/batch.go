package domain

import "time"

// BatchErrorInfo describes a single step failure inside a batch run.
// Type carries the raw step tag reported by the pipeline; unrecognized
// tags are downgraded to StepUnknown at classification time, never rejected.
type BatchErrorInfo struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// BatchResult is the outcome of one batch job attempt. It is immutable
// once returned by the job function.
type BatchResult struct {
	Success          bool             `json:"success"`
	PartialSuccess   bool             `json:"partialSuccess"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`
	Date             string           `json:"date"`
	Errors           []BatchErrorInfo `json:"errors"`

	WorldArticles int  `json:"worldArticles"`
	JapanArticles int  `json:"japanArticles"`
	TimedOut      bool `json:"timedOut"`
}

// Failed reports whether the attempt produced no acceptable outcome.
// Partial success is acceptable: re-running a partially completed job
// would duplicate side-effecting steps that already ran.
func (r *BatchResult) Failed() bool {
	return !r.Success && !r.PartialSuccess
}

// RetryResult extends the terminal BatchResult with retry accounting.
// Invariant: AttemptCount = TotalRetries + 1.
type RetryResult struct {
	BatchResult

	AttemptCount          int   `json:"attemptCount"`
	TotalRetries          int   `json:"totalRetries"`
	ExceptionOccurred     bool  `json:"exceptionOccurred"`
	TotalProcessingTimeMs int64 `json:"totalProcessingTimeMs"`
}
