package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsTotal tracks digest job outcomes per job and result
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdigest_jobs_total",
			Help: "Total number of batch job executions",
		},
		[]string{"job", "result"},
	)

	// JobRetriesTotal tracks retry waits performed by the retry controller
	JobRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsdigest_job_retries_total",
			Help: "Total number of job retries",
		},
	)

	// StepFailuresTotal tracks failed pipeline steps per step tag
	StepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdigest_step_failures_total",
			Help: "Total number of failed batch steps",
		},
		[]string{"job", "step"},
	)

	// JobDuration tracks end-to-end job duration including retries
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsdigest_job_duration_seconds",
			Help:    "Batch job duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"job"},
	)

	// ArticlesSavedTotal tracks stored articles per edition
	ArticlesSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdigest_articles_saved_total",
			Help: "Total number of articles saved",
		},
		[]string{"edition"},
	)
)
