package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/newsdigest/internal/batch/metrics"
	"github.com/vietddude/newsdigest/internal/batch/retry"
	"github.com/vietddude/newsdigest/internal/core/config"
	"github.com/vietddude/newsdigest/internal/core/domain"
	"github.com/vietddude/newsdigest/internal/core/worker"
	"github.com/vietddude/newsdigest/internal/health"
	"github.com/vietddude/newsdigest/internal/infra/news"
	redisclient "github.com/vietddude/newsdigest/internal/infra/redis"
	"github.com/vietddude/newsdigest/internal/infra/storage"
	"github.com/vietddude/newsdigest/internal/infra/storage/memory"
	"github.com/vietddude/newsdigest/internal/infra/storage/postgres"
	"github.com/vietddude/newsdigest/internal/infra/summarize"
	"github.com/vietddude/newsdigest/internal/pipeline"
)

// Service is the main application struct that manages the digest
// service lifecycle.
type Service struct {
	cfg          *config.AppConfig
	fetcher      *news.Client
	summarizer   *summarize.Client
	articleRepo  storage.ArticleRepository
	runRepo      storage.JobRunRepository
	db           *postgres.DB
	redisClient  *redisclient.Client
	retrier      *retry.Controller
	healthServer *health.Server
	pruner       *worker.Pruner
	log          *slog.Logger

	cancel context.CancelFunc
}

// NewService creates a Service with all dependencies initialized.
func NewService(cfg *config.AppConfig) (*Service, error) {
	log := slog.Default()

	s := &Service{
		cfg:        cfg,
		fetcher:    news.NewClient(cfg.News),
		summarizer: summarize.NewClient(cfg.Summarizer),
		log:        log,
	}

	// 1. Storage
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		s.db = db
		s.articleRepo = postgres.NewArticleRepo(db)
		s.runRepo = postgres.NewJobRunRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		s.articleRepo = memory.NewArticleRepo(store)
		s.runRepo = memory.NewJobRunRepo(store)
		slog.Info("Using Memory storage")
	}

	// 2. Redis (optional: dedup and job lock degrade gracefully without it)
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		s.redisClient = rc
	}

	// 3. Retry controller
	maxRetries := cfg.Job.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	s.retrier = retry.New(retry.Config{
		MaxRetries: maxRetries,
		BaseDelay:  cfg.Job.BaseDelay,
		MaxDelay:   cfg.Job.MaxDelay,
		OnRetry: func(attempt int, delay time.Duration, _ *domain.BatchResult) {
			log.Warn("scheduling retry", "job", pipeline.JobName, "failedAttempt", attempt, "delay", delay)
		},
	}, log)

	// 4. Health/trigger server
	checks := map[string]health.Check{}
	if s.db != nil {
		checks["database"] = s.db.Health
	}
	if s.redisClient != nil {
		checks["redis"] = s.redisClient.Health
	}
	s.healthServer = health.NewServer(s, checks, cfg.Server.Port)

	// 5. Retention pruner
	s.pruner = worker.NewPruner(cfg.Job.Retention, s.articleRepo, s.runRepo)

	return s, nil
}

// TriggerDaily runs one digest job through the retry controller. The
// per-date lock keeps overlapping triggers from running the same digest
// twice.
func (s *Service) TriggerDaily(ctx context.Context) (*domain.RetryResult, error) {
	date := time.Now().Format("2006-01-02")

	if s.redisClient != nil {
		ok, err := s.redisClient.AcquireJobLock(ctx, pipeline.JobName, date, s.cfg.Job.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire job lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("digest job already running for %s", date)
		}
		defer func() {
			if err := s.redisClient.ReleaseJobLock(context.Background(), pipeline.JobName, date); err != nil {
				s.log.Warn("failed to release job lock", "error", err)
			}
		}()
	}

	job := pipeline.NewDailyJob(
		s.fetcher,
		s.summarizer,
		s.articleRepo,
		s.runRepo,
		s.dedup(),
		s.log,
	)

	start := time.Now()
	result, err := s.retrier.ExecuteWithRetry(ctx, job.Run)
	if err != nil {
		return nil, err
	}

	metrics.JobDuration.WithLabelValues(pipeline.JobName).Observe(time.Since(start).Seconds())
	metrics.JobsTotal.WithLabelValues(pipeline.JobName, jobResult(result)).Inc()

	return result, nil
}

func (s *Service) dedup() pipeline.Deduper {
	// A typed nil in the interface would dodge the pipeline's nil check.
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient
}

func jobResult(r *domain.RetryResult) string {
	switch {
	case r.Success:
		return "success"
	case r.PartialSuccess:
		return "partial"
	default:
		return "failure"
	}
}

// Start starts the HTTP server and background workers.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		s.log.Info("health server listening", "port", s.cfg.Server.Port)
		if err := s.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("health server stopped", "error", err)
		}
	}()

	go s.pruner.Start(runCtx)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	if err := s.healthServer.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop health server: %w", err)
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("failed to close redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close db: %w", err)
		}
	}
	return nil
}
