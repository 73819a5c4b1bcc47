package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/newsdigest/internal/infra/storage"
)

// Pruner deletes old articles and job runs based on retention policy.
type Pruner struct {
	retention time.Duration
	articles  storage.ArticleRepository
	runs      storage.JobRunRepository
}

// NewPruner creates a new Pruner worker.
func NewPruner(
	retention time.Duration,
	articles storage.ArticleRepository,
	runs storage.JobRunRepository,
) *Pruner {
	return &Pruner{
		retention: retention,
		articles:  articles,
		runs:      runs,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	threshold := time.Now().Add(-p.retention)

	if err := p.articles.DeleteOlderThan(ctx, threshold); err != nil {
		slog.Error("failed to prune articles", "error", err)
	}

	if err := p.runs.DeleteOlderThan(ctx, threshold); err != nil {
		slog.Error("failed to prune job runs", "error", err)
	}
}
