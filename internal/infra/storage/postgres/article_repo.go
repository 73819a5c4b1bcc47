package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/newsdigest/internal/core/domain"
)

// ArticleRepo implements storage.ArticleRepository using PostgreSQL.
type ArticleRepo struct {
	db *DB
}

// NewArticleRepo creates a new PostgreSQL article repository.
func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// SaveBatch upserts articles by URL so re-running a partially completed
// job does not create duplicates.
func (r *ArticleRepo) SaveBatch(ctx context.Context, articles []*domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	query := `
		INSERT INTO articles (id, edition, title, url, source, summary, language, published_at, created_at)
		VALUES (:id, :edition, :title, :url, :source, :summary, :language, :published_at, :created_at)
		ON CONFLICT (url) DO UPDATE
		SET title = EXCLUDED.title, summary = EXCLUDED.summary
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, a := range articles {
		if _, err := tx.NamedExecContext(ctx, query, a); err != nil {
			return fmt.Errorf("failed to save article %s: %w", a.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit articles: %w", err)
	}
	return nil
}

// GetByDate retrieves all articles of an edition created on a date.
func (r *ArticleRepo) GetByDate(
	ctx context.Context,
	edition domain.Edition,
	date string,
) ([]*domain.Article, error) {
	query := `
		SELECT id, edition, title, url, source, summary, language, published_at, created_at
		FROM articles
		WHERE edition = $1 AND created_at::date = $2::date
		ORDER BY published_at DESC
	`

	var articles []*domain.Article
	if err := r.db.SelectContext(ctx, &articles, query, edition, date); err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	return articles, nil
}

// CountByDate counts articles created on a date.
func (r *ArticleRepo) CountByDate(ctx context.Context, date string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM articles
		WHERE created_at::date = $1::date
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, date); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

// DeleteOlderThan deletes articles created before the threshold.
func (r *ArticleRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) error {
	query := `
		DELETE FROM articles
		WHERE created_at < $1
	`
	if _, err := r.db.ExecContext(ctx, query, threshold); err != nil {
		return fmt.Errorf("failed to delete old articles: %w", err)
	}
	return nil
}
