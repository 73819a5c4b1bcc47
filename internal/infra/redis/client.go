package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/newsdigest/internal/core/domain"
)

// Client wraps Redis operations for the digest pipeline: seen-URL
// deduplication and a best-effort per-date job lock.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks if Redis is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key helpers
func seenKey(edition domain.Edition) string {
	return fmt.Sprintf("seen_urls:%s", edition)
}

func lockKey(jobName, date string) string {
	return fmt.Sprintf("job_lock:%s:%s", jobName, date)
}

// FilterUnseen returns the subset of urls that have not been seen for
// this edition, preserving input order.
func (c *Client) FilterUnseen(
	ctx context.Context,
	edition domain.Edition,
	urls []string,
) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	members := make([]any, len(urls))
	for i, u := range urls {
		members[i] = u
	}

	seen, err := c.rdb.SMIsMember(ctx, seenKey(edition), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("smismember failed: %w", err)
	}

	var unseen []string
	for i, s := range seen {
		if !s {
			unseen = append(unseen, urls[i])
		}
	}
	return unseen, nil
}

// MarkSeen records urls as seen for an edition with a rolling TTL.
func (c *Client) MarkSeen(
	ctx context.Context,
	edition domain.Edition,
	urls []string,
	ttl time.Duration,
) error {
	if len(urls) == 0 {
		return nil
	}

	key := seenKey(edition)
	members := make([]any, len(urls))
	for i, u := range urls {
		members[i] = u
	}

	if err := c.rdb.SAdd(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("sadd failed: %w", err)
	}
	if ttl > 0 {
		if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("expire failed: %w", err)
		}
	}
	return nil
}

// AcquireJobLock attempts to acquire the per-date lock for a job so
// overlapping triggers don't run the same digest twice.
func (c *Client) AcquireJobLock(
	ctx context.Context,
	jobName, date string,
	ttl time.Duration,
) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(jobName, date), "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// ReleaseJobLock releases the per-date job lock.
func (c *Client) ReleaseJobLock(ctx context.Context, jobName, date string) error {
	return c.rdb.Del(ctx, lockKey(jobName, date)).Err()
}
