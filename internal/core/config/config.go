package config

import (
	"time"

	"github.com/vietddude/newsdigest/internal/infra/news"
	redisclient "github.com/vietddude/newsdigest/internal/infra/redis"
	"github.com/vietddude/newsdigest/internal/infra/storage/postgres"
	"github.com/vietddude/newsdigest/internal/infra/summarize"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Job        JobConfig          `yaml:"job"`
	News       news.Config        `yaml:"news"`
	Summarizer summarize.Config   `yaml:"summarizer"`
	Redis      redisclient.Config `yaml:"redis"`
	Database   postgres.Config    `yaml:"database"`
	Logging    LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// JobConfig holds the digest job tunables. Retry fields are the only
// knobs; the execution timeout budget is fixed by the host.
type JobConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
	Retention  time.Duration `yaml:"retention"` // 0 = infinite
	LockTTL    time.Duration `yaml:"lock_ttl"`
}
