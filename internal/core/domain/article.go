package domain

import "time"

// Edition identifies a news edition processed by the digest job.
type Edition string

const (
	EditionWorld Edition = "world"
	EditionJapan Edition = "japan"
)

// Article is a single news item stored by the digest pipeline.
type Article struct {
	ID          string    `json:"id" db:"id"`
	Edition     Edition   `json:"edition" db:"edition"`
	Title       string    `json:"title" db:"title"`
	URL         string    `json:"url" db:"url"`
	Source      string    `json:"source" db:"source"`
	Summary     string    `json:"summary" db:"summary"`
	Language    string    `json:"language" db:"language"`
	PublishedAt time.Time `json:"published_at" db:"published_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
