package entities

import "time"

// SearchLog records one completed query. Rows are append-only; the engine
// writes them once and never reads them back.
type SearchLog struct {
	ID          string       `json:"id" db:"id"`
	TelegramID  int64        `json:"telegram_id" db:"telegram_id"`
	Query       string       `json:"search_query" db:"search_query"`
	Preferences *Preferences `json:"structured_preferences" db:"-"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// JobMatch records a scored semantic match for a user, so recent matches
// can be replayed without re-running the search.
type JobMatch struct {
	ID              string    `json:"id" db:"id"`
	TelegramID      int64     `json:"telegram_id" db:"telegram_id"`
	JobID           int64     `json:"job_id" db:"job_id"`
	SimilarityScore float64   `json:"similarity_score" db:"similarity_score"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
