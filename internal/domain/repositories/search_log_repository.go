package repositories

import (
	"context"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
)

// SearchLogRepository persists completed queries. Append-only: the engine
// never updates or deletes log rows.
type SearchLogRepository interface {
	Append(ctx context.Context, log *entities.SearchLog) error
}

// MatchRepository persists scored matches and reads them back for the
// recent-matches view.
type MatchRepository interface {
	// Record stores one match row per semantic result
	Record(ctx context.Context, matches []*entities.JobMatch) error

	// ListRecent returns a user's most recent matches, newest first,
	// with the job joined in.
	ListRecent(ctx context.Context, telegramID int64, limit int) ([]entities.Match, error)
}
