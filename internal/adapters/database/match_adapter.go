package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/firmatch/jobmatch-backend/pkg/errors"
)

type MatchAdapter struct {
	client *postgres.Client
	jobs   repositories.JobRepository
}

func NewMatchAdapter(client *postgres.Client) repositories.MatchRepository {
	return &MatchAdapter{
		client: client,
		jobs:   NewJobAdapter(client),
	}
}

// Record stores the scored matches delivered for one search.
func (a *MatchAdapter) Record(ctx context.Context, matches []*entities.JobMatch) error {
	if len(matches) == 0 {
		return nil
	}

	query := `
		INSERT INTO job_matches
		(id, telegram_id, job_id, similarity_score, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, match := range matches {
		if match.ID == "" {
			match.ID = uuid.New().String()
		}
		if match.CreatedAt.IsZero() {
			match.CreatedAt = time.Now()
		}

		_, err := a.client.DB().ExecContext(ctx, query,
			match.ID,
			match.TelegramID,
			match.JobID,
			match.SimilarityScore,
			match.CreatedAt,
		)
		if err != nil {
			return apperrors.NewInternalError("failed to record job match", err)
		}
	}

	return nil
}

// ListRecent returns the latest matches recorded for a user, newest first.
func (a *MatchAdapter) ListRecent(ctx context.Context, telegramID int64, limit int) ([]entities.Match, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT m.job_id, m.similarity_score
		FROM job_matches m
		WHERE m.telegram_id = $1
		ORDER BY m.created_at DESC, m.job_id ASC
		LIMIT $2
	`

	rows, err := a.client.DB().QueryContext(ctx, query, telegramID, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list recent matches", err)
	}
	defer rows.Close()

	type matchRow struct {
		jobID int64
		score float64
	}
	var matchRows []matchRow
	for rows.Next() {
		var row matchRow
		if err := rows.Scan(&row.jobID, &row.score); err != nil {
			return nil, apperrors.NewInternalError("failed to scan job match", err)
		}
		matchRows = append(matchRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read job matches", err)
	}

	matches := make([]entities.Match, 0, len(matchRows))
	for _, row := range matchRows {
		job, err := a.jobs.GetByID(ctx, row.jobID)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
				continue
			}
			return nil, err
		}
		matches = append(matches, entities.Match{
			Job:        job,
			Score:      row.score,
			MatchedVia: entities.MatchKindSemantic,
		})
	}

	return matches, nil
}
