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

type SearchLogAdapter struct {
	client *postgres.Client
}

func NewSearchLogAdapter(client *postgres.Client) repositories.SearchLogRepository {
	return &SearchLogAdapter{client: client}
}

func (a *SearchLogAdapter) Append(ctx context.Context, entry *entities.SearchLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	preferences := "{}"
	if entry.Preferences != nil {
		preferences = entry.Preferences.MarshalString()
	}

	query := `
		INSERT INTO search_logs
		(id, telegram_id, search_query, structured_preferences, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		entry.ID,
		entry.TelegramID,
		entry.Query,
		preferences,
		entry.CreatedAt,
	)

	if err != nil {
		return apperrors.NewInternalError("failed to log search", err)
	}

	return nil
}
