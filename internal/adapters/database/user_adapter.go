package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/firmatch/jobmatch-backend/pkg/errors"
)

type UserAdapter struct {
	client *postgres.Client
}

func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{client: client}
}

// Upsert inserts a user or refreshes their profile fields.
func (a *UserAdapter) Upsert(ctx context.Context, user *entities.UserProfile) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = EXCLUDED.updated_at
	`

	_, err := a.client.DB().ExecContext(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert user", err)
	}

	return nil
}

func (a *UserAdapter) GetByTelegramID(ctx context.Context, telegramID int64) (*entities.UserProfile, error) {
	query := `
		SELECT telegram_id, username, first_name, last_name, cv_text, cv_embedding, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`

	user := &entities.UserProfile{}
	var username, firstName, lastName, cvText sql.NullString

	err := a.client.DB().QueryRowContext(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&username,
		&firstName,
		&lastName,
		&cvText,
		pq.Array(&user.CVEmbedding),
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.CVText = cvText.String

	return user, nil
}

// SaveCV stores the CV text together with its embedding vector.
func (a *UserAdapter) SaveCV(ctx context.Context, telegramID int64, cvText string, embedding []float32) error {
	query := `
		UPDATE users
		SET cv_text = $2, cv_embedding = $3, updated_at = $4
		WHERE telegram_id = $1
	`

	result, err := a.client.DB().ExecContext(ctx, query,
		telegramID,
		cvText,
		pq.Array(embedding),
		time.Now(),
	)
	if err != nil {
		return apperrors.NewInternalError("failed to save cv", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("user not found")
	}

	return nil
}
