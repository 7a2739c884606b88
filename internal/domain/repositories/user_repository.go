package repositories

import (
	"context"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
)

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	// Upsert creates or refreshes a user profile
	Upsert(ctx context.Context, user *entities.UserProfile) error

	// GetByTelegramID retrieves a user profile
	GetByTelegramID(ctx context.Context, telegramID int64) (*entities.UserProfile, error)

	// SaveCV stores CV text and its embedding on the profile
	SaveCV(ctx context.Context, telegramID int64, cvText string, embedding []float32) error
}
