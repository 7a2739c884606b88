package services

import (
	"context"
	"strings"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
	apperrors "github.com/firmatch/jobmatch-backend/pkg/errors"
)

// CVProfileService manages user profiles and their CV embeddings.
type CVProfileService struct {
	users    repositories.UserRepository
	embedder providers.EmbeddingProvider
}

func NewCVProfileService(users repositories.UserRepository, embedder providers.EmbeddingProvider) *CVProfileService {
	return &CVProfileService{
		users:    users,
		embedder: embedder,
	}
}

// Register creates or refreshes a user profile.
func (s *CVProfileService) Register(ctx context.Context, user *entities.UserProfile) error {
	if user == nil || user.TelegramID == 0 {
		return apperrors.NewValidationError("telegram id is required")
	}
	return s.users.Upsert(ctx, user)
}

// SaveCV embeds the CV text and stores both on the profile. Unlike
// search-time embedding there is no degraded path here; a CV without a
// vector would silently break CV matching later.
func (s *CVProfileService) SaveCV(ctx context.Context, telegramID int64, cvText string) error {
	cvText = strings.TrimSpace(cvText)
	if cvText == "" {
		return apperrors.NewValidationError("cv text is empty")
	}

	vector, err := s.embedder.Embed(ctx, cvText)
	if err != nil {
		return apperrors.NewUnavailableError("failed to embed cv", err)
	}

	return s.users.SaveCV(ctx, telegramID, cvText, vector)
}

// GetProfile returns a user profile.
func (s *CVProfileService) GetProfile(ctx context.Context, telegramID int64) (*entities.UserProfile, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}
