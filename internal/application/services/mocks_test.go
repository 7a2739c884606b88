package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
)

// Mocks

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Query(ctx context.Context, constraints []repositories.Constraint) ([]*entities.Job, error) {
	args := m.Called(ctx, constraints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Job), args.Error(1)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*entities.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Job), args.Error(1)
}

func (m *MockJobRepo) ListEmbedded(ctx context.Context, limit int) ([]*entities.Job, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Job), args.Error(1)
}

func (m *MockJobRepo) ListNeedingEmbedding(ctx context.Context, staleBefore time.Time, limit int) ([]*entities.Job, error) {
	args := m.Called(ctx, staleBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Job), args.Error(1)
}

func (m *MockJobRepo) SaveEmbedding(ctx context.Context, jobID int64, vector []float32) error {
	args := m.Called(ctx, jobID, vector)
	return args.Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *entities.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*entities.UserProfile, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserProfile), args.Error(1)
}

func (m *MockUserRepo) SaveCV(ctx context.Context, telegramID int64, cvText string, embedding []float32) error {
	args := m.Called(ctx, telegramID, cvText, embedding)
	return args.Error(0)
}

type MockSearchLogRepo struct {
	mock.Mock
}

func (m *MockSearchLogRepo) Append(ctx context.Context, log *entities.SearchLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

type MockMatchRepo struct {
	mock.Mock
}

func (m *MockMatchRepo) Record(ctx context.Context, matches []*entities.JobMatch) error {
	args := m.Called(ctx, matches)
	return args.Error(0)
}

func (m *MockMatchRepo) ListRecent(ctx context.Context, telegramID int64, limit int) ([]entities.Match, error) {
	args := m.Called(ctx, telegramID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Match), args.Error(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractPreferences(ctx context.Context, rawQuery string) (*entities.Preferences, error) {
	args := m.Called(ctx, rawQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Preferences), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }
