package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
)

func TestPreferenceService_ExtractNormalizesFields(t *testing.T) {
	extractor := new(MockExtractor)
	extractor.On("ExtractPreferences", mock.Anything, "senior audit jobs in nyc").
		Return(&entities.Preferences{
			Role:       strPtr("IT Audit"),
			Location:   strPtr("NYC"),
			Experience: strPtr("Experienced"),
		}, nil)

	svc := NewPreferenceService(extractor, nil, 0)
	prefs, err := svc.Extract(context.Background(), "senior audit jobs in nyc")
	require.NoError(t, err)

	require.NotNil(t, prefs.Role)
	assert.Equal(t, "technology audit", *prefs.Role)
	require.NotNil(t, prefs.Location)
	assert.Equal(t, "new york", *prefs.Location)
	require.NotNil(t, prefs.Experience)
	assert.Equal(t, "senior", *prefs.Experience)
	assert.Nil(t, prefs.Salary)

	extractor.AssertExpectations(t)
}

func TestPreferenceService_EmptyQuerySkipsExtractor(t *testing.T) {
	extractor := new(MockExtractor)

	svc := NewPreferenceService(extractor, nil, 0)
	prefs, err := svc.Extract(context.Background(), "   ")
	require.NoError(t, err)
	assert.True(t, prefs.IsEmpty())

	extractor.AssertNotCalled(t, "ExtractPreferences", mock.Anything, mock.Anything)
}

func TestPreferenceService_CacheHitSkipsExtractor(t *testing.T) {
	extractor := new(MockExtractor)
	cache := new(MockCache)
	cache.On("Get", mock.Anything, "prefs:audit jobs").
		Return([]byte(`{"role":"audit"}`), nil)

	svc := NewPreferenceService(extractor, cache, 3600)
	prefs, err := svc.Extract(context.Background(), "Audit Jobs")
	require.NoError(t, err)
	require.NotNil(t, prefs.Role)
	assert.Equal(t, "audit", *prefs.Role)

	extractor.AssertNotCalled(t, "ExtractPreferences", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestPreferenceService_CacheMissExtractsAndStores(t *testing.T) {
	extractor := new(MockExtractor)
	extractor.On("ExtractPreferences", mock.Anything, "audit jobs").
		Return(&entities.Preferences{Role: strPtr("audit")}, nil)

	cache := new(MockCache)
	cache.On("Get", mock.Anything, "prefs:audit jobs").
		Return(nil, errors.New("key not found"))
	cache.On("Set", mock.Anything, "prefs:audit jobs", mock.Anything, 3600).
		Return(nil)

	svc := NewPreferenceService(extractor, cache, 3600)
	prefs, err := svc.Extract(context.Background(), "audit jobs")
	require.NoError(t, err)
	require.NotNil(t, prefs.Role)
	assert.Equal(t, "audit", *prefs.Role)

	extractor.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestPreferenceService_CacheWriteFailureIsNotFatal(t *testing.T) {
	extractor := new(MockExtractor)
	extractor.On("ExtractPreferences", mock.Anything, "audit jobs").
		Return(&entities.Preferences{Role: strPtr("audit")}, nil)

	cache := new(MockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("down"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("down"))

	svc := NewPreferenceService(extractor, cache, 3600)
	prefs, err := svc.Extract(context.Background(), "audit jobs")
	require.NoError(t, err)
	assert.NotNil(t, prefs.Role)
}

func TestPreferenceService_ExtractionFailurePropagates(t *testing.T) {
	extractor := new(MockExtractor)
	extractor.On("ExtractPreferences", mock.Anything, "audit jobs").
		Return(nil, providers.ErrExtractionUnavailable)

	svc := NewPreferenceService(extractor, nil, 0)
	_, err := svc.Extract(context.Background(), "audit jobs")
	assert.True(t, errors.Is(err, providers.ErrExtractionUnavailable))
}
