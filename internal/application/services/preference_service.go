package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/observability"
	"github.com/firmatch/jobmatch-backend/pkg/normalize"
)

// PreferenceService turns free-text queries into normalized structured
// preferences, with a read-through cache in front of the extraction
// model so repeated queries only pay for one extraction per TTL window.
type PreferenceService struct {
	extractor providers.PreferenceExtractionProvider
	cache     providers.CacheProvider
	cacheTTL  int
}

// NewPreferenceService creates a new preference service. The cache is
// optional; with a nil cache every call goes to the extractor.
func NewPreferenceService(extractor providers.PreferenceExtractionProvider, cache providers.CacheProvider, cacheTTLSeconds int) *PreferenceService {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 86400
	}
	return &PreferenceService{
		extractor: extractor,
		cache:     cache,
		cacheTTL:  cacheTTLSeconds,
	}
}

// Extract returns the structured preferences for a raw query. Cached
// entries are already normalized. Extraction failure surfaces as
// providers.ErrExtractionUnavailable; the caller decides how to degrade.
func (s *PreferenceService) Extract(ctx context.Context, rawQuery string) (*entities.Preferences, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return &entities.Preferences{}, nil
	}

	cacheKey := "prefs:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached entities.Preferences
			if json.Unmarshal(data, &cached) == nil {
				observability.GetLogger().Debug().Str("query", query).Msg("preference cache hit")
				return &cached, nil
			}
		}
	}

	prefs, err := s.extractor.ExtractPreferences(ctx, query)
	if err != nil {
		return nil, err
	}

	normalized := s.normalizePreferences(prefs)

	if s.cache != nil {
		if data, err := json.Marshal(normalized); err == nil {
			// Cache failures only cost a future extraction call.
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Msg("failed to cache preferences")
			}
		}
	}

	return normalized, nil
}

// normalizePreferences canonicalizes every present field. Absent fields
// stay absent; an unknown value passes through in canonical casing.
func (s *PreferenceService) normalizePreferences(prefs *entities.Preferences) *entities.Preferences {
	if prefs == nil {
		return &entities.Preferences{}
	}
	return &entities.Preferences{
		Role:       normalizeField(normalize.FieldRole, prefs.Role),
		Location:   normalizeField(normalize.FieldLocation, prefs.Location),
		Experience: normalizeField(normalize.FieldExperience, prefs.Experience),
		Salary:     normalizeField(normalize.FieldSalary, prefs.Salary),
	}
}

func normalizeField(kind normalize.FieldKind, value *string) *string {
	if value == nil {
		return nil
	}
	normalized := normalize.Normalize(kind, *value)
	if normalized == "" {
		return nil
	}
	return &normalized
}
