package providers

import (
	"context"
	"errors"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
)

// ErrExtractionUnavailable signals the text-generation service could not
// be reached or returned something that is not JSON at all. Callers must
// degrade to empty preferences, never fail the search.
var ErrExtractionUnavailable = errors.New("preference extraction unavailable")

// ErrEmbeddingUnavailable signals the embedding service could not be
// reached. Callers must degrade to lexical-only ranking.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// PreferenceExtractionProvider turns raw query text into structured
// preferences. A partial or empty JSON object from the model is a valid
// result; only transport failure or non-JSON output is an error.
type PreferenceExtractionProvider interface {
	ExtractPreferences(ctx context.Context, rawQuery string) (*entities.Preferences, error)
}

// EmbeddingProvider computes one fixed-length vector per text. Vector
// length is stable across calls for a given deployment.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
