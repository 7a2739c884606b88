package services

import (
	"context"
	"math"
	"sort"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
)

// SemanticRankingService re-ranks lexical candidates by embedding
// similarity. It makes exactly one embedding call per invocation, for
// the query text; candidate vectors come precomputed from the catalog.
type SemanticRankingService struct {
	embedder providers.EmbeddingProvider
}

// NewSemanticRankingService creates a new semantic ranking service
func NewSemanticRankingService(embedder providers.EmbeddingProvider) *SemanticRankingService {
	return &SemanticRankingService{embedder: embedder}
}

// Rank embeds the query text and orders candidates by cosine similarity,
// highest first, truncated to topK. Candidates without an embedding are
// excluded. Embedding failure surfaces as ErrEmbeddingUnavailable so the
// caller can fall back to lexical order.
func (s *SemanticRankingService) Rank(ctx context.Context, queryText string, candidates []*entities.Job, topK int) ([]entities.Match, error) {
	queryVector, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}
	return s.RankByVector(queryVector, candidates, topK, 0), nil
}

// RankByVector orders candidates against an existing vector, dropping
// anything below minSimilarity. A zero floor keeps every candidate.
func (s *SemanticRankingService) RankByVector(queryVector []float32, candidates []*entities.Job, topK int, minSimilarity float64) []entities.Match {
	matches := make([]entities.Match, 0, len(candidates))
	for _, job := range candidates {
		if !job.HasEmbedding() {
			continue
		}
		score := cosineSimilarity(queryVector, job.Embedding)
		if minSimilarity > 0 && score < minSimilarity {
			continue
		}
		matches = append(matches, entities.Match{
			Job:        job,
			Score:      score,
			MatchedVia: entities.MatchKindSemantic,
		})
	}

	// Stable sort so equal scores keep catalog order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// EmbedText exposes the underlying embedder for callers that need a raw
// vector, like CV ingestion.
func (s *SemanticRankingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return s.embedder.Embed(ctx, text)
}

// cosineSimilarity computes cosine similarity between two vectors,
// accumulating in float64. Mismatched lengths or a zero-norm vector
// score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
