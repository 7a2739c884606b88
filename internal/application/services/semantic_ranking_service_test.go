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

func embeddedJob(id int64, vector []float32) *entities.Job {
	return &entities.Job{ID: id, JobTitle: "job", Embedding: vector}
}

func TestRank_OrdersBySimilarity(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, "audit jobs").
		Return([]float32{1, 0}, nil).Once()

	candidates := []*entities.Job{
		embeddedJob(1, []float32{0, 1}), // orthogonal
		embeddedJob(2, []float32{1, 0}), // identical direction
		embeddedJob(3, []float32{1, 1}), // in between
	}

	svc := NewSemanticRankingService(embedder)
	matches, err := svc.Rank(context.Background(), "audit jobs", candidates, 0)
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, int64(2), matches[0].Job.ID)
	assert.Equal(t, int64(3), matches[1].Job.ID)
	assert.Equal(t, int64(1), matches[2].Job.ID)
	assert.Equal(t, entities.MatchKindSemantic, matches[0].MatchedVia)

	// Exactly one embedding call for the whole invocation.
	embedder.AssertNumberOfCalls(t, "Embed", 1)
}

func TestRank_TiesKeepCatalogOrder(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).
		Return([]float32{1, 0}, nil)

	// Same vector scaled: cosine similarity is identical.
	candidates := []*entities.Job{
		embeddedJob(10, []float32{2, 0}),
		embeddedJob(20, []float32{4, 0}),
		embeddedJob(30, []float32{1, 0}),
	}

	svc := NewSemanticRankingService(embedder)
	matches, err := svc.Rank(context.Background(), "q", candidates, 0)
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, int64(10), matches[0].Job.ID)
	assert.Equal(t, int64(20), matches[1].Job.ID)
	assert.Equal(t, int64(30), matches[2].Job.ID)
}

func TestRank_TruncatesToTopK(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).
		Return([]float32{1, 0}, nil)

	candidates := []*entities.Job{
		embeddedJob(1, []float32{1, 0}),
		embeddedJob(2, []float32{1, 1}),
		embeddedJob(3, []float32{0, 1}),
	}

	svc := NewSemanticRankingService(embedder)
	matches, err := svc.Rank(context.Background(), "q", candidates, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].Job.ID)
}

func TestRank_ExcludesCandidatesWithoutEmbedding(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).
		Return([]float32{1, 0}, nil)

	candidates := []*entities.Job{
		embeddedJob(1, nil),
		embeddedJob(2, []float32{1, 0}),
	}

	svc := NewSemanticRankingService(embedder)
	matches, err := svc.Rank(context.Background(), "q", candidates, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(2), matches[0].Job.ID)
}

func TestRank_EmbeddingFailurePropagates(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("Embed", mock.Anything, mock.Anything).
		Return(nil, providers.ErrEmbeddingUnavailable)

	svc := NewSemanticRankingService(embedder)
	_, err := svc.Rank(context.Background(), "q", []*entities.Job{embeddedJob(1, []float32{1})}, 0)
	assert.True(t, errors.Is(err, providers.ErrEmbeddingUnavailable))
}

func TestRankByVector_AppliesSimilarityFloor(t *testing.T) {
	candidates := []*entities.Job{
		embeddedJob(1, []float32{1, 0}),
		embeddedJob(2, []float32{0, 1}),
	}

	svc := NewSemanticRankingService(new(MockEmbedder))
	matches := svc.RankByVector([]float32{1, 0}, candidates, 0, 0.7)

	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].Job.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs score zero instead of dividing by zero.
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
