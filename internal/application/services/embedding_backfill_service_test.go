package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
)

func staleJob(id int64) *entities.Job {
	return &entities.Job{ID: id, JobTitle: "Auditor", Location: "Boston"}
}

func TestBackfillAll_EmbedsEveryStaleJob(t *testing.T) {
	repo := new(MockJobRepo)
	embedder := new(MockEmbedder)

	jobs := []*entities.Job{staleJob(1), staleJob(2), staleJob(3)}
	repo.On("ListNeedingEmbedding", mock.Anything, mock.Anything, 50).
		Return(jobs, nil).Once()

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5, 0.5}, nil)
	repo.On("SaveEmbedding", mock.Anything, mock.Anything, []float32{0.5, 0.5}).Return(nil)

	svc := NewEmbeddingBackfillService(repo, embedder, 2, 50, 7*24*time.Hour)
	summary, err := svc.BackfillAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 3, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailureCount)
	repo.AssertNumberOfCalls(t, "SaveEmbedding", 3)
}

func TestBackfillAll_CountsFailuresAndContinues(t *testing.T) {
	repo := new(MockJobRepo)
	embedder := new(MockEmbedder)

	jobs := []*entities.Job{staleJob(1), staleJob(2)}
	repo.On("ListNeedingEmbedding", mock.Anything, mock.Anything, 50).
		Return(jobs, nil).Once()

	embedder.On("Embed", mock.Anything, staleJob(1).EmbeddingText()).
		Return(nil, errors.New("rate limited")).Once()
	embedder.On("Embed", mock.Anything, staleJob(2).EmbeddingText()).
		Return([]float32{1}, nil)
	repo.On("SaveEmbedding", mock.Anything, int64(2), []float32{1}).Return(nil)

	svc := NewEmbeddingBackfillService(repo, embedder, 1, 50, 0)
	summary, err := svc.BackfillAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalProcessed)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
}

func TestBackfillAll_StopsWhenListingRepeats(t *testing.T) {
	repo := new(MockJobRepo)
	embedder := new(MockEmbedder)

	// The same failing job keeps coming back from the listing; the run
	// must terminate instead of retrying it forever.
	full := make([]*entities.Job, 0, 2)
	for i := int64(1); i <= 2; i++ {
		full = append(full, staleJob(i))
	}
	repo.On("ListNeedingEmbedding", mock.Anything, mock.Anything, 2).
		Return(full, nil)

	embedder.On("Embed", mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited"))

	svc := NewEmbeddingBackfillService(repo, embedder, 1, 2, 0)
	summary, err := svc.BackfillAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalProcessed)
	assert.Equal(t, 2, summary.FailureCount)
}

func TestBackfillSingle_SkipsJobWithoutText(t *testing.T) {
	repo := new(MockJobRepo)
	embedder := new(MockEmbedder)

	svc := NewEmbeddingBackfillService(repo, embedder, 1, 50, 0)
	err := svc.BackfillSingle(context.Background(), &entities.Job{ID: 5})
	require.Error(t, err)

	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestBackfillSingle_SavesComputedVector(t *testing.T) {
	repo := new(MockJobRepo)
	embedder := new(MockEmbedder)

	job := staleJob(9)
	embedder.On("Embed", mock.Anything, job.EmbeddingText()).
		Return([]float32{0.1, 0.2}, nil).Once()
	repo.On("SaveEmbedding", mock.Anything, int64(9), []float32{0.1, 0.2}).
		Return(nil).Once()

	svc := NewEmbeddingBackfillService(repo, embedder, 1, 50, 0)
	err := svc.BackfillSingle(context.Background(), job)
	require.NoError(t, err)

	repo.AssertExpectations(t)
	embedder.AssertExpectations(t)
}
