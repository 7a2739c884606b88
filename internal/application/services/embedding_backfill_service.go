package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
)

const (
	DefaultBackfillBatchSize = 50
	DefaultEmbeddingMaxAge   = 7 * 24 * time.Hour
)

type BackfillSummary struct {
	TotalProcessed int
	SuccessCount   int
	FailureCount   int
}

// EmbeddingBackfillService keeps catalog embeddings fresh. It computes
// vectors for jobs that have none, or whose vector is older than the
// staleness window, fanning the embedding calls out over a worker pool.
type EmbeddingBackfillService struct {
	jobs        repositories.JobRepository
	embedder    providers.EmbeddingProvider
	workerCount int
	batchSize   int
	maxAge      time.Duration
}

func NewEmbeddingBackfillService(
	jobs repositories.JobRepository,
	embedder providers.EmbeddingProvider,
	workers int,
	batchSize int,
	maxAge time.Duration,
) *EmbeddingBackfillService {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = DefaultBackfillBatchSize
	}
	if maxAge <= 0 {
		maxAge = DefaultEmbeddingMaxAge
	}
	return &EmbeddingBackfillService{
		jobs:        jobs,
		embedder:    embedder,
		workerCount: workers,
		batchSize:   batchSize,
		maxAge:      maxAge,
	}
}

// BackfillAll embeds every job that needs it and reports counts. A
// single job failing only counts against the summary; the run continues.
func (s *EmbeddingBackfillService) BackfillAll(ctx context.Context) (*BackfillSummary, error) {
	summary := &BackfillSummary{}
	var processed, success, failure int64

	jobChan := make(chan *entities.Job, s.batchSize)
	var wg sync.WaitGroup

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				err := s.BackfillSingle(ctx, job)
				atomic.AddInt64(&processed, 1)
				if err != nil {
					atomic.AddInt64(&failure, 1)
					log.Printf("Failed to embed job %d: %v", job.ID, err)
				} else {
					atomic.AddInt64(&success, 1)
				}
			}
		}()
	}

	staleBefore := time.Now().Add(-s.maxAge)
	seen := make(map[int64]struct{})

	for {
		jobs, err := s.jobs.ListNeedingEmbedding(ctx, staleBefore, s.batchSize)
		if err != nil {
			close(jobChan)
			wg.Wait()
			return nil, fmt.Errorf("failed to list jobs needing embedding: %w", err)
		}

		// Failed jobs still look stale on the next listing; stop once a
		// batch brings nothing new.
		fresh := 0
		for _, job := range jobs {
			if _, done := seen[job.ID]; done {
				continue
			}
			seen[job.ID] = struct{}{}
			fresh++

			select {
			case jobChan <- job:
			case <-ctx.Done():
				close(jobChan)
				wg.Wait()
				return nil, ctx.Err()
			}
		}

		if fresh == 0 || len(jobs) < s.batchSize {
			break
		}
	}

	close(jobChan)
	wg.Wait()

	summary.TotalProcessed = int(processed)
	summary.SuccessCount = int(success)
	summary.FailureCount = int(failure)

	return summary, nil
}

// BackfillSingle computes and stores the embedding for one job.
func (s *EmbeddingBackfillService) BackfillSingle(ctx context.Context, job *entities.Job) error {
	text := job.EmbeddingText()
	if text == "" {
		return fmt.Errorf("job %d has no embeddable text", job.ID)
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed job %d: %w", job.ID, err)
	}

	if err := s.jobs.SaveEmbedding(ctx, job.ID, vector); err != nil {
		return fmt.Errorf("failed to save embedding for job %d: %w", job.ID, err)
	}

	return nil
}
