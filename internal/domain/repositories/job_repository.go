package repositories

import (
	"context"
	"time"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
)

// ConstraintField names a filterable catalog dimension.
type ConstraintField string

const (
	// FieldRole matches against job_title OR service; it carries the
	// primary intent signal.
	FieldRole ConstraintField = "role"

	FieldLocation  ConstraintField = "location"
	FieldSeniority ConstraintField = "seniority"
	FieldSalary    ConstraintField = "salary"
)

// Constraint is one case-insensitive substring condition. Constraints in
// a query are ANDed together; FieldRole alone fans out as an OR across
// the job_title and service columns.
type Constraint struct {
	Field     ConstraintField
	Substring string
}

// JobRepository is the catalog reader, plus the embedding write-back the
// backfill worker needs.
type JobRepository interface {
	// Query returns jobs matching every constraint, in catalog-default
	// order (date_published descending, id as tie-break). An empty
	// constraint list returns the full catalog.
	Query(ctx context.Context, constraints []Constraint) ([]*entities.Job, error)

	// GetByID retrieves a single job
	GetByID(ctx context.Context, id int64) (*entities.Job, error)

	// ListEmbedded returns jobs that have an embedding, for ranking
	// against a CV vector.
	ListEmbedded(ctx context.Context, limit int) ([]*entities.Job, error)

	// ListNeedingEmbedding returns jobs without an embedding or whose
	// embedding is older than staleBefore.
	ListNeedingEmbedding(ctx context.Context, staleBefore time.Time, limit int) ([]*entities.Job, error)

	// SaveEmbedding persists a freshly computed embedding for a job
	SaveEmbedding(ctx context.Context, jobID int64, vector []float32) error
}
