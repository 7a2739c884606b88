package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/firmatch/jobmatch-backend/pkg/errors"
)

// JobAdapter implements JobRepository
type JobAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewJobAdapter creates a new job adapter
func NewJobAdapter(client *postgres.Client) repositories.JobRepository {
	return &JobAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var jobColumns = []interface{}{
	"j.id", "j.firm_id", "f.name", "j.job_title", "j.seniority", "j.service",
	"j.industry", "j.location", "j.employment", "j.salary", "j.description",
	"j.link", "j.date_published", "j.created_at", "j.embedding",
}

func (a *JobAdapter) baseQuery() *goqu.SelectDataset {
	return a.db.Select(jobColumns...).
		From(goqu.T("jobs").As("j")).
		LeftJoin(
			goqu.T("firms").As("f"),
			goqu.On(goqu.I("j.firm_id").Eq(goqu.I("f.id"))),
		)
}

// Query returns all jobs matching every constraint, newest first.
// An empty constraint list returns the whole catalog.
func (a *JobAdapter) Query(ctx context.Context, constraints []repositories.Constraint) ([]*entities.Job, error) {
	ds := a.baseQuery()

	for _, constraint := range constraints {
		pattern := "%" + constraint.Substring + "%"
		switch constraint.Field {
		case repositories.FieldRole:
			// A role can match either the title or the service line.
			ds = ds.Where(goqu.Or(
				goqu.I("j.job_title").ILike(pattern),
				goqu.I("j.service").ILike(pattern),
			))
		case repositories.FieldLocation:
			ds = ds.Where(goqu.I("j.location").ILike(pattern))
		case repositories.FieldSeniority:
			ds = ds.Where(goqu.I("j.seniority").ILike(pattern))
		case repositories.FieldSalary:
			ds = ds.Where(goqu.I("j.salary").ILike(pattern))
		default:
			return nil, apperrors.NewValidationError("unknown constraint field: " + string(constraint.Field))
		}
	}

	ds = ds.Order(
		goqu.I("j.date_published").Desc().NullsLast(),
		goqu.I("j.id").Asc(),
	)

	return a.queryJobs(ctx, ds)
}

// GetByID retrieves a single job
func (a *JobAdapter) GetByID(ctx context.Context, id int64) (*entities.Job, error) {
	ds := a.baseQuery().Where(goqu.I("j.id").Eq(id))

	jobs, err := a.queryJobs(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, apperrors.NewNotFoundError("job not found")
	}
	return jobs[0], nil
}

// ListEmbedded returns jobs that already carry an embedding vector
func (a *JobAdapter) ListEmbedded(ctx context.Context, limit int) ([]*entities.Job, error) {
	ds := a.baseQuery().
		Where(goqu.I("j.embedding").IsNotNull()).
		Order(
			goqu.I("j.date_published").Desc().NullsLast(),
			goqu.I("j.id").Asc(),
		)
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	return a.queryJobs(ctx, ds)
}

// ListNeedingEmbedding returns jobs whose embedding is missing or older
// than the given cutoff, oldest first so stale rows drain steadily.
func (a *JobAdapter) ListNeedingEmbedding(ctx context.Context, staleBefore time.Time, limit int) ([]*entities.Job, error) {
	ds := a.baseQuery().
		Where(goqu.Or(
			goqu.I("j.embedding").IsNull(),
			goqu.I("j.embedding_updated_at").IsNull(),
			goqu.I("j.embedding_updated_at").Lt(staleBefore),
		)).
		Order(goqu.I("j.embedding_updated_at").Asc().NullsFirst(), goqu.I("j.id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	return a.queryJobs(ctx, ds)
}

// SaveEmbedding stores a freshly computed vector for a job
func (a *JobAdapter) SaveEmbedding(ctx context.Context, jobID int64, vector []float32) error {
	query, args, err := a.db.Update("jobs").
		Set(goqu.Record{
			"embedding":            pq.Array(vector),
			"embedding_updated_at": time.Now().UTC(),
		}).
		Where(goqu.I("id").Eq(jobID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build embedding update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to save job embedding", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("job not found")
	}
	return nil
}

func (a *JobAdapter) queryJobs(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Job, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build job query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query jobs", err)
	}
	defer rows.Close()

	jobs := []*entities.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read job rows", err)
	}

	return jobs, nil
}

func scanJob(rows *sql.Rows) (*entities.Job, error) {
	job := &entities.Job{}
	var firmName, seniority, service, industry, location sql.NullString
	var employment, salary, description, link sql.NullString
	var datePublished sql.NullTime

	err := rows.Scan(
		&job.ID,
		&job.FirmID,
		&firmName,
		&job.JobTitle,
		&seniority,
		&service,
		&industry,
		&location,
		&employment,
		&salary,
		&description,
		&link,
		&datePublished,
		&job.CreatedAt,
		pq.Array(&job.Embedding),
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan job", err)
	}

	job.FirmName = firmName.String
	job.Seniority = seniority.String
	job.Service = service.String
	job.Industry = industry.String
	job.Location = location.String
	job.Employment = employment.String
	job.Salary = salary.String
	job.Description = description.String
	job.Link = link.String
	if datePublished.Valid {
		published := datePublished.Time
		job.DatePublished = &published
	}

	return job, nil
}
