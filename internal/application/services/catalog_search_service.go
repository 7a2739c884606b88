package services

import (
	"context"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/observability"
	apperrors "github.com/firmatch/jobmatch-backend/pkg/errors"
)

// relaxationOrder is the fixed order in which constraints are dropped
// when the strict tier comes back empty. The role constraint is never
// dropped automatically; it carries the primary intent.
var relaxationOrder = []repositories.ConstraintField{
	repositories.FieldSeniority,
	repositories.FieldSalary,
	repositories.FieldLocation,
}

// CatalogSearchService runs the tiered lexical filter over the job
// catalog: first all constraints at once, then progressively fewer.
type CatalogSearchService struct {
	jobs repositories.JobRepository
}

// NewCatalogSearchService creates a new catalog search service
func NewCatalogSearchService(jobs repositories.JobRepository) *CatalogSearchService {
	return &CatalogSearchService{jobs: jobs}
}

// Search returns the candidate jobs for a set of preferences, plus the
// names of any preference fields the fallback tier had to drop, in drop
// order. An empty candidate list is a valid outcome; a catalog failure
// is not, and surfaces as an unavailable error.
func (s *CatalogSearchService) Search(ctx context.Context, prefs *entities.Preferences) ([]*entities.Job, []string, error) {
	constraints := buildConstraints(prefs)

	jobs, err := s.jobs.Query(ctx, constraints)
	if err != nil {
		return nil, nil, catalogError(err)
	}
	if len(jobs) > 0 || len(constraints) == 0 {
		return jobs, nil, nil
	}

	// Strict tier came back empty: drop constraints one at a time and
	// retry. Fields the user never expressed are skipped silently. The
	// last tier is role-only when a role is present, otherwise the full
	// catalog.
	var relaxed []string
	remaining := constraints
	for _, field := range relaxationOrder {
		next := withoutField(remaining, field)
		if len(next) == len(remaining) {
			continue
		}
		relaxed = append(relaxed, preferenceFieldName(field))
		remaining = next

		jobs, err = s.jobs.Query(ctx, remaining)
		if err != nil {
			return nil, nil, catalogError(err)
		}
		if len(jobs) > 0 {
			observability.GetLogger().Debug().
				Strs("relaxed_fields", relaxed).
				Int("candidates", len(jobs)).
				Msg("fallback tier matched")
			return jobs, relaxed, nil
		}
	}

	return jobs, relaxed, nil
}

// catalogError classifies a repository failure. A constraint the
// adapter rejects is a programming error and surfaces as-is; anything
// else means the catalog cannot answer.
func catalogError(err error) error {
	if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		return err
	}
	return apperrors.NewUnavailableError("job catalog unavailable", err)
}

func buildConstraints(prefs *entities.Preferences) []repositories.Constraint {
	if prefs == nil {
		return nil
	}
	var constraints []repositories.Constraint
	if prefs.Role != nil {
		constraints = append(constraints, repositories.Constraint{Field: repositories.FieldRole, Substring: *prefs.Role})
	}
	if prefs.Location != nil {
		constraints = append(constraints, repositories.Constraint{Field: repositories.FieldLocation, Substring: *prefs.Location})
	}
	if prefs.Experience != nil {
		constraints = append(constraints, repositories.Constraint{Field: repositories.FieldSeniority, Substring: *prefs.Experience})
	}
	if prefs.Salary != nil {
		constraints = append(constraints, repositories.Constraint{Field: repositories.FieldSalary, Substring: *prefs.Salary})
	}
	return constraints
}

func withoutField(constraints []repositories.Constraint, field repositories.ConstraintField) []repositories.Constraint {
	result := make([]repositories.Constraint, 0, len(constraints))
	for _, c := range constraints {
		if c.Field != field {
			result = append(result, c)
		}
	}
	return result
}

// preferenceFieldName maps a catalog constraint back to the preference
// field the user expressed, for reporting which ones were relaxed.
func preferenceFieldName(field repositories.ConstraintField) string {
	if field == repositories.FieldSeniority {
		return "experience"
	}
	return string(field)
}
