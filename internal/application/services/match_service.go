package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/firmatch/jobmatch-backend/internal/domain/entities"
	"github.com/firmatch/jobmatch-backend/internal/domain/providers"
	"github.com/firmatch/jobmatch-backend/internal/domain/repositories"
	"github.com/firmatch/jobmatch-backend/internal/infrastructure/observability"
	apperrors "github.com/firmatch/jobmatch-backend/pkg/errors"
)

// MatchRequest carries one free-text search.
type MatchRequest struct {
	TelegramID int64
	Query      string
	TopK       int

	// ForceSemantic re-ranks even when the lexical tier already fits
	// within TopK.
	ForceSemantic bool
}

// MatchService orchestrates the full pipeline: preference extraction,
// tiered lexical filtering, optional semantic re-ranking, and the
// fire-and-forget bookkeeping around it.
type MatchService struct {
	preferences *PreferenceService
	catalog     *CatalogSearchService
	ranking     *SemanticRankingService
	jobs        repositories.JobRepository
	users       repositories.UserRepository
	searchLogs  repositories.SearchLogRepository
	matches     repositories.MatchRepository
	metrics     *observability.Metrics

	defaultTopK       int
	cvSimilarityFloor float64
}

// NewMatchService creates a new match service. The metrics handle may be
// nil when telemetry export is not configured.
func NewMatchService(
	preferences *PreferenceService,
	catalog *CatalogSearchService,
	ranking *SemanticRankingService,
	jobs repositories.JobRepository,
	users repositories.UserRepository,
	searchLogs repositories.SearchLogRepository,
	matches repositories.MatchRepository,
	metrics *observability.Metrics,
	defaultTopK int,
	cvSimilarityFloor float64,
) *MatchService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &MatchService{
		preferences:       preferences,
		catalog:           catalog,
		ranking:           ranking,
		jobs:              jobs,
		users:             users,
		searchLogs:        searchLogs,
		matches:           matches,
		metrics:           metrics,
		defaultTopK:       defaultTopK,
		cvSimilarityFloor: cvSimilarityFloor,
	}
}

// Match runs one search end to end. Extraction and embedding failures
// degrade the pipeline; only a catalog failure fails the call.
func (s *MatchService) Match(ctx context.Context, req MatchRequest) (*entities.MatchOutcome, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "MatchService.Match")
	defer span.End()

	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	outcome := &entities.MatchOutcome{}

	prefs, err := s.preferences.Extract(ctx, req.Query)
	if err != nil {
		if !errors.Is(err, providers.ErrExtractionUnavailable) {
			observability.RecordError(span, err)
			return nil, err
		}
		// Unfiltered catalog beats no answer at all.
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("preference extraction unavailable, searching unfiltered")
		prefs = &entities.Preferences{}
		outcome.Degraded = true
	}
	outcome.Preferences = prefs

	candidates, relaxed, err := s.catalog.Search(ctx, prefs)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	outcome.RelaxedFields = relaxed

	tier := "lexical"
	if len(candidates) > topK || req.ForceSemantic {
		ranked, err := s.ranking.Rank(ctx, req.Query, candidates, topK)
		switch {
		case err == nil:
			outcome.Matches = fillFromLexical(ranked, candidates, topK)
			tier = "semantic"
		case errors.Is(err, providers.ErrEmbeddingUnavailable):
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("embedding unavailable, keeping lexical order")
			outcome.Matches = lexicalMatches(candidates, topK)
			outcome.Degraded = true
		default:
			observability.RecordError(span, err)
			return nil, err
		}
	} else {
		outcome.Matches = lexicalMatches(candidates, topK)
	}

	s.trackSearch(req, outcome)
	if s.metrics != nil {
		observability.RecordSearchMetric(ctx, s.metrics, tier, outcome.Degraded, len(outcome.Matches), time.Since(start))
	}

	return outcome, nil
}

// MatchCV ranks the embedded catalog against a user's stored CV vector.
// Unlike query ranking this path enforces the similarity floor, so a
// thin catalog can legitimately produce nothing.
func (s *MatchService) MatchCV(ctx context.Context, telegramID int64, topK int) ([]entities.Match, error) {
	ctx, span := observability.StartSpan(ctx, "MatchService.MatchCV")
	defer span.End()

	if topK <= 0 {
		topK = s.defaultTopK
	}

	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if !user.HasCV() {
		return nil, apperrors.NewValidationError("user has no stored cv")
	}

	candidates, err := s.jobs.ListEmbedded(ctx, 0)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewUnavailableError("job catalog unavailable", err)
	}

	matches := s.ranking.RankByVector(user.CVEmbedding, candidates, topK, s.cvSimilarityFloor)
	s.recordMatches(telegramID, matches)
	return matches, nil
}

// RecentMatches replays a user's latest recorded matches.
func (s *MatchService) RecentMatches(ctx context.Context, telegramID int64, limit int) ([]entities.Match, error) {
	return s.matches.ListRecent(ctx, telegramID, limit)
}

// fillFromLexical pads a ranked result with the candidates the ranker
// skipped for lacking a stored embedding, in catalog order, until topK
// or the candidate set is exhausted. Rows the lexical tier found stay
// in the answer even when the backfill worker has not reached them yet.
func fillFromLexical(ranked []entities.Match, candidates []*entities.Job, topK int) []entities.Match {
	if topK <= 0 || len(ranked) >= topK {
		return ranked
	}
	rankedIDs := make(map[int64]struct{}, len(ranked))
	for _, match := range ranked {
		rankedIDs[match.Job.ID] = struct{}{}
	}
	for _, job := range candidates {
		if len(ranked) >= topK {
			break
		}
		if _, ok := rankedIDs[job.ID]; ok {
			continue
		}
		ranked = append(ranked, entities.Match{
			Job:        job,
			MatchedVia: entities.MatchKindLexical,
		})
	}
	return ranked
}

func lexicalMatches(candidates []*entities.Job, topK int) []entities.Match {
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	matches := make([]entities.Match, 0, len(candidates))
	for _, job := range candidates {
		matches = append(matches, entities.Match{
			Job:        job,
			MatchedVia: entities.MatchKindLexical,
		})
	}
	return matches
}

// trackSearch persists the query log and any semantic match rows in the
// background; bookkeeping never blocks or fails a search.
func (s *MatchService) trackSearch(req MatchRequest, outcome *entities.MatchOutcome) {
	entry := &entities.SearchLog{
		TelegramID:  req.TelegramID,
		Query:       req.Query,
		Preferences: outcome.Preferences,
	}

	var rows []*entities.JobMatch
	for _, match := range outcome.Matches {
		if match.MatchedVia != entities.MatchKindSemantic {
			continue
		}
		rows = append(rows, &entities.JobMatch{
			TelegramID:      req.TelegramID,
			JobID:           match.Job.ID,
			SimilarityScore: match.Score,
		})
	}

	go func() {
		// Use a fresh context since the request context might be cancelled
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.searchLogs.Append(bgCtx, entry); err != nil {
			log.Printf("Warning: failed to log search: %v", err)
		}
		if len(rows) > 0 {
			if err := s.matches.Record(bgCtx, rows); err != nil {
				log.Printf("Warning: failed to record matches: %v", err)
			}
		}
	}()
}

func (s *MatchService) recordMatches(telegramID int64, matches []entities.Match) {
	if len(matches) == 0 {
		return
	}
	rows := make([]*entities.JobMatch, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, &entities.JobMatch{
			TelegramID:      telegramID,
			JobID:           match.Job.ID,
			SimilarityScore: match.Score,
		})
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.matches.Record(bgCtx, rows); err != nil {
			log.Printf("Warning: failed to record cv matches: %v", err)
		}
	}()
}
