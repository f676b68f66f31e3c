// Package matching runs the scoring pipeline: load a structured bottleneck,
// score it against every candidate experience in batches, and persist the
// results for operator review.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/metrics"
	"github.com/sanctuary-network/backend/internal/prompts"
	"github.com/sanctuary-network/backend/internal/schema"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/pkg/config"
	"github.com/sanctuary-network/backend/pkg/logger"
)

// ErrRunInProgress is returned when a matching run is already active for the
// same bottleneck.
var ErrRunInProgress = errors.New("matching run already in progress")

// Store is the persistence surface the orchestrator needs.
type Store interface {
	FeedbackSource
	GetBottleneck(id string) (*models.Bottleneck, error)
	UpdateBottleneckStatus(id, status string) error
	ListCandidateExperiences() ([]models.CandidateExperience, error)
	GetMatchByPair(bottleneckID, experienceID string) (*models.Match, error)
	UpsertMatch(m *models.Match) error
}

// BatchScorer scores a batch of candidates against one bottleneck.
type BatchScorer interface {
	MatchBatch(ctx context.Context, bottleneck schema.StructuredBottleneck, candidates []prompts.ScoringCandidate) ([]schema.BatchMatchResult, error)
}

type Orchestrator struct {
	store  Store
	scorer BatchScorer
	cfg    config.MatchingConfig

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewOrchestrator(store Store, scorer BatchScorer, cfg config.MatchingConfig) *Orchestrator {
	return &Orchestrator{
		store:    store,
		scorer:   scorer,
		cfg:      cfg,
		inflight: make(map[string]struct{}),
	}
}

func (o *Orchestrator) acquire(bottleneckID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[bottleneckID]; busy {
		return false
	}
	o.inflight[bottleneckID] = struct{}{}
	return true
}

func (o *Orchestrator) release(bottleneckID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, bottleneckID)
}

// GenerateMatches runs the full pipeline for one bottleneck and returns the
// top matches by score. At most one run per bottleneck executes at a time;
// a concurrent call returns ErrRunInProgress. The bottleneck must already be
// structured.
func (o *Orchestrator) GenerateMatches(ctx context.Context, bottleneckID string) ([]models.Match, error) {
	if !o.acquire(bottleneckID) {
		return nil, ErrRunInProgress
	}
	defer o.release(bottleneckID)

	start := time.Now()

	matches, err := o.run(ctx, bottleneckID)
	if err != nil {
		metrics.MatchingRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.MatchingRunsTotal.WithLabelValues("success").Inc()
	metrics.MatchingRunDuration.Observe(time.Since(start).Seconds())

	logger.Info("Matching run complete",
		zap.String("bottleneck_id", bottleneckID),
		zap.Int("matches", len(matches)),
		zap.Duration("duration", time.Since(start)),
	)

	return matches, nil
}

func (o *Orchestrator) run(ctx context.Context, bottleneckID string) ([]models.Match, error) {
	bottleneck, err := o.store.GetBottleneck(bottleneckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bottleneck: %w", err)
	}

	if bottleneck.Structured == nil {
		return nil, apperrors.ErrNotStructured
	}

	var structured schema.StructuredBottleneck
	if err := json.Unmarshal([]byte(*bottleneck.Structured), &structured); err != nil {
		return nil, fmt.Errorf("failed to decode structured bottleneck: %w", err)
	}

	candidates, err := o.loadCandidates()
	if err != nil {
		return nil, err
	}

	metrics.CandidatesScored.Observe(float64(len(candidates)))

	// Nothing to score: return empty without touching the bottleneck status.
	if len(candidates) == 0 {
		logger.Info("No candidate experiences available", zap.String("bottleneck_id", bottleneckID))
		return nil, nil
	}

	if err := o.store.UpdateBottleneckStatus(bottleneckID, models.BottleneckMatching); err != nil {
		return nil, fmt.Errorf("failed to mark bottleneck matching: %w", err)
	}

	// Adjusted weights are computed for observability; the scoring prompt
	// carries the baseline weights until prompt-side weight injection lands.
	weights, adjusted := AdjustedWeights(o.store)
	logger.Info("Dimension weights for run",
		zap.String("bottleneck_id", bottleneckID),
		zap.Bool("adjusted", adjusted),
		zap.Float64("problem_shape", weights.ProblemShapeSimilarity),
		zap.Float64("constraint", weights.ConstraintAlignment),
		zap.Float64("stage", weights.StageRelevance),
		zap.Float64("depth", weights.ExperienceDepth),
		zap.Float64("recency", weights.Recency),
	)

	results, err := o.scoreInBatches(ctx, structured, candidates)
	if err != nil {
		return nil, err
	}

	mentorNames := make(map[string]string, len(candidates))
	for _, c := range candidates {
		mentorNames[c.MentorID] = c.MentorName
	}

	runMatches := make([]models.Match, 0, len(results))
	for _, r := range results {
		if r.Score < o.cfg.MinScoreThreshold {
			continue
		}

		if skip, err := o.shouldSkipOverwrite(bottleneckID, r.ExperienceID); err != nil {
			return nil, err
		} else if skip {
			continue
		}

		reasoning, err := json.Marshal(r.Reasoning)
		if err != nil {
			return nil, fmt.Errorf("failed to encode reasoning: %w", err)
		}

		match := &models.Match{
			ID:           uuid.NewString(),
			BottleneckID: bottleneckID,
			ExperienceID: r.ExperienceID,
			MentorID:     r.MentorID,
			Score:        r.Score,
			Confidence:   r.Confidence,
			Reasoning:    string(reasoning),
			Explanation:  r.Explanation,
		}

		if err := o.store.UpsertMatch(match); err != nil {
			return nil, fmt.Errorf("failed to persist match: %w", err)
		}

		// The upsert keeps the existing row id and operator decision on a
		// rematch, so re-read the canonical row for the response.
		canonical, err := o.store.GetMatchByPair(bottleneckID, r.ExperienceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted match: %w", err)
		}
		runMatches = append(runMatches, *canonical)

		metrics.MatchesGenerated.Inc()
		metrics.MatchScore.Observe(r.Score)

		name := mentorNames[r.MentorID]
		if name == "" {
			name = "Unknown"
		}
		logger.Debug("Match persisted",
			zap.String("bottleneck_id", bottleneckID),
			zap.String("mentor", name),
			zap.Float64("score", r.Score),
		)
	}

	if err := o.store.UpdateBottleneckStatus(bottleneckID, models.BottleneckMatched); err != nil {
		return nil, fmt.Errorf("failed to mark bottleneck matched: %w", err)
	}

	logger.Debug("Matches persisted",
		zap.String("bottleneck_id", bottleneckID),
		zap.Int("persisted", len(runMatches)),
		zap.Int("scored", len(results)),
	)

	// Stable sort keeps candidate order between equal scores.
	sort.SliceStable(runMatches, func(i, j int) bool { return runMatches[i].Score > runMatches[j].Score })

	if len(runMatches) > o.cfg.TopMatchesToReturn {
		runMatches = runMatches[:o.cfg.TopMatchesToReturn]
	}

	return runMatches, nil
}

// loadCandidates pulls every structured experience of an active mentor and
// decodes the structured payload. Undecodable rows are skipped with a
// warning rather than failing the whole run.
func (o *Orchestrator) loadCandidates() ([]prompts.ScoringCandidate, error) {
	rows, err := o.store.ListCandidateExperiences()
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate experiences: %w", err)
	}

	candidates := make([]prompts.ScoringCandidate, 0, len(rows))
	for _, row := range rows {
		var exp schema.StructuredExperience
		if err := json.Unmarshal([]byte(row.Structured), &exp); err != nil {
			logger.Warn("Skipping candidate with invalid structured payload",
				zap.String("experience_id", row.ExperienceID),
				zap.Error(err),
			)
			continue
		}

		candidates = append(candidates, prompts.ScoringCandidate{
			MentorID:     row.MentorID,
			MentorName:   row.MentorName,
			ExperienceID: row.ExperienceID,
			Experience:   exp,
		})
	}

	return candidates, nil
}

// scoreInBatches splits the candidates into fixed-size batches and scores
// each one. A failed batch aborts the run so the caller sees the scoring
// error; the bottleneck keeps the status it last reached.
func (o *Orchestrator) scoreInBatches(ctx context.Context, bottleneck schema.StructuredBottleneck, candidates []prompts.ScoringCandidate) ([]schema.BatchMatchResult, error) {
	var results []schema.BatchMatchResult

	for start := 0; start < len(candidates); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		batch := candidates[start:end]
		batchResults, err := o.scorer.MatchBatch(ctx, bottleneck, batch)
		if err != nil {
			logger.Error("Batch scoring failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to score batch at offset %d: %w", start, err)
		}

		results = append(results, batchResults...)
	}

	return results, nil
}

// shouldSkipOverwrite applies the rematch overwrite policy for one pair.
func (o *Orchestrator) shouldSkipOverwrite(bottleneckID, experienceID string) (bool, error) {
	if o.cfg.OverwriteOnRematch == config.OverwriteAlways {
		return false, nil
	}

	existing, err := o.store.GetMatchByPair(bottleneckID, experienceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing match: %w", err)
	}

	if existing.Status == models.MatchPending {
		return false, nil
	}

	switch o.cfg.OverwriteOnRematch {
	case config.OverwriteNeverIfDecided:
		logger.Debug("Preserving decided match on rematch",
			zap.String("match_id", existing.ID),
			zap.String("status", existing.Status),
		)
		return true, nil
	case config.OverwriteAlwaysAudit:
		logger.Info("Overwriting decided match on rematch",
			zap.String("match_id", existing.ID),
			zap.String("previous_status", existing.Status),
			zap.Float64("previous_score", existing.Score),
		)
		return false, nil
	}

	return false, nil
}
