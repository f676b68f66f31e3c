package matching

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/llm"
	"github.com/sanctuary-network/backend/internal/metrics"
	"github.com/sanctuary-network/backend/internal/prompts"
	"github.com/sanctuary-network/backend/internal/schema"
	"github.com/sanctuary-network/backend/internal/structuring"
	"github.com/sanctuary-network/backend/pkg/config"
	"github.com/sanctuary-network/backend/pkg/logger"
)

// Completer is the slice of the LLM client the scorer needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Scorer evaluates bottleneck/experience pairs with the LLM, one pair at a
// time or in batches.
type Scorer struct {
	llm            Completer
	batchMaxTokens int
	batchTimeout   time.Duration
}

func NewScorer(completer Completer, cfg config.LLMConfig) *Scorer {
	return &Scorer{
		llm:            completer,
		batchMaxTokens: cfg.BatchMaxTokens,
		batchTimeout:   time.Duration(cfg.BatchTimeoutSec) * time.Second,
	}
}

// MatchSingle scores one experience against a bottleneck.
func (s *Scorer) MatchSingle(ctx context.Context, bottleneck schema.StructuredBottleneck, experience schema.StructuredExperience, mentorName string) (*schema.MatchResult, error) {
	const op = "match_single"

	prompt := prompts.BuildMatchingPrompt(bottleneck, experience, mentorName)

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Op:           op,
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
	})
	if err != nil {
		return nil, err
	}

	raw := structuring.StripCodeFences(resp.Content)

	if err := schema.ValidateMatchResult([]byte(raw)); err != nil {
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	var result schema.MatchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	return &result, nil
}

// MatchBatch scores a batch of candidate experiences against a bottleneck in
// a single call. The model is instructed to omit candidates scoring below
// the relevance floor, so the result may be shorter than the input; results
// whose identifier pair does not appear in the input are dropped.
func (s *Scorer) MatchBatch(ctx context.Context, bottleneck schema.StructuredBottleneck, candidates []prompts.ScoringCandidate) ([]schema.BatchMatchResult, error) {
	const op = "match_batch"

	if len(candidates) == 0 {
		return nil, nil
	}

	start := time.Now()
	prompt := prompts.BuildBatchMatchingPrompt(bottleneck, candidates)

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Op:           op,
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
		MaxTokens:    s.batchMaxTokens,
		Timeout:      s.batchTimeout,
	})
	if err != nil {
		return nil, err
	}

	raw := structuring.StripCodeFences(resp.Content)

	if err := schema.ValidateBatchMatchResults([]byte(raw)); err != nil {
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	var results []schema.BatchMatchResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		known[c.MentorID+"/"+c.ExperienceID] = true
	}

	kept := results[:0]
	for _, r := range results {
		if !known[r.MentorID+"/"+r.ExperienceID] {
			logger.Warn("Batch result references unknown candidate, dropping",
				zap.String("mentor_id", r.MentorID),
				zap.String("experience_id", r.ExperienceID),
			)
			continue
		}
		kept = append(kept, r)
	}

	metrics.BatchScoringDuration.Observe(time.Since(start).Seconds())

	logger.Debug("Batch scored",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(kept)),
		zap.Duration("duration", time.Since(start)),
	)

	return kept, nil
}
