package matching

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/llm"
	"github.com/sanctuary-network/backend/internal/prompts"
	"github.com/sanctuary-network/backend/internal/schema"
	"github.com/sanctuary-network/backend/pkg/config"
)

type fakeCompleter struct {
	content string
	err     error
	calls   int
	lastReq llm.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func validReasoning() schema.MatchReasoning {
	return schema.MatchReasoning{
		Scores:  flatScores(70),
		Weights: BaselineWeights(),
		ComponentReasoning: schema.DimensionReasoning{
			ProblemShapeSimilarity: "same archetype",
		},
		KeyAlignments: []string{"same stage"},
		Concerns:      []string{},
		ConfidenceFactors: schema.ConfidenceFactors{
			DataQuality:       schema.ConfidenceHigh,
			ArchetypeClarity:  schema.ConfidenceHigh,
			ConstraintOverlap: schema.ConfidenceMedium,
		},
	}
}

func batchResultJSON(t *testing.T, results []schema.BatchMatchResult) string {
	t.Helper()
	payload, err := json.Marshal(results)
	require.NoError(t, err)
	return string(payload)
}

func scoringCandidates(n int) []prompts.ScoringCandidate {
	out := testCandidates(n)
	var candidates []prompts.ScoringCandidate
	for _, c := range out {
		candidates = append(candidates, prompts.ScoringCandidate{
			MentorID:     c.MentorID,
			MentorName:   c.MentorName,
			ExperienceID: c.ExperienceID,
		})
	}
	return candidates
}

func llmCfg() config.LLMConfig {
	return config.LLMConfig{
		Model:           "gpt-4",
		MaxTokens:       4096,
		BatchMaxTokens:  8192,
		TimeoutSec:      30,
		BatchTimeoutSec: 120,
	}
}

func TestMatchBatch_ReturnsValidatedResults(t *testing.T) {
	results := []schema.BatchMatchResult{
		{
			MentorID:     "mentor-0",
			ExperienceID: "exp-0",
			Score:        82,
			Confidence:   schema.ConfidenceHigh,
			Explanation:  "directly relevant",
			Reasoning:    validReasoning(),
		},
		{
			MentorID:     "mentor-1",
			ExperienceID: "exp-1",
			Score:        55,
			Confidence:   schema.ConfidenceMedium,
			Explanation:  "partially relevant",
			Reasoning:    validReasoning(),
		},
	}
	completer := &fakeCompleter{content: batchResultJSON(t, results)}

	scorer := NewScorer(completer, llmCfg())
	got, err := scorer.MatchBatch(context.Background(), schema.StructuredBottleneck{}, scoringCandidates(3))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mentor-0", got[0].MentorID)
	assert.Equal(t, 8192, completer.lastReq.MaxTokens)
}

func TestMatchBatch_StripsCodeFences(t *testing.T) {
	results := []schema.BatchMatchResult{
		{
			MentorID:     "mentor-0",
			ExperienceID: "exp-0",
			Score:        70,
			Confidence:   schema.ConfidenceHigh,
			Explanation:  "x",
			Reasoning:    validReasoning(),
		},
	}
	completer := &fakeCompleter{content: "```json\n" + batchResultJSON(t, results) + "\n```"}

	scorer := NewScorer(completer, llmCfg())
	got, err := scorer.MatchBatch(context.Background(), schema.StructuredBottleneck{}, scoringCandidates(1))

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMatchBatch_DropsUnknownPairs(t *testing.T) {
	results := []schema.BatchMatchResult{
		{
			MentorID:     "mentor-0",
			ExperienceID: "exp-0",
			Score:        70,
			Confidence:   schema.ConfidenceHigh,
			Explanation:  "x",
			Reasoning:    validReasoning(),
		},
		{
			// Hallucinated pair not present in the batch input.
			MentorID:     "mentor-99",
			ExperienceID: "exp-99",
			Score:        95,
			Confidence:   schema.ConfidenceHigh,
			Explanation:  "x",
			Reasoning:    validReasoning(),
		},
	}
	completer := &fakeCompleter{content: batchResultJSON(t, results)}

	scorer := NewScorer(completer, llmCfg())
	got, err := scorer.MatchBatch(context.Background(), schema.StructuredBottleneck{}, scoringCandidates(2))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "exp-0", got[0].ExperienceID)
}

func TestMatchBatch_ParseErrorOnMalformedResponse(t *testing.T) {
	completer := &fakeCompleter{content: "I could not evaluate these matches."}

	scorer := NewScorer(completer, llmCfg())
	_, err := scorer.MatchBatch(context.Background(), schema.StructuredBottleneck{}, scoringCandidates(1))

	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestMatchBatch_ParseErrorOnSchemaViolation(t *testing.T) {
	// Score out of range fails validation even though the JSON is well formed.
	results := []schema.BatchMatchResult{
		{
			MentorID:     "mentor-0",
			ExperienceID: "exp-0",
			Score:        140,
			Confidence:   schema.ConfidenceHigh,
			Explanation:  "x",
			Reasoning:    validReasoning(),
		},
	}
	completer := &fakeCompleter{content: batchResultJSON(t, results)}

	scorer := NewScorer(completer, llmCfg())
	_, err := scorer.MatchBatch(context.Background(), schema.StructuredBottleneck{}, scoringCandidates(1))

	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestMatchBatch_EmptyCandidates(t *testing.T) {
	completer := &fakeCompleter{content: "[]"}

	scorer := NewScorer(completer, llmCfg())
	got, err := scorer.MatchBatch(context.Background(), schema.StructuredBottleneck{}, nil)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, completer.calls)
}

func TestMatchSingle_ReturnsResult(t *testing.T) {
	result := schema.MatchResult{
		Score:       77,
		Confidence:  schema.ConfidenceHigh,
		Explanation: "mirrors the bottleneck closely",
		Reasoning:   validReasoning(),
	}
	payload, err := json.Marshal(result)
	require.NoError(t, err)

	completer := &fakeCompleter{content: string(payload)}

	scorer := NewScorer(completer, llmCfg())
	got, err := scorer.MatchSingle(context.Background(), schema.StructuredBottleneck{}, schema.StructuredExperience{}, "Dana")

	require.NoError(t, err)
	assert.Equal(t, 77.0, got.Score)
	assert.Equal(t, schema.ConfidenceHigh, got.Confidence)
}
