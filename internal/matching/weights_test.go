package matching

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanctuary-network/backend/internal/schema"
	"github.com/sanctuary-network/backend/internal/storage/models"
)

func signalWithScores(rating string, scores schema.DimensionValues) models.FeedbackSignal {
	reasoning := schema.MatchReasoning{Scores: scores}
	payload, _ := json.Marshal(reasoning)
	return models.FeedbackSignal{
		Rating:    rating,
		Reasoning: string(payload),
		CreatedAt: time.Now(),
	}
}

func flatScores(v float64) schema.DimensionValues {
	return schema.DimensionValues{
		ProblemShapeSimilarity: v,
		ConstraintAlignment:    v,
		StageRelevance:         v,
		ExperienceDepth:        v,
		Recency:                v,
	}
}

func weightSum(w schema.DimensionValues) float64 {
	return w.ProblemShapeSimilarity + w.ConstraintAlignment + w.StageRelevance + w.ExperienceDepth + w.Recency
}

func TestAdjustWeights_TooFewSignals(t *testing.T) {
	var signals []models.FeedbackSignal
	for i := 0; i < minSignals-1; i++ {
		signals = append(signals, signalWithScores(models.RatingHighlyUseful, flatScores(80)))
	}

	weights, adjusted := adjustWeights(signals)

	assert.False(t, adjusted)
	assert.Equal(t, BaselineWeights(), weights)
}

func TestAdjustWeights_MissingCohort(t *testing.T) {
	var signals []models.FeedbackSignal
	for i := 0; i < 15; i++ {
		signals = append(signals, signalWithScores(models.RatingHighlyUseful, flatScores(80)))
	}

	weights, adjusted := adjustWeights(signals)

	assert.False(t, adjusted)
	assert.Equal(t, BaselineWeights(), weights)
}

func TestAdjustWeights_ShiftsTowardDiscriminatingDimension(t *testing.T) {
	// Useful matches scored problem shape far higher than useless ones;
	// the other dimensions were identical across cohorts. Only problem
	// shape should move, capped at +0.05 before renormalization.
	usefulScores := flatScores(60)
	usefulScores.ProblemShapeSimilarity = 90

	uselessScores := flatScores(60)
	uselessScores.ProblemShapeSimilarity = 30

	var signals []models.FeedbackSignal
	for i := 0; i < 6; i++ {
		signals = append(signals, signalWithScores(models.RatingHighlyUseful, usefulScores))
		signals = append(signals, signalWithScores(models.RatingNotUseful, uselessScores))
	}

	weights, adjusted := adjustWeights(signals)

	require.True(t, adjusted)
	assert.InDelta(t, 0.4286, weights.ProblemShapeSimilarity, 0.001)
	assert.InDelta(t, 0.2381, weights.ConstraintAlignment, 0.001)
	assert.InDelta(t, 0.1905, weights.StageRelevance, 0.001)
	assert.InDelta(t, 0.0952, weights.ExperienceDepth, 0.001)
	assert.InDelta(t, 0.0476, weights.Recency, 0.001)
	assert.InDelta(t, 1.0, weightSum(weights), 1e-9)
}

func TestAdjustWeights_NegativeShift(t *testing.T) {
	usefulScores := flatScores(70)
	usefulScores.Recency = 40

	uselessScores := flatScores(70)
	uselessScores.Recency = 95

	var signals []models.FeedbackSignal
	for i := 0; i < 5; i++ {
		signals = append(signals, signalWithScores(models.RatingHighlyUseful, usefulScores))
		signals = append(signals, signalWithScores(models.RatingNotUseful, uselessScores))
	}

	weights, adjusted := adjustWeights(signals)

	require.True(t, adjusted)
	assert.Less(t, weights.Recency, BaselineWeights().Recency)
	assert.InDelta(t, 1.0, weightSum(weights), 1e-9)
}

func TestAdjustWeights_SmallDifferenceNotClamped(t *testing.T) {
	usefulScores := flatScores(60)
	usefulScores.ConstraintAlignment = 63

	uselessScores := flatScores(60)

	var signals []models.FeedbackSignal
	for i := 0; i < 5; i++ {
		signals = append(signals, signalWithScores(models.RatingHighlyUseful, usefulScores))
		signals = append(signals, signalWithScores(models.RatingNotUseful, uselessScores))
	}

	weights, adjusted := adjustWeights(signals)

	require.True(t, adjusted)
	// A 3-point score gap maps to +0.03 before normalization.
	assert.InDelta(t, 0.28/1.03, weights.ConstraintAlignment, 0.001)
}

func TestAdjustWeights_SkipsUnparseableReasoning(t *testing.T) {
	var signals []models.FeedbackSignal
	for i := 0; i < 12; i++ {
		signals = append(signals, models.FeedbackSignal{
			Rating:    models.RatingHighlyUseful,
			Reasoning: "not json",
			CreatedAt: time.Now(),
		})
	}

	weights, adjusted := adjustWeights(signals)

	assert.False(t, adjusted)
	assert.Equal(t, BaselineWeights(), weights)
}

func TestClampShift(t *testing.T) {
	assert.Equal(t, 0.05, clampShift(60))
	assert.Equal(t, -0.05, clampShift(-80))
	assert.InDelta(t, 0.02, clampShift(2), 1e-9)
}

func TestBaselineWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, weightSum(BaselineWeights()), 1e-9)
}
