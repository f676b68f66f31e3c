package matching

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/metrics"
	"github.com/sanctuary-network/backend/internal/schema"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/pkg/logger"
)

const (
	feedbackWindow = 90 * 24 * time.Hour
	maxSignals     = 100
	minSignals     = 10
	maxWeightShift = 0.05
)

// FeedbackSource provides recent feedback joined with the scored reasoning
// of the match each piece of feedback rated.
type FeedbackSource interface {
	ListFeedbackSignals(since time.Time, limit int) ([]models.FeedbackSignal, error)
}

// BaselineWeights returns the default dimension weights used when there is
// not enough feedback to learn from.
func BaselineWeights() schema.DimensionValues {
	return schema.DimensionValues{
		ProblemShapeSimilarity: 0.40,
		ConstraintAlignment:    0.25,
		StageRelevance:         0.20,
		ExperienceDepth:        0.10,
		Recency:                0.05,
	}
}

// AdjustedWeights derives dimension weights from recent feedback. Dimensions
// that score higher on HIGHLY_USEFUL matches than on NOT_USEFUL matches are
// nudged up, and vice versa, by at most maxWeightShift each, then the
// weights are renormalized to sum to 1. Falls back to the baseline when
// there are fewer than minSignals usable signals or either cohort is empty.
func AdjustedWeights(source FeedbackSource) (schema.DimensionValues, bool) {
	signals, err := source.ListFeedbackSignals(time.Now().Add(-feedbackWindow), maxSignals)
	if err != nil {
		logger.Warn("Failed to load feedback signals, using baseline weights", zap.Error(err))
		metrics.WeightAdjustmentApplied.Set(0)
		return BaselineWeights(), false
	}

	weights, adjusted := adjustWeights(signals)
	if adjusted {
		metrics.WeightAdjustmentApplied.Set(1)
	} else {
		metrics.WeightAdjustmentApplied.Set(0)
	}
	return weights, adjusted
}

func adjustWeights(signals []models.FeedbackSignal) (schema.DimensionValues, bool) {
	baseline := BaselineWeights()

	if len(signals) < minSignals {
		return baseline, false
	}

	var useful, notUseful []schema.DimensionValues
	for _, s := range signals {
		var reasoning schema.MatchReasoning
		if err := json.Unmarshal([]byte(s.Reasoning), &reasoning); err != nil {
			continue
		}

		switch s.Rating {
		case models.RatingHighlyUseful:
			useful = append(useful, reasoning.Scores)
		case models.RatingNotUseful:
			notUseful = append(notUseful, reasoning.Scores)
		}
	}

	if len(useful) == 0 || len(notUseful) == 0 {
		return baseline, false
	}

	avgUseful := meanScores(useful)
	avgNotUseful := meanScores(notUseful)

	adjusted := schema.DimensionValues{
		ProblemShapeSimilarity: baseline.ProblemShapeSimilarity + clampShift(avgUseful.ProblemShapeSimilarity-avgNotUseful.ProblemShapeSimilarity),
		ConstraintAlignment:    baseline.ConstraintAlignment + clampShift(avgUseful.ConstraintAlignment-avgNotUseful.ConstraintAlignment),
		StageRelevance:         baseline.StageRelevance + clampShift(avgUseful.StageRelevance-avgNotUseful.StageRelevance),
		ExperienceDepth:        baseline.ExperienceDepth + clampShift(avgUseful.ExperienceDepth-avgNotUseful.ExperienceDepth),
		Recency:                baseline.Recency + clampShift(avgUseful.Recency-avgNotUseful.Recency),
	}

	return normalize(adjusted), true
}

func meanScores(values []schema.DimensionValues) schema.DimensionValues {
	var sum schema.DimensionValues
	for _, v := range values {
		sum.ProblemShapeSimilarity += v.ProblemShapeSimilarity
		sum.ConstraintAlignment += v.ConstraintAlignment
		sum.StageRelevance += v.StageRelevance
		sum.ExperienceDepth += v.ExperienceDepth
		sum.Recency += v.Recency
	}

	n := float64(len(values))
	return schema.DimensionValues{
		ProblemShapeSimilarity: sum.ProblemShapeSimilarity / n,
		ConstraintAlignment:    sum.ConstraintAlignment / n,
		StageRelevance:         sum.StageRelevance / n,
		ExperienceDepth:        sum.ExperienceDepth / n,
		Recency:                sum.Recency / n,
	}
}

// clampShift maps a dimension score difference (on the 0-100 scale) to a
// weight shift, capped at +-maxWeightShift.
func clampShift(diff float64) float64 {
	shift := diff / 100
	if shift > maxWeightShift {
		return maxWeightShift
	}
	if shift < -maxWeightShift {
		return -maxWeightShift
	}
	return shift
}

func normalize(w schema.DimensionValues) schema.DimensionValues {
	total := w.ProblemShapeSimilarity + w.ConstraintAlignment + w.StageRelevance + w.ExperienceDepth + w.Recency
	if total <= 0 {
		return BaselineWeights()
	}

	return schema.DimensionValues{
		ProblemShapeSimilarity: w.ProblemShapeSimilarity / total,
		ConstraintAlignment:    w.ConstraintAlignment / total,
		StageRelevance:         w.StageRelevance / total,
		ExperienceDepth:        w.ExperienceDepth / total,
		Recency:                w.Recency / total,
	}
}
