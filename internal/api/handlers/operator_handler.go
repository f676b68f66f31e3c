package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/matching"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/internal/storage/sqlite"
	"github.com/sanctuary-network/backend/pkg/logger"
)

type OperatorHandler struct {
	store *sqlite.Client
}

func NewOperatorHandler(store *sqlite.Client) *OperatorHandler {
	return &OperatorHandler{store: store}
}

// Dashboard aggregates the operator review queue: pending matches, recent
// feedback, and headline stats.
func (h *OperatorHandler) Dashboard(c *fiber.Ctx) error {
	pending, err := h.store.ListPendingMatches(20)
	if err != nil {
		logger.Error("Failed to list pending matches", zap.Error(err))
		return internalError(c, "Failed to fetch dashboard data")
	}

	recentFeedback, err := h.store.ListRecentFeedback(10)
	if err != nil {
		logger.Error("Failed to list recent feedback", zap.Error(err))
		return internalError(c, "Failed to fetch dashboard data")
	}

	statusCounts, err := h.store.CountMatchesByStatus()
	if err != nil {
		logger.Error("Failed to count matches", zap.Error(err))
		return internalError(c, "Failed to fetch dashboard data")
	}

	totalMatches := 0
	for _, n := range statusCounts {
		totalMatches += n
	}

	ratingCounts, err := h.store.CountFeedbackByRating()
	if err != nil {
		logger.Error("Failed to count feedback", zap.Error(err))
		return internalError(c, "Failed to fetch dashboard data")
	}

	quality := fiber.Map{
		"highlyUseful":   0,
		"somewhatUseful": 0,
		"notUseful":      0,
	}
	for _, rc := range ratingCounts {
		switch rc.Rating {
		case models.RatingHighlyUseful:
			quality["highlyUseful"] = rc.Count
		case models.RatingSomewhatUseful:
			quality["somewhatUseful"] = rc.Count
		case models.RatingNotUseful:
			quality["notUseful"] = rc.Count
		}
	}

	pendingBottlenecks, err := h.store.CountBottlenecksAwaitingMatch()
	if err != nil {
		logger.Error("Failed to count pending bottlenecks", zap.Error(err))
		return internalError(c, "Failed to fetch dashboard data")
	}

	feedbackItems := make([]fiber.Map, 0, len(recentFeedback))
	for _, f := range recentFeedback {
		feedbackItems = append(feedbackItems, feedbackJSON(f))
	}

	return c.JSON(fiber.Map{
		"pendingMatches": matchListJSON(pending),
		"recentFeedback": feedbackItems,
		"stats": fiber.Map{
			"totalMatches":       totalMatches,
			"approvedMatches":    statusCounts[models.MatchApproved],
			"completedMatches":   statusCounts[models.MatchCompleted],
			"pendingBottlenecks": pendingBottlenecks,
			"matchQuality":       quality,
		},
	})
}

// Analytics reports the weights the learning loop currently produces and
// how scores correlate with confidence tiers and feedback ratings.
func (h *OperatorHandler) Analytics(c *fiber.Ctx) error {
	weights, adjusted := matching.AdjustedWeights(h.store)

	byConfidence, err := h.store.AvgScoreByConfidence()
	if err != nil {
		logger.Error("Failed to aggregate by confidence", zap.Error(err))
		return internalError(c, "Failed to fetch analytics")
	}

	byRating, err := h.store.AvgScoreByRating()
	if err != nil {
		logger.Error("Failed to aggregate by rating", zap.Error(err))
		return internalError(c, "Failed to fetch analytics")
	}

	confidenceItems := make([]fiber.Map, 0, len(byConfidence))
	for _, s := range byConfidence {
		confidenceItems = append(confidenceItems, fiber.Map{
			"confidence": s.Confidence,
			"avgScore":   s.AvgScore,
			"count":      s.Count,
		})
	}

	ratingItems := make([]fiber.Map, 0, len(byRating))
	for _, s := range byRating {
		ratingItems = append(ratingItems, fiber.Map{
			"rating":   s.Rating,
			"avgScore": s.AvgScore,
			"count":    s.Count,
		})
	}

	return c.JSON(fiber.Map{
		"currentWeights":      weights,
		"weightsAdjusted":     adjusted,
		"matchesByConfidence": confidenceItems,
		"scoresByRating":      ratingItems,
	})
}
