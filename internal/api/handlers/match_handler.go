package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/metrics"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/internal/storage/sqlite"
	"github.com/sanctuary-network/backend/pkg/logger"
)

type MatchHandler struct {
	store *sqlite.Client
}

func NewMatchHandler(store *sqlite.Client) *MatchHandler {
	return &MatchHandler{store: store}
}

func (h *MatchHandler) Get(c *fiber.Ctx) error {
	match, err := h.store.GetMatch(c.Params("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Match not found")
		}
		logger.Error("Failed to fetch match", zap.Error(err))
		return internalError(c, "Failed to fetch match")
	}

	return c.JSON(matchJSON(*match))
}

func (h *MatchHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, models.MatchApproved, "Failed to approve match")
}

func (h *MatchHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, models.MatchRejected, "Failed to reject match")
}

func (h *MatchHandler) decide(c *fiber.Ctx, status, failMsg string) error {
	var req OperatorDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	id := c.Params("id")
	if err := h.store.UpdateMatchStatus(id, status, req.OperatorID, req.OperatorNotes); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Match not found")
		}
		logger.Error(failMsg, zap.String("match_id", id), zap.Error(err))
		return internalError(c, failMsg)
	}

	match, err := h.store.GetMatch(id)
	if err != nil {
		logger.Error("Failed to fetch match", zap.Error(err))
		return internalError(c, failMsg)
	}

	return c.JSON(matchJSON(*match))
}

func (h *MatchHandler) IntroSent(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.store.SetMatchIntroSent(id, time.Now()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Match not found")
		}
		logger.Error("Failed to mark intro sent", zap.String("match_id", id), zap.Error(err))
		return internalError(c, "Failed to update match")
	}

	match, err := h.store.GetMatch(id)
	if err != nil {
		logger.Error("Failed to fetch match", zap.Error(err))
		return internalError(c, "Failed to update match")
	}

	return c.JSON(matchJSON(*match))
}

// SubmitFeedback records founder feedback on a match; each match takes
// feedback exactly once.
func (h *MatchHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if errs := req.Validate(); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	matchID := c.Params("id")
	if _, err := h.store.GetMatch(matchID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Match not found")
		}
		logger.Error("Failed to fetch match", zap.Error(err))
		return internalError(c, "Failed to submit feedback")
	}

	feedback := &models.Feedback{
		ID:             uuid.NewString(),
		MatchID:        matchID,
		Rating:         req.Rating,
		WasRelevant:    req.WasRelevant,
		WasActionable:  req.WasActionable,
		WouldRecommend: req.WouldRecommend,
		FounderNotes:   req.FounderNotes,
		OperatorNotes:  req.OperatorNotes,
		CreatedAt:      time.Now(),
	}

	if err := h.store.CreateFeedback(feedback); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return conflict(c, "Feedback already submitted for this match")
		}
		logger.Error("Failed to submit feedback", zap.String("match_id", matchID), zap.Error(err))
		return internalError(c, "Failed to submit feedback")
	}

	metrics.FeedbackTotal.WithLabelValues(req.Rating).Inc()

	return c.Status(fiber.StatusCreated).JSON(feedbackJSON(*feedback))
}
