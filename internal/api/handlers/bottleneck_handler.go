package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/matching"
	"github.com/sanctuary-network/backend/internal/prompts"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/internal/storage/sqlite"
	"github.com/sanctuary-network/backend/internal/structuring"
	"github.com/sanctuary-network/backend/pkg/logger"
)

type BottleneckHandler struct {
	store      *sqlite.Client
	structurer *structuring.Structurer
	matcher    matching.Runner
	dispatcher *matching.Dispatcher
}

func NewBottleneckHandler(store *sqlite.Client, structurer *structuring.Structurer, matcher matching.Runner, dispatcher *matching.Dispatcher) *BottleneckHandler {
	return &BottleneckHandler{
		store:      store,
		structurer: structurer,
		matcher:    matcher,
		dispatcher: dispatcher,
	}
}

// Submit is the founder entry point: persist the raw submission, structure
// it synchronously, then kick off matching in the background. Structuring
// failure is not fatal; the record stays PENDING for operator review and
// the response still carries 201.
func (h *BottleneckHandler) Submit(c *fiber.Ctx) error {
	var req SubmitBottleneckRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if errs := req.Validate(); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	if _, err := h.store.GetStartup(req.StartupID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Startup not found")
		}
		logger.Error("Failed to load startup", zap.Error(err))
		return internalError(c, "Failed to submit bottleneck")
	}

	now := time.Now()
	bottleneck := &models.Bottleneck{
		ID:                 uuid.NewString(),
		StartupID:          req.StartupID,
		RawBlocker:         req.RawBlocker,
		RawAttempts:        req.RawAttempts,
		RawSuccessCriteria: req.RawSuccessCriteria,
		Status:             models.BottleneckPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.store.CreateBottleneck(bottleneck); err != nil {
		logger.Error("Failed to create bottleneck", zap.Error(err))
		return internalError(c, "Failed to submit bottleneck")
	}

	structured, err := h.structurer.StructureBottleneck(c.UserContext(), prompts.BottleneckInput{
		RawBlocker:         req.RawBlocker,
		RawAttempts:        req.RawAttempts,
		RawSuccessCriteria: req.RawSuccessCriteria,
		Stage:              req.Stage,
		TeamSize:           req.TeamSize,
		ProductMaturity:    req.ProductMaturity,
	})
	if err != nil {
		logger.Error("Bottleneck structuring failed",
			zap.String("bottleneck_id", bottleneck.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      bottleneck.ID,
			"status":  models.BottleneckPending,
			"message": "Bottleneck submitted but structuring failed. An operator will review.",
		})
	}

	payload, err := json.Marshal(structured)
	if err != nil {
		logger.Error("Failed to encode structured bottleneck", zap.Error(err))
		return internalError(c, "Failed to submit bottleneck")
	}

	if err := h.store.SetBottleneckStructured(bottleneck.ID, string(payload), models.BottleneckStructured); err != nil {
		logger.Error("Failed to persist structured bottleneck", zap.Error(err))
		return internalError(c, "Failed to submit bottleneck")
	}

	h.dispatcher.Enqueue(bottleneck.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         bottleneck.ID,
		"status":     models.BottleneckStructured,
		"structured": structured,
		"message":    "Bottleneck submitted. Matching in progress.",
	})
}

func (h *BottleneckHandler) Get(c *fiber.Ctx) error {
	bottleneck, err := h.store.GetBottleneck(c.Params("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Bottleneck not found")
		}
		logger.Error("Failed to fetch bottleneck", zap.Error(err))
		return internalError(c, "Failed to fetch bottleneck")
	}

	matches, err := h.store.ListMatchesForBottleneck(bottleneck.ID)
	if err != nil {
		logger.Error("Failed to fetch matches", zap.Error(err))
		return internalError(c, "Failed to fetch bottleneck")
	}

	out := bottleneckJSON(bottleneck)
	out["matches"] = matchListJSON(matches)

	return c.JSON(out)
}

func (h *BottleneckHandler) ListMatches(c *fiber.Ctx) error {
	matches, err := h.store.ListMatchesForBottleneck(c.Params("id"))
	if err != nil {
		logger.Error("Failed to fetch matches", zap.Error(err))
		return internalError(c, "Failed to fetch matches")
	}

	return c.JSON(matchListJSON(matches))
}

// Rematch reruns the pipeline synchronously and returns the fresh matches.
func (h *BottleneckHandler) Rematch(c *fiber.Ctx) error {
	id := c.Params("id")

	bottleneck, err := h.store.GetBottleneck(id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Bottleneck not found")
		}
		logger.Error("Failed to fetch bottleneck", zap.Error(err))
		return internalError(c, "Failed to regenerate matches")
	}

	if bottleneck.Structured == nil {
		return badRequest(c, "Bottleneck not structured yet")
	}

	matches, err := h.matcher.GenerateMatches(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, matching.ErrRunInProgress) {
			return conflict(c, "Matching already in progress for this bottleneck")
		}
		logger.Error("Rematch failed", zap.String("bottleneck_id", id), zap.Error(err))
		return internalError(c, "Failed to regenerate matches")
	}

	return c.JSON(fiber.Map{
		"message":    "Matching complete",
		"matchCount": len(matches),
		"matches":    matchListJSON(matches),
	})
}
