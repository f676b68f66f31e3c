package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/prompts"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/internal/storage/sqlite"
	"github.com/sanctuary-network/backend/internal/structuring"
	"github.com/sanctuary-network/backend/pkg/logger"
)

type ExperienceHandler struct {
	store      *sqlite.Client
	structurer *structuring.Structurer
}

func NewExperienceHandler(store *sqlite.Client, structurer *structuring.Structurer) *ExperienceHandler {
	return &ExperienceHandler{store: store, structurer: structurer}
}

// Submit is the mentor entry point. Like bottleneck submission, structuring
// failure leaves the record unstructured for operator review and still
// returns 201.
func (h *ExperienceHandler) Submit(c *fiber.Ctx) error {
	var req SubmitExperienceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if errs := req.Validate(); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	if _, err := h.store.GetMentor(req.MentorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Mentor not found")
		}
		logger.Error("Failed to load mentor", zap.Error(err))
		return internalError(c, "Failed to submit experience")
	}

	experience := &models.Experience{
		ID:           uuid.NewString(),
		MentorID:     req.MentorID,
		RawProblem:   req.RawProblem,
		RawContext:   req.RawContext,
		RawSolution:  req.RawSolution,
		RawOutcomes:  req.RawOutcomes,
		YearOccurred: req.YearOccurred,
		CompanyStage: req.CompanyStage,
		CreatedAt:    time.Now(),
	}

	if err := h.store.CreateExperience(experience); err != nil {
		logger.Error("Failed to create experience", zap.Error(err))
		return internalError(c, "Failed to submit experience")
	}

	structured, err := h.structurer.StructureExperience(c.UserContext(), prompts.ExperienceInput{
		RawProblem:   req.RawProblem,
		RawContext:   req.RawContext,
		RawSolution:  req.RawSolution,
		RawOutcomes:  req.RawOutcomes,
		YearOccurred: req.YearOccurred,
		CompanyStage: req.CompanyStage,
	})
	if err != nil {
		logger.Error("Experience structuring failed",
			zap.String("experience_id", experience.ID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":      experience.ID,
			"message": "Experience submitted but structuring failed. An operator will review.",
		})
	}

	payload, err := json.Marshal(structured)
	if err != nil {
		logger.Error("Failed to encode structured experience", zap.Error(err))
		return internalError(c, "Failed to submit experience")
	}

	if err := h.store.SetExperienceStructured(experience.ID, string(payload)); err != nil {
		logger.Error("Failed to persist structured experience", zap.Error(err))
		return internalError(c, "Failed to submit experience")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         experience.ID,
		"structured": structured,
		"message":    "Experience submitted and structured successfully.",
	})
}

func (h *ExperienceHandler) Get(c *fiber.Ctx) error {
	experience, err := h.store.GetExperience(c.Params("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Experience not found")
		}
		logger.Error("Failed to fetch experience", zap.Error(err))
		return internalError(c, "Failed to fetch experience")
	}

	mentor, err := h.store.GetMentor(experience.MentorID)
	if err != nil {
		logger.Error("Failed to fetch mentor", zap.Error(err))
		return internalError(c, "Failed to fetch experience")
	}

	out := experienceJSON(experience)
	out["mentor"] = mentorJSON(*mentor)

	return c.JSON(out)
}
