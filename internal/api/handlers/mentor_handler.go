package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/storage/models"
	"github.com/sanctuary-network/backend/internal/storage/sqlite"
	"github.com/sanctuary-network/backend/pkg/logger"
)

type MentorHandler struct {
	store *sqlite.Client
}

func NewMentorHandler(store *sqlite.Client) *MentorHandler {
	return &MentorHandler{store: store}
}

func (h *MentorHandler) Create(c *fiber.Ctx) error {
	var req CreateMentorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if errs := req.Validate(); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	mentor := &models.Mentor{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Email:       req.Email,
		Bio:         req.Bio,
		LinkedinURL: req.LinkedinURL,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	if err := h.store.CreateMentor(mentor); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return conflict(c, "A mentor with this email already exists")
		}
		logger.Error("Failed to create mentor", zap.Error(err))
		return internalError(c, "Failed to create mentor")
	}

	return c.Status(fiber.StatusCreated).JSON(mentorJSON(*mentor))
}

func (h *MentorHandler) Get(c *fiber.Ctx) error {
	mentor, err := h.store.GetMentor(c.Params("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Mentor not found")
		}
		logger.Error("Failed to fetch mentor", zap.Error(err))
		return internalError(c, "Failed to fetch mentor")
	}

	return c.JSON(mentorJSON(*mentor))
}

func (h *MentorHandler) List(c *fiber.Ctx) error {
	mentors, err := h.store.ListActiveMentors()
	if err != nil {
		logger.Error("Failed to list mentors", zap.Error(err))
		return internalError(c, "Failed to fetch mentors")
	}

	out := make([]fiber.Map, 0, len(mentors))
	for _, m := range mentors {
		out = append(out, mentorJSON(m))
	}

	return c.JSON(out)
}
