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

type StartupHandler struct {
	store *sqlite.Client
}

func NewStartupHandler(store *sqlite.Client) *StartupHandler {
	return &StartupHandler{store: store}
}

func (h *StartupHandler) Create(c *fiber.Ctx) error {
	var req CreateStartupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if errs := req.Validate(); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	stage := req.Stage
	if stage == "" {
		stage = "PRE_SEED"
	}

	startup := &models.Startup{
		ID:              uuid.NewString(),
		Name:            req.Name,
		FounderName:     req.FounderName,
		Email:           req.Email,
		Stage:           stage,
		TeamSize:        req.TeamSize,
		ProductMaturity: req.ProductMaturity,
		CreatedAt:       time.Now(),
	}

	if err := h.store.CreateStartup(startup); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return conflict(c, "A startup with this email already exists")
		}
		logger.Error("Failed to create startup", zap.Error(err))
		return internalError(c, "Failed to create startup")
	}

	return c.Status(fiber.StatusCreated).JSON(startupJSON(startup))
}

func (h *StartupHandler) Get(c *fiber.Ctx) error {
	startup, err := h.store.GetStartup(c.Params("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return notFound(c, "Startup not found")
		}
		logger.Error("Failed to fetch startup", zap.Error(err))
		return internalError(c, "Failed to fetch startup")
	}

	bottlenecks, err := h.store.ListBottlenecksForStartup(startup.ID, 10)
	if err != nil {
		logger.Error("Failed to fetch bottlenecks", zap.Error(err))
		return internalError(c, "Failed to fetch startup")
	}

	out := startupJSON(startup)
	items := make([]fiber.Map, 0, len(bottlenecks))
	for i := range bottlenecks {
		items = append(items, bottleneckJSON(&bottlenecks[i]))
	}
	out["bottlenecks"] = items

	return c.JSON(out)
}
