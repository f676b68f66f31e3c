package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/sanctuary-network/backend/internal/storage/models"
)

func validationFailed(c *fiber.Ctx, errs []FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Validation failed",
		"details": errs,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}

func conflict(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msg})
}

// rawOrNull exposes a stored JSON string as a JSON value in responses.
func rawOrNull(s *string) json.RawMessage {
	if s == nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(*s)
}

func matchJSON(m models.Match) fiber.Map {
	out := fiber.Map{
		"id":           m.ID,
		"bottleneckId": m.BottleneckID,
		"experienceId": m.ExperienceID,
		"mentorId":     m.MentorID,
		"mentorName":   m.MentorName,
		"score":        m.Score,
		"confidence":   m.Confidence,
		"explanation":  m.Explanation,
		"reasoning":    json.RawMessage(m.Reasoning),
		"status":       m.Status,
		"createdAt":    m.CreatedAt,
		"updatedAt":    m.UpdatedAt,
	}
	if m.OperatorID != "" {
		out["operatorId"] = m.OperatorID
	}
	if m.OperatorNotes != "" {
		out["operatorNotes"] = m.OperatorNotes
	}
	if m.IntroSentAt != nil {
		out["introSentAt"] = m.IntroSentAt
	}
	return out
}

func matchListJSON(matches []models.Match) []fiber.Map {
	out := make([]fiber.Map, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchJSON(m))
	}
	return out
}

func bottleneckJSON(b *models.Bottleneck) fiber.Map {
	return fiber.Map{
		"id":                 b.ID,
		"startupId":          b.StartupID,
		"rawBlocker":         b.RawBlocker,
		"rawAttempts":        b.RawAttempts,
		"rawSuccessCriteria": b.RawSuccessCriteria,
		"structured":         rawOrNull(b.Structured),
		"status":             b.Status,
		"createdAt":          b.CreatedAt,
		"updatedAt":          b.UpdatedAt,
	}
}

func experienceJSON(e *models.Experience) fiber.Map {
	return fiber.Map{
		"id":           e.ID,
		"mentorId":     e.MentorID,
		"rawProblem":   e.RawProblem,
		"rawContext":   e.RawContext,
		"rawSolution":  e.RawSolution,
		"rawOutcomes":  e.RawOutcomes,
		"yearOccurred": e.YearOccurred,
		"companyStage": e.CompanyStage,
		"structured":   rawOrNull(e.Structured),
		"createdAt":    e.CreatedAt,
	}
}

func mentorJSON(m models.Mentor) fiber.Map {
	return fiber.Map{
		"id":              m.ID,
		"name":            m.Name,
		"email":           m.Email,
		"bio":             m.Bio,
		"linkedinUrl":     m.LinkedinURL,
		"isActive":        m.IsActive,
		"experienceCount": m.ExperienceCount,
		"createdAt":       m.CreatedAt,
	}
}

func startupJSON(s *models.Startup) fiber.Map {
	return fiber.Map{
		"id":              s.ID,
		"name":            s.Name,
		"founderName":     s.FounderName,
		"email":           s.Email,
		"stage":           s.Stage,
		"teamSize":        s.TeamSize,
		"productMaturity": s.ProductMaturity,
		"createdAt":       s.CreatedAt,
	}
}

func feedbackJSON(f models.Feedback) fiber.Map {
	return fiber.Map{
		"id":             f.ID,
		"matchId":        f.MatchID,
		"rating":         f.Rating,
		"wasRelevant":    f.WasRelevant,
		"wasActionable":  f.WasActionable,
		"wouldRecommend": f.WouldRecommend,
		"founderNotes":   f.FounderNotes,
		"operatorNotes":  f.OperatorNotes,
		"createdAt":      f.CreatedAt,
	}
}
