// Package structuring turns raw founder and mentor submissions into
// validated structured representations via a single LLM call per submission.
package structuring

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/llm"
	"github.com/sanctuary-network/backend/internal/metrics"
	"github.com/sanctuary-network/backend/internal/prompts"
	"github.com/sanctuary-network/backend/internal/schema"
	"github.com/sanctuary-network/backend/pkg/logger"
)

// Completer is the slice of the LLM client the structurer needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

type Structurer struct {
	llm Completer
}

func NewStructurer(completer Completer) *Structurer {
	return &Structurer{llm: completer}
}

// StructureBottleneck converts a raw bottleneck submission into its
// structured form. A response that is not valid JSON or fails schema
// validation is returned as a ParseError carrying the raw payload.
func (s *Structurer) StructureBottleneck(ctx context.Context, input prompts.BottleneckInput) (*schema.StructuredBottleneck, error) {
	const op = "structure_bottleneck"
	start := time.Now()

	prompt := prompts.BuildBottleneckStructuringPrompt(input)

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Op:           op,
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
	})
	if err != nil {
		metrics.StructuringTotal.WithLabelValues("bottleneck", "error").Inc()
		return nil, err
	}

	raw := StripCodeFences(resp.Content)

	if err := schema.ValidateBottleneck([]byte(raw)); err != nil {
		metrics.StructuringTotal.WithLabelValues("bottleneck", "invalid").Inc()
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	var structured schema.StructuredBottleneck
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		metrics.StructuringTotal.WithLabelValues("bottleneck", "invalid").Inc()
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	metrics.StructuringTotal.WithLabelValues("bottleneck", "success").Inc()
	metrics.StructuringDuration.WithLabelValues("bottleneck").Observe(time.Since(start).Seconds())

	logger.Info("Bottleneck structured",
		zap.String("category", structured.ProblemArchetype.Category),
		zap.String("urgency", structured.Urgency),
		zap.Duration("duration", time.Since(start)),
	)

	return &structured, nil
}

// StructureExperience converts a raw mentor experience into its structured
// form, with the same validation contract as StructureBottleneck.
func (s *Structurer) StructureExperience(ctx context.Context, input prompts.ExperienceInput) (*schema.StructuredExperience, error) {
	const op = "structure_experience"
	start := time.Now()

	prompt := prompts.BuildExperienceStructuringPrompt(input)

	resp, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Op:           op,
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
	})
	if err != nil {
		metrics.StructuringTotal.WithLabelValues("experience", "error").Inc()
		return nil, err
	}

	raw := StripCodeFences(resp.Content)

	if err := schema.ValidateExperience([]byte(raw)); err != nil {
		metrics.StructuringTotal.WithLabelValues("experience", "invalid").Inc()
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	var structured schema.StructuredExperience
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		metrics.StructuringTotal.WithLabelValues("experience", "invalid").Inc()
		return nil, &apperrors.ParseError{Op: op, Raw: raw, Err: err}
	}

	metrics.StructuringTotal.WithLabelValues("experience", "success").Inc()
	metrics.StructuringDuration.WithLabelValues("experience").Observe(time.Since(start).Seconds())

	logger.Info("Experience structured",
		zap.String("category", structured.ProblemArchetype.Category),
		zap.Duration("duration", time.Since(start)),
	)

	return &structured, nil
}

// StripCodeFences removes a surrounding markdown code fence, if present.
// Models occasionally wrap JSON output in ```json blocks despite
// instructions not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
