package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sanctuary-network/backend/internal/schema"
)

func TestBuildBottleneckStructuringPrompt_IncludesSubmission(t *testing.T) {
	teamSize := 6
	p := BuildBottleneckStructuringPrompt(BottleneckInput{
		RawBlocker:         "Cannot close enterprise deals.",
		RawAttempts:        "Hired an AE.",
		RawSuccessCriteria: "Two signed contracts.",
		Stage:              "SEED",
		TeamSize:           &teamSize,
		ProductMaturity:    "LAUNCHED",
	})

	assert.NotEmpty(t, p.System)
	assert.Contains(t, p.User, "Cannot close enterprise deals.")
	assert.Contains(t, p.User, "Hired an AE.")
	assert.Contains(t, p.User, "SEED")
}

func TestBuildBatchMatchingPrompt_ListsEveryCandidate(t *testing.T) {
	candidates := []ScoringCandidate{
		{MentorID: "mentor-1", MentorName: "Dana", ExperienceID: "exp-1"},
		{MentorID: "mentor-2", MentorName: "Sam", ExperienceID: "exp-2"},
	}

	p := BuildBatchMatchingPrompt(schema.StructuredBottleneck{ProblemStatement: "stuck on sales"}, candidates)

	assert.Contains(t, p.System, "BATCH MODE")
	assert.Contains(t, p.User, "mentor-1")
	assert.Contains(t, p.User, "exp-2")
	assert.Contains(t, p.User, "Dana")
	assert.Contains(t, p.User, "score >= 40")
}

func TestBuildMatchingPrompt_NamesTheMentor(t *testing.T) {
	p := BuildMatchingPrompt(schema.StructuredBottleneck{}, schema.StructuredExperience{}, "Dana")

	assert.Contains(t, p.User, "**Mentor:** Dana")
	assert.NotContains(t, p.System, "BATCH MODE")
}
