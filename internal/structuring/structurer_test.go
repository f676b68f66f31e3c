package structuring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/internal/llm"
	"github.com/sanctuary-network/backend/internal/prompts"
)

const validBottleneckResponse = `{
  "problemArchetype": {
    "category": "SCALING_SALES",
    "subPattern": "first enterprise deals without a track record",
    "shapeDescription": "unknown vendor selling into risk-averse buyers"
  },
  "problemStatement": "Cannot close enterprise deals despite strong pipeline interest.",
  "constraints": [
    {"type": "TIME", "description": "9 months of runway", "severity": "HARD"}
  ],
  "urgency": "HIGH",
  "stageContext": {
    "stage": "SEED",
    "teamSize": 6,
    "monthsOfRunway": 9,
    "hasProduct": true,
    "hasRevenue": true,
    "hasFunding": true
  },
  "attemptedSolutions": [
    {"description": "Hired an enterprise AE", "outcome": "No closed deals in 6 months", "whyItFailed": "No brand trust to lean on"}
  ],
  "successCriteria": {
    "description": "Two signed enterprise contracts",
    "timeframe": "90 days",
    "measurable": true
  },
  "signals": {
    "hasProductMarketFit": null,
    "hasRevenue": true,
    "isTechnicalProblem": false,
    "isGTMProblem": true,
    "isPeopleProblem": false,
    "isOperationalProblem": false,
    "isFundraisingProblem": false
  }
}`

const validExperienceResponse = `{
  "problemArchetype": {
    "category": "SCALING_SALES",
    "subPattern": "first enterprise deals without a track record",
    "shapeDescription": "unknown vendor selling into regulated buyers"
  },
  "problemStatement": "Closed first enterprise contracts as an unknown startup.",
  "context": {
    "stage": "SEED",
    "teamSize": 8,
    "yearOccurred": 2022,
    "companyType": "B2B_SAAS",
    "role": "FOUNDER",
    "hadFunding": true,
    "hadRevenue": true
  },
  "constraints": [
    {"type": "BUDGET", "description": "No marketing budget", "severity": "HARD"}
  ],
  "failedApproaches": [
    {"description": "Cold outbound at scale", "whyItFailed": "No brand recognition", "lessonLearned": "Warm intros only"}
  ],
  "successfulApproach": {
    "description": "Design partner program with two flagship customers",
    "keyActions": ["offered co-development terms", "published joint case study"],
    "whyItWorked": "Reduced buyer risk with shared ownership",
    "timeToResults": "4 months"
  },
  "outcomes": [
    {"metric": "enterprise contracts", "before": "0", "after": "3", "timeframe": "6 months"}
  ],
  "insights": [
    {"insight": "Enterprise buyers buy references, not features", "whenApplicable": "pre-brand startups", "whenNotApplicable": "established vendors"}
  ],
  "applicability": {
    "stageRange": ["PRE_SEED", "SERIES_A"],
    "industrySpecific": false,
    "industries": [],
    "timeSensitivity": "EVERGREEN"
  }
}`

type stubCompleter struct {
	content string
	err     error
	lastOp  string
}

func (s *stubCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.lastOp = req.Op
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func bottleneckInput() prompts.BottleneckInput {
	return prompts.BottleneckInput{
		RawBlocker:         "We cannot close enterprise deals.",
		RawAttempts:        "Hired an AE, ran outbound campaigns.",
		RawSuccessCriteria: "Two signed contracts.",
		Stage:              "SEED",
	}
}

func experienceInput() prompts.ExperienceInput {
	return prompts.ExperienceInput{
		RawProblem:   "We had no enterprise logos and nobody would sign.",
		RawContext:   "Seed stage B2B SaaS, eight people.",
		RawSolution:  "Design partner program with flagship customers.",
		RawOutcomes:  "Three contracts in six months.",
		CompanyStage: "SEED",
	}
}

func TestStructureBottleneck_Success(t *testing.T) {
	completer := &stubCompleter{content: validBottleneckResponse}
	s := NewStructurer(completer)

	got, err := s.StructureBottleneck(context.Background(), bottleneckInput())

	require.NoError(t, err)
	assert.Equal(t, "SCALING_SALES", got.ProblemArchetype.Category)
	assert.Equal(t, "HIGH", got.Urgency)
	require.NotNil(t, got.StageContext.TeamSize)
	assert.Equal(t, 6, *got.StageContext.TeamSize)
	assert.Nil(t, got.Signals.HasProductMarketFit)
}

func TestStructureBottleneck_AcceptsFencedResponse(t *testing.T) {
	completer := &stubCompleter{content: "```json\n" + validBottleneckResponse + "\n```"}
	s := NewStructurer(completer)

	got, err := s.StructureBottleneck(context.Background(), bottleneckInput())

	require.NoError(t, err)
	assert.Equal(t, "SCALING_SALES", got.ProblemArchetype.Category)
}

func TestStructureBottleneck_ParseErrorCarriesRawResponse(t *testing.T) {
	completer := &stubCompleter{content: "Sorry, I can't help with that."}
	s := NewStructurer(completer)

	_, err := s.StructureBottleneck(context.Background(), bottleneckInput())

	require.Error(t, err)
	var parseErr *apperrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "structure_bottleneck", parseErr.Op)
	assert.Contains(t, parseErr.Raw, "Sorry")
}

func TestStructureBottleneck_SchemaViolation(t *testing.T) {
	// Well-formed JSON with an invalid urgency enum value.
	completer := &stubCompleter{content: `{"problemArchetype": {"category": "OTHER", "subPattern": "", "shapeDescription": ""}, "problemStatement": "x", "constraints": [], "urgency": "EXTREME", "stageContext": {"stage": "SEED", "hasProduct": false, "hasRevenue": false, "hasFunding": false}, "attemptedSolutions": [], "successCriteria": {"description": "x", "timeframe": "x", "measurable": false}, "signals": {"isTechnicalProblem": false, "isGTMProblem": false, "isPeopleProblem": false, "isOperationalProblem": false, "isFundraisingProblem": false}}`}
	s := NewStructurer(completer)

	_, err := s.StructureBottleneck(context.Background(), bottleneckInput())

	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestStructureBottleneck_UpstreamErrorPassedThrough(t *testing.T) {
	upstream := &apperrors.UpstreamError{Op: "structure_bottleneck", Err: errors.New("rate limited")}
	completer := &stubCompleter{err: upstream}
	s := NewStructurer(completer)

	_, err := s.StructureBottleneck(context.Background(), bottleneckInput())

	assert.True(t, apperrors.IsUpstreamError(err))
	assert.False(t, apperrors.IsParseError(err))
}

func TestStructureExperience_Success(t *testing.T) {
	completer := &stubCompleter{content: validExperienceResponse}
	s := NewStructurer(completer)

	got, err := s.StructureExperience(context.Background(), experienceInput())

	require.NoError(t, err)
	assert.Equal(t, 2022, got.Context.YearOccurred)
	assert.Equal(t, []string{"PRE_SEED", "SERIES_A"}, got.Applicability.StageRange)
	assert.Equal(t, "structure_experience", completer.lastOp)
}

func TestStructureExperience_ParseError(t *testing.T) {
	completer := &stubCompleter{content: `{"problemStatement": "missing everything else"}`}
	s := NewStructurer(completer)

	_, err := s.StructureExperience(context.Background(), experienceInput())

	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}
