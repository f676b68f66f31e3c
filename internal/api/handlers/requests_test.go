package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(errs []FieldError) []string {
	var names []string
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func intPtr(v int) *int { return &v }

func TestCreateStartupRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        CreateStartupRequest
		wantFields []string
	}{
		{
			name: "valid",
			req: CreateStartupRequest{
				Name:        "Acme",
				FounderName: "Jordan Lee",
				Email:       "jordan@acme.io",
				Stage:       "SEED",
				TeamSize:    intPtr(4),
			},
		},
		{
			name: "valid without optional fields",
			req: CreateStartupRequest{
				Name:        "Acme",
				FounderName: "Jordan Lee",
				Email:       "jordan@acme.io",
			},
		},
		{
			name:       "missing everything",
			req:        CreateStartupRequest{},
			wantFields: []string{"name", "founderName", "email"},
		},
		{
			name: "bad email",
			req: CreateStartupRequest{
				Name:        "Acme",
				FounderName: "Jordan Lee",
				Email:       "not-an-email",
			},
			wantFields: []string{"email"},
		},
		{
			name: "bad stage",
			req: CreateStartupRequest{
				Name:        "Acme",
				FounderName: "Jordan Lee",
				Email:       "jordan@acme.io",
				Stage:       "UNICORN",
			},
			wantFields: []string{"stage"},
		},
		{
			name: "team size out of range",
			req: CreateStartupRequest{
				Name:        "Acme",
				FounderName: "Jordan Lee",
				Email:       "jordan@acme.io",
				TeamSize:    intPtr(0),
			},
			wantFields: []string{"teamSize"},
		},
		{
			name: "name too long",
			req: CreateStartupRequest{
				Name:        strings.Repeat("a", 201),
				FounderName: "Jordan Lee",
				Email:       "jordan@acme.io",
			},
			wantFields: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.ElementsMatch(t, tt.wantFields, fieldNames(errs))
		})
	}
}

func TestSubmitBottleneckRequest_Validate(t *testing.T) {
	valid := SubmitBottleneckRequest{
		StartupID:          "su-1",
		RawBlocker:         "We cannot close enterprise deals despite pipeline interest.",
		RawAttempts:        "Hired an AE and ran outbound for two quarters.",
		RawSuccessCriteria: "Two signed contracts in 90 days.",
	}
	assert.Empty(t, valid.Validate())

	short := valid
	short.RawBlocker = "stuck"
	errs := short.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "rawBlocker", errs[0].Field)
	assert.Contains(t, errs[0].Message, "at least 5")

	missing := SubmitBottleneckRequest{}
	assert.ElementsMatch(t,
		[]string{"startupId", "rawBlocker", "rawAttempts", "rawSuccessCriteria"},
		fieldNames(missing.Validate()),
	)
}

func TestSubmitExperienceRequest_Validate(t *testing.T) {
	valid := SubmitExperienceRequest{
		MentorID:     "m-1",
		RawProblem:   "We had no enterprise logos and nobody would sign with us.",
		RawContext:   "Seed stage B2B SaaS with eight people and no brand.",
		RawSolution:  "Built a design partner program with two flagship customers.",
		RawOutcomes:  "Three contracts in six months.",
		YearOccurred: intPtr(2021),
	}
	assert.Empty(t, valid.Validate())

	old := valid
	old.YearOccurred = intPtr(1985)
	errs := old.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "yearOccurred", errs[0].Field)

	shortProblem := valid
	shortProblem.RawProblem = "too short"
	errs = shortProblem.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "rawProblem", errs[0].Field)
}

func TestSubmitFeedbackRequest_Validate(t *testing.T) {
	assert.Empty(t, (&SubmitFeedbackRequest{Rating: "HIGHLY_USEFUL"}).Validate())
	assert.Empty(t, (&SubmitFeedbackRequest{Rating: "NOT_USEFUL"}).Validate())

	errs := (&SubmitFeedbackRequest{Rating: "AMAZING"}).Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "rating", errs[0].Field)

	errs = (&SubmitFeedbackRequest{}).Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "required")
}

func TestCreateMentorRequest_Validate(t *testing.T) {
	assert.Empty(t, (&CreateMentorRequest{Name: "Dana", Email: "dana@mentors.io"}).Validate())

	errs := (&CreateMentorRequest{Name: "Dana", Email: "dana@"}).Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
}
