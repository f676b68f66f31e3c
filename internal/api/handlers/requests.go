package handlers

import (
	"fmt"
	"regexp"
	"time"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError is one validation failure, reported per field so the frontend
// can attach it to the right input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func requiredString(value, field string, minLen, maxLen int) *FieldError {
	if value == "" {
		return &FieldError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	if len(value) < minLen {
		return &FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, minLen)}
	}
	if len(value) > maxLen {
		return &FieldError{Field: field, Message: fmt.Sprintf("%s must be less than %d characters", field, maxLen)}
	}
	return nil
}

func validEmail(value, field string) *FieldError {
	if value == "" {
		return &FieldError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	if !emailRegex.MatchString(value) {
		return &FieldError{Field: field, Message: fmt.Sprintf("%s must be a valid email address", field)}
	}
	return nil
}

func optionalNumber(value *int, field string, min, max int) *FieldError {
	if value == nil {
		return nil
	}
	if *value < min {
		return &FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %d", field, min)}
	}
	if *value > max {
		return &FieldError{Field: field, Message: fmt.Sprintf("%s must be at most %d", field, max)}
	}
	return nil
}

func inEnum(value, field string, allowed []string, optional bool) *FieldError {
	if value == "" {
		if optional {
			return nil
		}
		return &FieldError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &FieldError{Field: field, Message: fmt.Sprintf("%s must be one of: %v", field, allowed)}
}

func appendErr(errs []FieldError, e *FieldError) []FieldError {
	if e != nil {
		errs = append(errs, *e)
	}
	return errs
}

var startupStages = []string{"PRE_SEED", "SEED", "SERIES_A", "SERIES_B_PLUS", "GROWTH"}

type CreateStartupRequest struct {
	Name            string `json:"name"`
	FounderName     string `json:"founderName"`
	Email           string `json:"email"`
	Stage           string `json:"stage"`
	TeamSize        *int   `json:"teamSize"`
	ProductMaturity string `json:"productMaturity"`
}

func (r *CreateStartupRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendErr(errs, requiredString(r.Name, "name", 1, 200))
	errs = appendErr(errs, requiredString(r.FounderName, "founderName", 1, 200))
	errs = appendErr(errs, validEmail(r.Email, "email"))
	errs = appendErr(errs, inEnum(r.Stage, "stage", startupStages, true))
	errs = appendErr(errs, optionalNumber(r.TeamSize, "teamSize", 1, 10000))
	return errs
}

type CreateMentorRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
	LinkedinURL string `json:"linkedinUrl"`
}

func (r *CreateMentorRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendErr(errs, requiredString(r.Name, "name", 1, 200))
	errs = appendErr(errs, validEmail(r.Email, "email"))
	return errs
}

type SubmitBottleneckRequest struct {
	StartupID          string `json:"startupId"`
	RawBlocker         string `json:"rawBlocker"`
	RawAttempts        string `json:"rawAttempts"`
	RawSuccessCriteria string `json:"rawSuccessCriteria"`
	Stage              string `json:"stage"`
	TeamSize           *int   `json:"teamSize"`
	ProductMaturity    string `json:"productMaturity"`
}

func (r *SubmitBottleneckRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendErr(errs, requiredString(r.StartupID, "startupId", 1, 100))
	errs = appendErr(errs, requiredString(r.RawBlocker, "rawBlocker", 5, 10000))
	errs = appendErr(errs, requiredString(r.RawAttempts, "rawAttempts", 5, 10000))
	errs = appendErr(errs, requiredString(r.RawSuccessCriteria, "rawSuccessCriteria", 5, 5000))
	return errs
}

type SubmitExperienceRequest struct {
	MentorID     string `json:"mentorId"`
	RawProblem   string `json:"rawProblem"`
	RawContext   string `json:"rawContext"`
	RawSolution  string `json:"rawSolution"`
	RawOutcomes  string `json:"rawOutcomes"`
	YearOccurred *int   `json:"yearOccurred"`
	CompanyStage string `json:"companyStage"`
}

func (r *SubmitExperienceRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendErr(errs, requiredString(r.MentorID, "mentorId", 1, 100))
	errs = appendErr(errs, requiredString(r.RawProblem, "rawProblem", 20, 10000))
	errs = appendErr(errs, requiredString(r.RawContext, "rawContext", 20, 10000))
	errs = appendErr(errs, requiredString(r.RawSolution, "rawSolution", 20, 10000))
	errs = appendErr(errs, requiredString(r.RawOutcomes, "rawOutcomes", 10, 10000))
	errs = appendErr(errs, optionalNumber(r.YearOccurred, "yearOccurred", 1990, time.Now().Year()))
	return errs
}

type OperatorDecisionRequest struct {
	OperatorID    string `json:"operatorId"`
	OperatorNotes string `json:"operatorNotes"`
}

var feedbackRatings = []string{"HIGHLY_USEFUL", "SOMEWHAT_USEFUL", "NOT_USEFUL"}

type SubmitFeedbackRequest struct {
	Rating         string `json:"rating"`
	WasRelevant    *bool  `json:"wasRelevant"`
	WasActionable  *bool  `json:"wasActionable"`
	WouldRecommend *bool  `json:"wouldRecommend"`
	FounderNotes   string `json:"founderNotes"`
	OperatorNotes  string `json:"operatorNotes"`
}

func (r *SubmitFeedbackRequest) Validate() []FieldError {
	var errs []FieldError
	errs = appendErr(errs, inEnum(r.Rating, "rating", feedbackRatings, false))
	return errs
}
