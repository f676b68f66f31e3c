package models

import "time"

// Bottleneck lifecycle. PENDING means structuring has not completed
// (or failed and awaits operator review).
const (
	BottleneckPending    = "PENDING"
	BottleneckStructured = "STRUCTURED"
	BottleneckMatching   = "MATCHING"
	BottleneckMatched    = "MATCHED"
)

// Match lifecycle.
const (
	MatchPending   = "PENDING"
	MatchApproved  = "APPROVED"
	MatchRejected  = "REJECTED"
	MatchIntroSent = "INTRO_SENT"
	MatchCompleted = "COMPLETED"
)

// Feedback ratings.
const (
	RatingHighlyUseful   = "HIGHLY_USEFUL"
	RatingSomewhatUseful = "SOMEWHAT_USEFUL"
	RatingNotUseful      = "NOT_USEFUL"
)

type Startup struct {
	ID              string
	Name            string
	FounderName     string
	Email           string
	Stage           string
	TeamSize        *int
	ProductMaturity string
	CreatedAt       time.Time
}

type Mentor struct {
	ID              string
	Name            string
	Email           string
	Bio             string
	LinkedinURL     string
	IsActive        bool
	ExperienceCount int
	CreatedAt       time.Time
}

type Bottleneck struct {
	ID                 string
	StartupID          string
	RawBlocker         string
	RawAttempts        string
	RawSuccessCriteria string
	Structured         *string
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Experience struct {
	ID           string
	MentorID     string
	RawProblem   string
	RawContext   string
	RawSolution  string
	RawOutcomes  string
	YearOccurred *int
	CompanyStage string
	Structured   *string
	CreatedAt    time.Time
}

// CandidateExperience is a structured experience of an active mentor,
// joined with the mentor's display name for the scoring prompt.
type CandidateExperience struct {
	ExperienceID string
	MentorID     string
	MentorName   string
	Structured   string
}

type Match struct {
	ID            string
	BottleneckID  string
	ExperienceID  string
	MentorID      string
	MentorName    string
	Score         float64
	Confidence    string
	Reasoning     string
	Explanation   string
	Status        string
	OperatorID    string
	OperatorNotes string
	IntroSentAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Feedback struct {
	ID             string
	MatchID        string
	Rating         string
	WasRelevant    *bool
	WasActionable  *bool
	WouldRecommend *bool
	FounderNotes   string
	OperatorNotes  string
	CreatedAt      time.Time
}

// FeedbackSignal is the slice of a feedback row the weight adjuster needs:
// the rating and the reasoning JSON of the match it rated.
type FeedbackSignal struct {
	Rating    string
	Reasoning string
	CreatedAt time.Time
}

type RatingCount struct {
	Rating string
	Count  int
}

type ConfidenceStats struct {
	Confidence string
	AvgScore   float64
	Count      int
}

type RatingScoreStats struct {
	Rating   string
	AvgScore float64
	Count    int
}
