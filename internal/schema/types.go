// Package schema holds the structured shapes the text-generation service is
// contracted to return, plus strict validation of its responses. Field names
// follow the prompt contracts exactly; changing a json tag here breaks the
// wire format.
package schema

// Confidence levels used for match confidence and confidence factors.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

type ProblemArchetype struct {
	Category         string `json:"category"`
	SubPattern       string `json:"subPattern"`
	ShapeDescription string `json:"shapeDescription"`
}

type Constraint struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type StageContext struct {
	Stage          string `json:"stage"`
	TeamSize       *int   `json:"teamSize"`
	MonthsOfRunway *int   `json:"monthsOfRunway"`
	HasProduct     bool   `json:"hasProduct"`
	HasRevenue     bool   `json:"hasRevenue"`
	HasFunding     bool   `json:"hasFunding"`
}

type AttemptedSolution struct {
	Description string  `json:"description"`
	Outcome     string  `json:"outcome"`
	WhyItFailed *string `json:"whyItFailed"`
}

type SuccessCriteria struct {
	Description string `json:"description"`
	Timeframe   string `json:"timeframe"`
	Measurable  bool   `json:"measurable"`
}

type Signals struct {
	HasProductMarketFit  *bool `json:"hasProductMarketFit"`
	HasRevenue           *bool `json:"hasRevenue"`
	IsTechnicalProblem   bool  `json:"isTechnicalProblem"`
	IsGTMProblem         bool  `json:"isGTMProblem"`
	IsPeopleProblem      bool  `json:"isPeopleProblem"`
	IsOperationalProblem bool  `json:"isOperationalProblem"`
	IsFundraisingProblem bool  `json:"isFundraisingProblem"`
}

// StructuredBottleneck is the schematized form of a founder submission.
// Created once per raw submission, immutable thereafter.
type StructuredBottleneck struct {
	ProblemArchetype   ProblemArchetype    `json:"problemArchetype"`
	ProblemStatement   string              `json:"problemStatement"`
	Constraints        []Constraint        `json:"constraints"`
	Urgency            string              `json:"urgency"`
	StageContext       StageContext        `json:"stageContext"`
	AttemptedSolutions []AttemptedSolution `json:"attemptedSolutions"`
	SuccessCriteria    SuccessCriteria     `json:"successCriteria"`
	Signals            Signals             `json:"signals"`
}

type ExperienceContext struct {
	Stage        string `json:"stage"`
	TeamSize     *int   `json:"teamSize"`
	YearOccurred int    `json:"yearOccurred"`
	CompanyType  string `json:"companyType"`
	Role         string `json:"role"`
	HadFunding   bool   `json:"hadFunding"`
	HadRevenue   bool   `json:"hadRevenue"`
}

type FailedApproach struct {
	Description   string `json:"description"`
	WhyItFailed   string `json:"whyItFailed"`
	LessonLearned string `json:"lessonLearned"`
}

type SuccessfulApproach struct {
	Description   string   `json:"description"`
	KeyActions    []string `json:"keyActions"`
	WhyItWorked   string   `json:"whyItWorked"`
	TimeToResults string   `json:"timeToResults"`
}

type Outcome struct {
	Metric    string `json:"metric"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Timeframe string `json:"timeframe"`
}

type Insight struct {
	Insight           string `json:"insight"`
	WhenApplicable    string `json:"whenApplicable"`
	WhenNotApplicable string `json:"whenNotApplicable"`
}

type Applicability struct {
	StageRange       []string `json:"stageRange"`
	IndustrySpecific bool     `json:"industrySpecific"`
	Industries       []string `json:"industries"`
	TimeSensitivity  string   `json:"timeSensitivity"`
}

// StructuredExperience is the schematized form of a mentor narrative.
type StructuredExperience struct {
	ProblemArchetype   ProblemArchetype   `json:"problemArchetype"`
	ProblemStatement   string             `json:"problemStatement"`
	Context            ExperienceContext  `json:"context"`
	Constraints        []Constraint       `json:"constraints"`
	FailedApproaches   []FailedApproach   `json:"failedApproaches"`
	SuccessfulApproach SuccessfulApproach `json:"successfulApproach"`
	Outcomes           []Outcome          `json:"outcomes"`
	Insights           []Insight          `json:"insights"`
	Applicability      Applicability      `json:"applicability"`
}

// DimensionValues carries one number per scoring dimension. It serves both
// the 0-100 dimension scores and the 0-1 weights, which share field names.
type DimensionValues struct {
	ProblemShapeSimilarity float64 `json:"problemShapeSimilarity"`
	ConstraintAlignment    float64 `json:"constraintAlignment"`
	StageRelevance         float64 `json:"stageRelevance"`
	ExperienceDepth        float64 `json:"experienceDepth"`
	Recency                float64 `json:"recency"`
}

type DimensionReasoning struct {
	ProblemShapeSimilarity string `json:"problemShapeSimilarity"`
	ConstraintAlignment    string `json:"constraintAlignment"`
	StageRelevance         string `json:"stageRelevance"`
	ExperienceDepth        string `json:"experienceDepth"`
	Recency                string `json:"recency"`
}

type ConfidenceFactors struct {
	DataQuality       string `json:"dataQuality"`
	ArchetypeClarity  string `json:"archetypeClarity"`
	ConstraintOverlap string `json:"constraintOverlap"`
}

// MatchReasoning is the per-pair scoring artifact. Created once per match;
// a rematch replaces it wholesale.
type MatchReasoning struct {
	Scores             DimensionValues    `json:"scores"`
	Weights            DimensionValues    `json:"weights"`
	ComponentReasoning DimensionReasoning `json:"componentReasoning"`
	KeyAlignments      []string           `json:"keyAlignments"`
	Concerns           []string           `json:"concerns"`
	ConfidenceFactors  ConfidenceFactors  `json:"confidenceFactors"`
}

// MatchResult is the scorer output for a single pair.
type MatchResult struct {
	Score       float64        `json:"score"`
	Confidence  string         `json:"confidence"`
	Explanation string         `json:"explanation"`
	Reasoning   MatchReasoning `json:"reasoning"`
}

// BatchMatchResult is one element of the batch scorer output, tagged with
// the identifiers the model was told to echo back.
type BatchMatchResult struct {
	MentorID     string         `json:"mentorId"`
	ExperienceID string         `json:"experienceId"`
	Score        float64        `json:"score"`
	Confidence   string         `json:"confidence"`
	Explanation  string         `json:"explanation"`
	Reasoning    MatchReasoning `json:"reasoning"`
}
