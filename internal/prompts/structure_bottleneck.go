// Package prompts builds the instruction templates sent to the
// text-generation service: structuring raw submissions and scoring
// bottleneck/experience pairs. Each builder returns a fixed system prompt
// plus a per-submission user prompt.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Prompt struct {
	System string
	User   string
}

type BottleneckInput struct {
	RawBlocker         string
	RawAttempts        string
	RawSuccessCriteria string
	Stage              string
	TeamSize           *int
	ProductMaturity    string
}

const bottleneckStructuringSystemPrompt = `You are an expert startup analyst working for Sanctuary, a startup accelerator. Your job is to analyze founder-submitted bottlenecks and convert them into structured representations that can be matched against mentor experiences.

## YOUR TASK

Given a founder's description of their current bottleneck, you must:
1. Identify the underlying problem archetype (the "shape" of the problem)
2. Extract constraints that affect which solutions are viable
3. Assess urgency and stage context
4. Document what they've already tried
5. Clarify their success criteria

## CRITICAL PRINCIPLES

1. PROBLEM SHAPE OVER KEYWORDS
   - "We can't close enterprise deals" and "Sales cycles are too long" might be the same problem shape
   - Look for the underlying pattern, not surface-level descriptions
   - Two problems have the same shape if the same type of experience would help solve both

2. PRESERVE NUANCE
   - Don't reduce complex situations to simple tags
   - A constraint like "we have 3 months of runway" is different from "we have 6 months of runway"
   - Capture the specificity that makes this situation unique

3. CONSTRAINT IDENTIFICATION
   - Hard constraints are non-negotiable (e.g., "we can't hire due to visa restrictions")
   - Soft constraints are preferences (e.g., "we'd prefer not to raise right now")
   - Missing constraints are also informative (no budget constraint = different situation)

4. STAGE CONTEXT MATTERS
   - Pre-seed problems require pre-seed solutions
   - A Series A company's "hiring problem" is fundamentally different from a pre-seed company's

## OUTPUT FORMAT

You must return a valid JSON object matching the StructuredBottleneck schema. Do not include any text outside the JSON.

## PROBLEM ARCHETYPE CATEGORIES

Choose the most specific applicable category:
- FINDING_PMF: Searching for product-market fit, validating the core value proposition
- FIRST_CUSTOMERS: Getting the first 1-10 paying customers, initial traction
- SCALING_SALES: Growing from early customers to repeatable sales process
- HIRING_KEY_ROLE: Recruiting for a critical position (first engineer, first sales hire, etc.)
- TEAM_DYNAMICS: Co-founder issues, team alignment, culture problems
- TECHNICAL_ARCHITECTURE: Scalability, tech debt, build vs. buy decisions
- FUNDRAISING: Raising capital, investor relations, term negotiations
- UNIT_ECONOMICS: Pricing, margins, CAC/LTV, path to profitability
- MARKET_POSITIONING: Differentiation, competitive strategy, messaging
- CHANNEL_STRATEGY: Distribution, growth channels, go-to-market
- PRODUCT_PRIORITIZATION: What to build next, feature scope, roadmap
- OPERATIONAL_SCALING: Processes, systems, operational efficiency
- PIVOTING: Major strategic changes, market shifts
- OTHER: Only if none of the above fit`

const bottleneckOutputSchema = `{
  problemArchetype: {
    category: string, // One of the categories listed above
    subPattern: string, // Specific pattern within category (e.g., "enterprise sales with no track record")
    shapeDescription: string // Natural language description of what makes this problem this shape
  },
  problemStatement: string, // One-sentence distillation of the core problem
  constraints: [
    {
      type: string, // BUDGET, TIME, TEAM_SIZE, TECHNICAL_DEBT, MARKET_TIMING, REGULATORY, GEOGRAPHIC, COMPETITIVE, FOUNDER_EXPERIENCE, EXISTING_COMMITMENTS, OTHER
      description: string,
      severity: "HARD" | "SOFT"
    }
  ],
  urgency: "CRITICAL" | "HIGH" | "MEDIUM" | "LOW",
  stageContext: {
    stage: string, // PRE_SEED, SEED, SERIES_A, SERIES_B_PLUS, GROWTH
    teamSize: number | null,
    monthsOfRunway: number | null,
    hasProduct: boolean,
    hasRevenue: boolean,
    hasFunding: boolean
  },
  attemptedSolutions: [
    {
      description: string,
      outcome: string,
      whyItFailed: string | null
    }
  ],
  successCriteria: {
    description: string,
    timeframe: string,
    measurable: boolean
  },
  signals: {
    hasProductMarketFit: boolean | null,
    hasRevenue: boolean | null,
    isTechnicalProblem: boolean,
    isGTMProblem: boolean,
    isPeopleProblem: boolean,
    isOperationalProblem: boolean,
    isFundraisingProblem: boolean
  }
}`

func BuildBottleneckStructuringPrompt(input BottleneckInput) Prompt {
	var b strings.Builder

	b.WriteString("## FOUNDER SUBMISSION\n\n")
	fmt.Fprintf(&b, "**What is the single biggest thing blocking your progress right now?**\n%s\n\n", input.RawBlocker)
	fmt.Fprintf(&b, "**What have you already tried?**\n%s\n\n", input.RawAttempts)
	fmt.Fprintf(&b, "**What would success look like in the next 14 days?**\n%s\n", input.RawSuccessCriteria)

	if input.Stage != "" {
		fmt.Fprintf(&b, "\n**Stage:** %s\n", input.Stage)
	}
	if input.TeamSize != nil {
		fmt.Fprintf(&b, "\n**Team Size:** %d\n", *input.TeamSize)
	}
	if input.ProductMaturity != "" {
		fmt.Fprintf(&b, "\n**Product Maturity:** %s\n", input.ProductMaturity)
	}

	b.WriteString("\n## YOUR TASK\n\n")
	b.WriteString("Analyze this submission and return a structured JSON object with the following schema:\n\n")
	fmt.Fprintf(&b, "```\n%s\n```\n\n", bottleneckOutputSchema)
	b.WriteString("Return ONLY the JSON object, no additional text.")

	return Prompt{
		System: bottleneckStructuringSystemPrompt,
		User:   b.String(),
	}
}

// indentJSON renders a structured record the way the scoring prompts embed
// it: pretty-printed, two-space indent.
func indentJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
