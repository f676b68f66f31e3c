package prompts

import (
	"fmt"
	"strings"

	"github.com/sanctuary-network/backend/internal/schema"
)

// ScoringCandidate is one experience offered to the batch scoring call,
// tagged with the identifiers the model must echo back.
type ScoringCandidate struct {
	MentorID     string
	MentorName   string
	ExperienceID string
	Experience   schema.StructuredExperience
}

const matchingSystemPrompt = `You are the matching intelligence for Sanctuary, a startup accelerator. Your job is to determine whether a mentor's past experience is relevant to a founder's current bottleneck.

## YOUR TASK

Given:
1. A structured representation of a founder's bottleneck
2. A structured representation of a mentor's experience

You must:
1. Assess the match quality across 5 dimensions
2. Produce a confidence-calibrated score
3. Generate a human-readable explanation
4. Surface any concerns

## MATCHING DIMENSIONS

### 1. Problem Shape Similarity (40% weight)
Are these fundamentally the same type of problem?

- HIGH: Same archetype category AND similar sub-pattern
  - Example: Both are "first enterprise sales with no track record in regulated industry"
- MEDIUM: Same archetype category, different sub-pattern but transferable
  - Example: "First enterprise sale" vs "First SMB sale" (sales motion differs but principles transfer)
- LOW: Different categories but tangentially related
  - Example: "Hiring first engineer" vs "Technical architecture" (engineer might advise on both)
- NONE: Completely unrelated problems

### 2. Constraint Alignment (25% weight)
Do the constraints match or conflict?

- Matching constraints = higher relevance (mentor operated under same limitations)
- Conflicting constraints = lower relevance (mentor's solution may not apply)
- Missing constraints in experience = neutral (may or may not apply)

Key constraint comparisons:
- Budget: Did mentor operate with similar budget constraints?
- Time: Did mentor face similar urgency?
- Team size: Did mentor solve this with similar resources?
- Market/industry: Is there market-specific knowledge needed?

### 3. Stage Relevance (20% weight)
Does the mentor's experience apply to this founder's stage?

- A mentor who solved "scaling sales" at Series B may not help a pre-seed founder
- Stage adjacency matters: Seed experience is relevant to pre-seed, but Series B less so
- Some experiences are stage-transcendent (rare)

### 4. Experience Depth (10% weight)
How deeply did the mentor engage with this problem?

- Indicators of depth: multiple failed approaches, specific metrics, clear lessons
- Shallow experience: "We just did X" without context
- Deep experience: "We tried A, B, C, learned D, finally E worked because F"

### 5. Recency (5% weight)
Is the experience still relevant?

- 2020+ experience is generally applicable
- 2015-2020 depends on the domain (sales hasn't changed much, technical has)
- Pre-2015 needs stronger other dimensions to compensate

## SCORING RULES

1. Calculate each dimension score (0-100)
2. Apply weights to get weighted score
3. Apply confidence adjustment:
   - HIGH confidence: score stands
   - MEDIUM confidence: score * 0.85
   - LOW confidence: score * 0.70

4. Confidence is determined by:
   - Data quality (are both inputs well-structured?)
   - Archetype clarity (are the problem shapes clearly defined?)
   - Constraint overlap (enough constraints to compare?)

## EXPLANATION REQUIREMENTS

The explanation must:
1. Be one paragraph (2-4 sentences)
2. Start with the core similarity
3. Reference specific elements from both sides
4. Be understandable by a non-technical operator
5. Be honest about limitations

Good explanation:
"This mentor navigated early-stage B2B sales without an established brand, which directly mirrors your challenge of closing enterprise deals as an unknown startup. They specifically faced the same constraint of a long sales cycle with a small team, and their approach of leveraging design partners could apply to your situation. Their experience is from 2022, making it highly relevant to current market conditions."

Bad explanation:
"This mentor has sales experience and you have a sales problem." (Too vague, not defensible)

## OUTPUT FORMAT

Return a JSON object with:
` + "```" + `
{
  score: number, // 0-100, final adjusted score
  confidence: "HIGH" | "MEDIUM" | "LOW",
  explanation: string, // Human-readable, 2-4 sentences
  reasoning: {
    scores: {
      problemShapeSimilarity: number,
      constraintAlignment: number,
      stageRelevance: number,
      experienceDepth: number,
      recency: number
    },
    weights: {
      problemShapeSimilarity: 0.40,
      constraintAlignment: 0.25,
      stageRelevance: 0.20,
      experienceDepth: 0.10,
      recency: 0.05
    },
    componentReasoning: {
      problemShapeSimilarity: string,
      constraintAlignment: string,
      stageRelevance: string,
      experienceDepth: string,
      recency: string
    },
    keyAlignments: string[], // Top 3 things that make this a good match
    concerns: string[], // Any reasons this match might not work
    confidenceFactors: {
      dataQuality: "HIGH" | "MEDIUM" | "LOW",
      archetypeClarity: "HIGH" | "MEDIUM" | "LOW",
      constraintOverlap: "HIGH" | "MEDIUM" | "LOW"
    }
  }
}
` + "```"

const batchMatchingSystemPrompt = matchingSystemPrompt + `

## BATCH MODE

You are evaluating MULTIPLE mentor experiences against a single bottleneck.
Return an array of match objects, one for each experience, in the same order as provided.
Only include experiences with a score of 40 or higher (to filter obvious non-matches).`

func BuildMatchingPrompt(bottleneck schema.StructuredBottleneck, experience schema.StructuredExperience, mentorName string) Prompt {
	var b strings.Builder

	b.WriteString("## FOUNDER BOTTLENECK\n\n")
	b.WriteString(indentJSON(bottleneck))
	b.WriteString("\n\n## MENTOR EXPERIENCE\n\n")
	fmt.Fprintf(&b, "**Mentor:** %s\n\n", mentorName)
	b.WriteString(indentJSON(experience))
	b.WriteString("\n\n## YOUR TASK\n\n")
	b.WriteString("Evaluate this match and return a JSON object with score, confidence, explanation, and detailed reasoning.\n\n")
	b.WriteString(`Remember:
- A score of 70+ should indicate a strong match worth pursuing
- A score of 50-70 indicates a potential match that needs operator review
- A score below 50 indicates a weak match that should probably be skipped
- Be conservative; bad matches destroy trust

Return ONLY the JSON object, no additional text.`)

	return Prompt{
		System: matchingSystemPrompt,
		User:   b.String(),
	}
}

func BuildBatchMatchingPrompt(bottleneck schema.StructuredBottleneck, candidates []ScoringCandidate) Prompt {
	var b strings.Builder

	b.WriteString("## FOUNDER BOTTLENECK\n\n")
	b.WriteString(indentJSON(bottleneck))
	b.WriteString("\n\n## MENTOR EXPERIENCES TO EVALUATE\n\n")

	for i, c := range candidates {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "### Experience %d\n", i+1)
		fmt.Fprintf(&b, "**Mentor ID:** %s\n", c.MentorID)
		fmt.Fprintf(&b, "**Mentor Name:** %s\n", c.MentorName)
		fmt.Fprintf(&b, "**Experience ID:** %s\n\n", c.ExperienceID)
		b.WriteString(indentJSON(c.Experience))
		b.WriteString("\n")
	}

	b.WriteString("\n## YOUR TASK\n\n")
	b.WriteString("Evaluate each experience against the bottleneck. Return a JSON array of match objects.\n")
	b.WriteString("Only include experiences with score >= 40.\n\n")
	b.WriteString("Return format:\n")
	b.WriteString("```json\n[\n  {\n    \"mentorId\": \"...\",\n    \"experienceId\": \"...\",\n    \"score\": number,\n    \"confidence\": \"HIGH\" | \"MEDIUM\" | \"LOW\",\n    \"explanation\": \"...\",\n    \"reasoning\": { ... }\n  },\n  ...\n]\n```\n\n")
	b.WriteString("Return ONLY the JSON array, no additional text.")

	return Prompt{
		System: batchMatchingSystemPrompt,
		User:   b.String(),
	}
}
