package schema

// JSON Schema documents enforced on every model response. The prompt
// contracts promise these shapes; anything that deviates is rejected as a
// ParseError instead of flowing downstream half-formed.

const archetypeDefs = `
    "archetype": {
      "type": "object",
      "required": ["category", "subPattern", "shapeDescription"],
      "properties": {
        "category": {"type": "string", "minLength": 1},
        "subPattern": {"type": "string"},
        "shapeDescription": {"type": "string"}
      }
    },
    "constraint": {
      "type": "object",
      "required": ["type", "description", "severity"],
      "properties": {
        "type": {"type": "string"},
        "description": {"type": "string"},
        "severity": {"type": "string", "enum": ["HARD", "SOFT"]}
      }
    }`

const bottleneckSchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "problemArchetype", "problemStatement", "constraints", "urgency",
    "stageContext", "attemptedSolutions", "successCriteria", "signals"
  ],
  "definitions": {` + archetypeDefs + `
  },
  "properties": {
    "problemArchetype": {"$ref": "#/definitions/archetype"},
    "problemStatement": {"type": "string", "minLength": 1},
    "constraints": {"type": "array", "items": {"$ref": "#/definitions/constraint"}},
    "urgency": {"type": "string", "enum": ["CRITICAL", "HIGH", "MEDIUM", "LOW"]},
    "stageContext": {
      "type": "object",
      "required": ["stage", "hasProduct", "hasRevenue", "hasFunding"],
      "properties": {
        "stage": {"type": "string"},
        "teamSize": {"type": ["integer", "null"]},
        "monthsOfRunway": {"type": ["number", "null"]},
        "hasProduct": {"type": "boolean"},
        "hasRevenue": {"type": "boolean"},
        "hasFunding": {"type": "boolean"}
      }
    },
    "attemptedSolutions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description", "outcome"],
        "properties": {
          "description": {"type": "string"},
          "outcome": {"type": "string"},
          "whyItFailed": {"type": ["string", "null"]}
        }
      }
    },
    "successCriteria": {
      "type": "object",
      "required": ["description", "timeframe", "measurable"],
      "properties": {
        "description": {"type": "string"},
        "timeframe": {"type": "string"},
        "measurable": {"type": "boolean"}
      }
    },
    "signals": {
      "type": "object",
      "required": [
        "isTechnicalProblem", "isGTMProblem", "isPeopleProblem",
        "isOperationalProblem", "isFundraisingProblem"
      ],
      "properties": {
        "hasProductMarketFit": {"type": ["boolean", "null"]},
        "hasRevenue": {"type": ["boolean", "null"]},
        "isTechnicalProblem": {"type": "boolean"},
        "isGTMProblem": {"type": "boolean"},
        "isPeopleProblem": {"type": "boolean"},
        "isOperationalProblem": {"type": "boolean"},
        "isFundraisingProblem": {"type": "boolean"}
      }
    }
  }
}`

const experienceSchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "problemArchetype", "problemStatement", "context", "constraints",
    "failedApproaches", "successfulApproach", "outcomes", "insights",
    "applicability"
  ],
  "definitions": {` + archetypeDefs + `
  },
  "properties": {
    "problemArchetype": {"$ref": "#/definitions/archetype"},
    "problemStatement": {"type": "string", "minLength": 1},
    "context": {
      "type": "object",
      "required": ["stage", "yearOccurred", "companyType", "role", "hadFunding", "hadRevenue"],
      "properties": {
        "stage": {"type": "string"},
        "teamSize": {"type": ["integer", "null"]},
        "yearOccurred": {"type": "integer"},
        "companyType": {"type": "string"},
        "role": {"type": "string"},
        "hadFunding": {"type": "boolean"},
        "hadRevenue": {"type": "boolean"}
      }
    },
    "constraints": {"type": "array", "items": {"$ref": "#/definitions/constraint"}},
    "failedApproaches": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description", "whyItFailed", "lessonLearned"],
        "properties": {
          "description": {"type": "string"},
          "whyItFailed": {"type": "string"},
          "lessonLearned": {"type": "string"}
        }
      }
    },
    "successfulApproach": {
      "type": "object",
      "required": ["description", "keyActions", "whyItWorked", "timeToResults"],
      "properties": {
        "description": {"type": "string"},
        "keyActions": {"type": "array", "items": {"type": "string"}},
        "whyItWorked": {"type": "string"},
        "timeToResults": {"type": "string"}
      }
    },
    "outcomes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["metric", "before", "after", "timeframe"],
        "properties": {
          "metric": {"type": "string"},
          "before": {"type": "string"},
          "after": {"type": "string"},
          "timeframe": {"type": "string"}
        }
      }
    },
    "insights": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["insight", "whenApplicable"],
        "properties": {
          "insight": {"type": "string"},
          "whenApplicable": {"type": "string"},
          "whenNotApplicable": {"type": "string"}
        }
      }
    },
    "applicability": {
      "type": "object",
      "required": ["stageRange", "industrySpecific", "industries", "timeSensitivity"],
      "properties": {
        "stageRange": {
          "type": "array",
          "items": {"type": "string"},
          "minItems": 2,
          "maxItems": 2
        },
        "industrySpecific": {"type": "boolean"},
        "industries": {"type": "array", "items": {"type": "string"}},
        "timeSensitivity": {"type": "string", "enum": ["EVERGREEN", "DATED", "CONTEXT_DEPENDENT"]}
      }
    }
  }
}`

const reasoningDefs = `
    "dimensionScores": {
      "type": "object",
      "required": [
        "problemShapeSimilarity", "constraintAlignment", "stageRelevance",
        "experienceDepth", "recency"
      ],
      "properties": {
        "problemShapeSimilarity": {"type": "number", "minimum": 0, "maximum": 100},
        "constraintAlignment": {"type": "number", "minimum": 0, "maximum": 100},
        "stageRelevance": {"type": "number", "minimum": 0, "maximum": 100},
        "experienceDepth": {"type": "number", "minimum": 0, "maximum": 100},
        "recency": {"type": "number", "minimum": 0, "maximum": 100}
      }
    },
    "dimensionWeights": {
      "type": "object",
      "required": [
        "problemShapeSimilarity", "constraintAlignment", "stageRelevance",
        "experienceDepth", "recency"
      ],
      "properties": {
        "problemShapeSimilarity": {"type": "number", "minimum": 0, "maximum": 1},
        "constraintAlignment": {"type": "number", "minimum": 0, "maximum": 1},
        "stageRelevance": {"type": "number", "minimum": 0, "maximum": 1},
        "experienceDepth": {"type": "number", "minimum": 0, "maximum": 1},
        "recency": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "reasoning": {
      "type": "object",
      "required": ["scores", "weights", "keyAlignments", "concerns", "confidenceFactors"],
      "properties": {
        "scores": {"$ref": "#/definitions/dimensionScores"},
        "weights": {"$ref": "#/definitions/dimensionWeights"},
        "componentReasoning": {"type": "object"},
        "keyAlignments": {"type": "array", "items": {"type": "string"}},
        "concerns": {"type": "array", "items": {"type": "string"}},
        "confidenceFactors": {
          "type": "object",
          "required": ["dataQuality", "archetypeClarity", "constraintOverlap"],
          "properties": {
            "dataQuality": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
            "archetypeClarity": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
            "constraintOverlap": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]}
          }
        }
      }
    },
    "matchFields": {
      "type": "object",
      "required": ["score", "confidence", "explanation", "reasoning"],
      "properties": {
        "score": {"type": "number", "minimum": 0, "maximum": 100},
        "confidence": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
        "explanation": {"type": "string", "minLength": 1},
        "reasoning": {"$ref": "#/definitions/reasoning"}
      }
    }`

const matchResultSchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {` + reasoningDefs + `
  },
  "allOf": [{"$ref": "#/definitions/matchFields"}]
}`

const batchMatchSchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {` + reasoningDefs + `
  },
  "type": "array",
  "items": {
    "allOf": [
      {"$ref": "#/definitions/matchFields"},
      {
        "type": "object",
        "required": ["mentorId", "experienceId"],
        "properties": {
          "mentorId": {"type": "string", "minLength": 1},
          "experienceId": {"type": "string", "minLength": 1}
        }
      }
    ]
  }
}`
