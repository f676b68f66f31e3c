package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	bottleneckSchema  = mustCompile(bottleneckSchemaDoc)
	experienceSchema  = mustCompile(experienceSchemaDoc)
	matchResultSchema = mustCompile(matchResultSchemaDoc)
	batchMatchSchema  = mustCompile(batchMatchSchemaDoc)
)

func mustCompile(doc string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return s
}

func ValidateBottleneck(raw []byte) error {
	return validate(bottleneckSchema, raw, "structured bottleneck")
}

func ValidateExperience(raw []byte) error {
	return validate(experienceSchema, raw, "structured experience")
}

func ValidateMatchResult(raw []byte) error {
	return validate(matchResultSchema, raw, "match result")
}

func ValidateBatchMatchResults(raw []byte) error {
	return validate(batchMatchSchema, raw, "batch match results")
}

func validate(schema *gojsonschema.Schema, raw []byte, what string) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%s is not valid JSON: %w", what, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("%s violates schema: %s", what, strings.Join(violations, "; "))
}
