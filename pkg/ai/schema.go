package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Model responses are untrusted input. Each payload is validated against a
// schema before it is decoded into the internal shape; fields the schema
// marks optional are later defaulted by Normalize.
const feedbackSchemaJSON = `{
  "type": "object",
  "properties": {
    "strengths": {"type": "array", "items": {"type": "string"}},
    "improvements": {"type": "array", "items": {"type": "string"}},
    "analysis": {"type": "string"}
  },
  "required": ["analysis"]
}`

const classReportSchemaJSON = `{
  "type": "object",
  "properties": {
    "performance_patterns": {
      "type": "object",
      "properties": {
        "summary": {"type": "string"},
        "key_patterns": {"type": "array", "items": {"type": "string"}}
      }
    },
    "common_strengths": {"type": "array", "items": {"type": "string"}},
    "common_difficulties": {"type": "array", "items": {"type": "string"}},
    "misconceptions": {"type": "array", "items": {"type": "string"}},
    "teaching_recommendations": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["performance_patterns"]
}`

var (
	feedbackSchema    = mustCompileSchema("feedback.json", feedbackSchemaJSON)
	classReportSchema = mustCompileSchema("class_report.json", classReportSchemaJSON)
)

func mustCompileSchema(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader([]byte(source))); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

func validateAgainst(schema *jsonschema.Schema, raw []byte) error {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("model response failed schema validation: %w", err)
	}
	return nil
}
