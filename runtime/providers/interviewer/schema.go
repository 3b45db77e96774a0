package interviewer

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const converseResponseSchema = `{
  "type": "object",
  "properties": {
    "text":       {"type": ["string", "null"]},
    "transcript": {"type": ["string", "null"]},
    "audio":      {"type": ["string", "null"]},
    "mimeType":   {"type": ["string", "null"]}
  }
}`

const feedbackResponseSchema = `{
  "type": "object",
  "required": ["summary"],
  "properties": {
    "summary":      {"type": "string", "minLength": 1},
    "score":        {"type": "number", "minimum": 0, "maximum": 100},
    "strengths":    {"type": "array", "items": {"type": "string"}},
    "improvements": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	converseSchema = mustSchema(converseResponseSchema)
	feedbackSchema = mustSchema(feedbackResponseSchema)
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schema: %v", err))
	}
	return schema
}

// validate checks body against schema and returns ErrMalformedResponse with
// every violation listed.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		problems[i] = desc.String()
	}
	return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(problems, "; "))
}
