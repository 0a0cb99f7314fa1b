package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const uploadSchema = `{
  "type": "object",
  "required": ["text"],
  "properties": {"text": {"type": "string"}}
}`

const querySchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["docId", "answer", "citation"],
    "properties": {
      "docId": {"type": "string"},
      "answer": {"type": "string"},
      "citation": {"type": "string"}
    }
  }
}`

const themeSchema = `{
  "type": "object",
  "required": ["theme"],
  "properties": {"theme": {"type": "string"}}
}`

const narrateSchema = `{
  "type": "object",
  "required": ["summary"],
  "properties": {"summary": {"type": "string"}}
}`

// ErrInvalidResponse is wrapped by every schema mismatch.
var ErrInvalidResponse = errors.New("invalid response")

// ServiceError is an {"error": "..."} body returned with a 2xx status,
// which is how the service rejects unsupported uploads.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string { return "service error: " + e.Message }

func validate(schema string, payload []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if result.Valid() {
		return nil
	}
	var reply struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(payload, &reply) == nil && reply.Error != "" {
		return &ServiceError{Message: reply.Error}
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(errs, ", "))
}
