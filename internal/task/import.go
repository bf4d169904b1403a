package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ImportFile is a batch of tasks to create, read from a local JSON file.
type ImportFile struct {
	Tasks []ImportTask `json:"tasks"`
}

// ImportTask is one task entry in an import file.
type ImportTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ValidationError describes one schema violation in an import file.
type ValidationError struct {
	Path string // dotted path to the offending value
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

const importSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "additionalProperties": false,
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

var importSchema = jsonschema.MustCompileString("import.schema.json", importSchemaJSON)

// LoadImportFile reads and validates an import file. The file is checked
// against the embedded schema before anything is handed to the backend,
// so a bad batch fails as a whole with per-field errors.
func LoadImportFile(path string) (*ImportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}

	if err := importSchema.Validate(raw); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, errors.Join(collectSchemaErrors(verr)...)
		}
		return nil, fmt.Errorf("validate import file: %w", err)
	}

	var f ImportFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	return &f, nil
}

// collectSchemaErrors flattens a validation error tree into leaf errors
// with human-readable paths.
func collectSchemaErrors(err *jsonschema.ValidationError) []error {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return []error{&ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		}}
	}
	var out []error
	for _, cause := range err.Causes {
		out = append(out, collectSchemaErrors(cause)...)
	}
	return out
}

// jsonPointerToPath converts a JSON Pointer like "/tasks/0/title" to the
// dotted form "tasks[0].title".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var path string
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
