package gemini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"fichesynthese/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// InvalidResponseError indicates the model answered with content that is not a
// usable study sheet.
type InvalidResponseError struct {
	Content string
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid study sheet response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

const schemaURL = "schema://study-sheet.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func studySheetSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants plain decoded JSON values, not Go literals.
		raw, err := json.Marshal(models.StudySheetSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// ParseStudySheet extracts, validates and decodes a study sheet from model text.
func ParseStudySheet(text string) (*models.StudySheet, error) {
	jsonText := extractJSON(text)
	if jsonText == "" {
		return nil, ErrEmptyResponse
	}

	var parsed any
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, &InvalidResponseError{Content: jsonText, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := studySheetSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling study sheet schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &InvalidResponseError{Content: jsonText, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var sheet models.StudySheet
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonText)))
	if err := dec.Decode(&sheet); err != nil {
		return nil, &InvalidResponseError{Content: jsonText, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := sheet.Validate(); err != nil {
		return nil, &InvalidResponseError{Content: jsonText, Err: err}
	}
	return &sheet, nil
}

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// extractJSON strips markdown fences or surrounding prose around the JSON object.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if m := codeFencePattern.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
