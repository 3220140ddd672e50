package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resumeSchemaURL = "resume.schema.json"

var (
	resumeSchemaOnce sync.Once
	resumeSchema     *jsonschema.Schema
	resumeSchemaErr  error
)

func compileResumeSchema() (*jsonschema.Schema, error) {
	resumeSchemaOnce.Do(func() {
		raw, err := json.Marshal(ResumeJSONSchema())
		if err != nil {
			resumeSchemaErr = fmt.Errorf("marshal resume schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(resumeSchemaURL, bytes.NewReader(raw)); err != nil {
			resumeSchemaErr = fmt.Errorf("add resume schema: %w", err)
			return
		}
		resumeSchema, resumeSchemaErr = c.Compile(resumeSchemaURL)
	})
	return resumeSchema, resumeSchemaErr
}

// ValidateFormatted checks a parsed reformatter reply against ResumeJSONSchema.
// The doc is round-tripped through JSON so YAML-decoded scalars validate as JSON types.
func ValidateFormatted(doc map[string]any) error {
	schema, err := compileResumeSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal formatted: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal formatted: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("reply does not match resume template: %w", err)
	}
	return nil
}
