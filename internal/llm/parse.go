package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"
)

// StripFences removes a surrounding markdown code fence (``` or ```yaml) if present.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the info string (yaml, yml, json)
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseFormatted decodes a YAML (or JSON) reply into a JSON-compatible map.
func ParseFormatted(raw string) (map[string]any, error) {
	body := StripFences(raw)
	if body == "" {
		return nil, errors.New("empty reformatter reply")
	}
	var v any
	if err := yaml.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	doc, ok := jsonCompatible(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("reply is %T, want a mapping", v)
	}
	return doc, nil
}

// Interpret parses, sanitizes and validates a raw reformatter reply.
func Interpret(raw string) Formatted {
	out := Formatted{Raw: raw}
	doc, err := ParseFormatted(raw)
	if err != nil {
		out.Problems = append(out.Problems, err.Error())
		return out
	}
	doc, out.Fixes = SanitizeFormatted(doc)
	out.Parsed = doc
	if err := ValidateFormatted(doc); err != nil {
		out.Problems = append(out.Problems, err.Error())
		return out
	}
	out.Valid = true
	return out
}

// jsonCompatible rewrites YAML decoder output so encoding/json can marshal it.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = jsonCompatible(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return m
	case []any:
		for i := range t {
			t[i] = jsonCompatible(t[i])
		}
		return t
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
