package llm

import (
	"fmt"
	"sort"
	"strings"
)

var synonyms = map[string]string{
	"phone":        "phoneNumbers",
	"phones":       "phoneNumbers",
	"phoneNumber":  "phoneNumbers",
	"email":        "emails",
	"website":      "websites",
	"address":      "addresses",
	"experience":   "workExperience",
	"work":         "workExperience",
	"certificates": "certifications",
	"dob":          "dateOfBirth",
}

var (
	scalarLists = []string{"phoneNumbers", "websites", "emails"}
	namedLists  = []string{"skills", "certifications"}
	objectLists = []string{"addresses", "education", "workExperience"}
)

// SanitizeFormatted repairs the common ways a model drifts from ResumeTemplate
// so the document can still validate. It returns the fixes it applied.
func SanitizeFormatted(doc map[string]any) (map[string]any, []string) {
	var fixes []string

	for from, to := range synonyms {
		v, ok := doc[from]
		if !ok {
			continue
		}
		if _, exists := doc[to]; !exists {
			doc[to] = v
		}
		delete(doc, from)
		fixes = append(fixes, from+"->"+to)
	}

	// a single value where a list is expected
	for _, k := range scalarLists {
		switch v := doc[k].(type) {
		case string, float64, int:
			doc[k] = []any{v}
			fixes = append(fixes, k+": wrapped")
		}
	}
	for _, k := range objectLists {
		if v, ok := doc[k].(map[string]any); ok {
			doc[k] = []any{v}
			fixes = append(fixes, k+": wrapped")
		}
	}

	// skills: [Go, SQL] or "Go, SQL" -> [{name: Go}, {name: SQL}]
	for _, k := range namedLists {
		items, changed := namedItems(doc[k])
		if changed {
			doc[k] = items
			fixes = append(fixes, k+": named")
		}
	}

	// blank placeholders copied from the template carry no information
	for k, v := range doc {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			doc[k] = nil
		}
	}
	sort.Strings(fixes)
	return doc, fixes
}

func namedItems(v any) ([]any, bool) {
	switch t := v.(type) {
	case string:
		var out []any
		for _, part := range strings.Split(t, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, map[string]any{"name": p})
			}
		}
		return out, true
	case []any:
		changed := false
		out := make([]any, 0, len(t))
		for _, item := range t {
			switch it := item.(type) {
			case map[string]any:
				out = append(out, it)
			case nil:
				changed = true
			default:
				out = append(out, map[string]any{"name": fmt.Sprint(it)})
				changed = true
			}
		}
		return out, changed
	}
	return nil, false
}
