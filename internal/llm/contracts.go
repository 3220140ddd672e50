package llm

import "context"

// ChatModel completes a single rendered prompt.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Reformatter rewrites extracted resume text into the given template.
type Reformatter interface {
	Reformat(ctx context.Context, text, template string) (string, error)
}

// Turn is one exchange kept in conversation memory.
type Turn struct {
	Human string `json:"human"`
	AI    string `json:"ai"`
}

// Formatted is a parsed and validated reformatter reply.
type Formatted struct {
	Raw      string         `json:"formatted"`
	Parsed   map[string]any `json:"parsed"`
	Valid    bool           `json:"valid"`
	Problems []string       `json:"problems,omitempty"`
	Fixes    []string       `json:"fixes,omitempty"`
}
