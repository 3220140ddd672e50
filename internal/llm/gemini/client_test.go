package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewClient(context.Background(), Config{}, nil)
	assert.ErrorContains(t, err, "api key")
}

func TestReplyText(t *testing.T) {
	assert.Equal(t, "", replyText(nil))
	assert.Equal(t, "", replyText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "name: "}, {Text: "Jane Doe"}}},
		}},
	}
	assert.Equal(t, "name: Jane Doe", replyText(resp))
}
