package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/llm"
)

func TestCompleteSendsPromptAndReadsChoice(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"name: Jane Doe"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-test"}, nil)
	out, err := c.Complete(context.Background(), "reformat this")
	require.NoError(t, err)

	assert.Equal(t, "name: Jane Doe", out)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "reformat this", got.Messages[0].Content)
	assert.Equal(t, "openai:gpt-test", c.Name())
}

func TestCompleteNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)

	var he *llm.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusTooManyRequests, he.Status)
	assert.Contains(t, he.Body, "rate limited")
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), "x")
	assert.ErrorContains(t, err, "no choices")
}

func TestCompleteRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	c := NewClient(Config{}, nil)
	_, err := c.Complete(context.Background(), "x")
	assert.ErrorContains(t, err, "api key")
}
