package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/llm"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Name() string { return "openai:" + c.cfg.Model }

// Complete sends prompt as a single user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("openai api key is not set")
	}
	start := time.Now()
	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.http, endpoint, body, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}, c.logger)
	if err != nil {
		c.logger.Error("llm.openai.http_error", "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("openai: %w", err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.openai.decode_error", "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.openai.no_choices", "raw", string(raw))
		return "", errors.New("no choices in openai response")
	}
	return cc.Choices[0].Message.Content, nil
}
