package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string // if empty, falls back to env GEMINI_API_KEY
	Model       string // default gemini-2.5-flash
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.ChatModel on the Gemini API.
type Client struct {
	cfg    Config
	models *genai.Models
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{cfg: cfg, models: gc.Models, logger: logger}, nil
}

func (c *Client) Name() string { return "gemini:" + c.cfg.Model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	temp := c.cfg.Temperature
	resp, err := c.models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: &temp},
	)
	if err != nil {
		c.logger.Error("llm.gemini.generate_error", "model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("gemini: %w", err)
	}
	text := replyText(resp)
	if text == "" {
		return "", errors.New("no candidates in gemini response")
	}
	c.logger.Debug("llm.gemini.ok", "model", c.cfg.Model, "bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

// replyText concatenates the text parts of the first candidate.
func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
