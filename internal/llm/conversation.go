package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultMaxTurns bounds conversation memory.
const DefaultMaxTurns = 8

// Conversation is a Reformatter that keeps a buffer of previous turns and
// replays them into every prompt. A Conversation belongs to one document;
// services hand each request its own through Sessions.
type Conversation struct {
	model    ChatModel
	logger   *slog.Logger
	maxTurns int

	mu    sync.Mutex
	turns []Turn
}

func NewConversation(model ChatModel, maxTurns int, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Conversation{model: model, logger: logger, maxTurns: maxTurns}
}

func (c *Conversation) Reformat(ctx context.Context, text, template string) (string, error) {
	if c.model == nil {
		return "", errors.New("no chat model configured")
	}
	if template == "" {
		template = ResumeTemplate
	}

	c.mu.Lock()
	history := slices.Clone(c.turns)
	c.mu.Unlock()

	start := time.Now()
	prompt := RenderPrompt(template, history, text)
	reply, err := c.model.Complete(ctx, prompt)
	if err != nil {
		c.logger.Error("llm.reformat.failed", "model", c.model.Name(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("reformat: %w", err)
	}
	reply = strings.TrimSpace(reply)

	c.mu.Lock()
	c.turns = append(c.turns, Turn{Human: text, AI: reply})
	if len(c.turns) > c.maxTurns {
		c.turns = slices.Clone(c.turns[len(c.turns)-c.maxTurns:])
	}
	turns := len(c.turns)
	c.mu.Unlock()

	c.logger.Info("llm.reformat.ok",
		"model", c.model.Name(),
		"prompt_len", len(prompt),
		"reply_len", len(reply),
		"turns", turns,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

// History returns a copy of the remembered turns, oldest first.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.turns)
}

func (c *Conversation) Reset() {
	c.mu.Lock()
	c.turns = nil
	c.mu.Unlock()
}

// Sessions is the Reformatter shared by request handlers. Every Reformat call
// runs in a new Conversation, so no turn from one document reaches the prompt
// of another and concurrent calls do not wait on each other.
type Sessions struct {
	model  ChatModel
	logger *slog.Logger
}

func NewSessions(model ChatModel, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{model: model, logger: logger}
}

func (s *Sessions) Reformat(ctx context.Context, text, template string) (string, error) {
	return NewConversation(s.model, DefaultMaxTurns, s.logger).Reformat(ctx, text, template)
}
