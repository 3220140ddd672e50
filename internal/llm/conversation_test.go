package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedModel struct {
	replies []string
	prompts []string
	err     error
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}

func TestRenderPrompt(t *testing.T) {
	p := RenderPrompt(ResumeTemplate, nil, "Jane Doe\nPython")
	assert.True(t, strings.HasPrefix(p, "You are a chatbot having a conversation with a human."))
	assert.Contains(t, p, "Format the provided resume to this YAML template:\n---\nname: ''")
	assert.True(t, strings.HasSuffix(p, "Human: Jane Doe\nPython\nAI:"))
	assert.NotContains(t, p, "\nAI: ")
}

func TestConversationRemembersTurns(t *testing.T) {
	m := &scriptedModel{replies: []string{"  name: Jane Doe\n", "name: John Roe"}}
	c := NewConversation(m, 0, nil)

	out, err := c.Reformat(context.Background(), "first resume", "")
	require.NoError(t, err)
	assert.Equal(t, "name: Jane Doe", out)

	_, err = c.Reformat(context.Background(), "second resume", ResumeTemplate)
	require.NoError(t, err)

	require.Len(t, m.prompts, 2)
	assert.NotContains(t, m.prompts[0], "first resume\nAI: name")
	assert.Contains(t, m.prompts[1], "Human: first resume\nAI: name: Jane Doe\nHuman: second resume\nAI:")
	assert.Equal(t, []Turn{
		{Human: "first resume", AI: "name: Jane Doe"},
		{Human: "second resume", AI: "name: John Roe"},
	}, c.History())

	c.Reset()
	assert.Empty(t, c.History())
}

func TestConversationBoundsMemory(t *testing.T) {
	m := &scriptedModel{replies: []string{"a", "b", "c"}}
	c := NewConversation(m, 2, nil)
	for _, in := range []string{"1", "2", "3"} {
		_, err := c.Reformat(context.Background(), in, "")
		require.NoError(t, err)
	}
	h := c.History()
	require.Len(t, h, 2)
	assert.Equal(t, "2", h[0].Human)
	assert.Equal(t, "3", h[1].Human)
}

func TestConversationModelError(t *testing.T) {
	c := NewConversation(&scriptedModel{err: errors.New("boom")}, 0, nil)
	_, err := c.Reformat(context.Background(), "x", "")
	assert.ErrorContains(t, err, "boom")
	assert.Empty(t, c.History())
}

type echoModel struct {
	mu      sync.Mutex
	prompts []string
}

func (m *echoModel) Name() string { return "echo" }

func (m *echoModel) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return "name: ok", nil
}

func TestSessionsDoNotShareMemory(t *testing.T) {
	m := &echoModel{}
	s := NewSessions(m, nil)

	_, err := s.Reformat(context.Background(), "Alice\nalice@private.org", "")
	require.NoError(t, err)
	_, err = s.Reformat(context.Background(), "Bob\nbob@example.com", "")
	require.NoError(t, err)

	require.Len(t, m.prompts, 2)
	assert.Contains(t, m.prompts[0], "alice@private.org")
	assert.NotContains(t, m.prompts[1], "alice@private.org")
	assert.Equal(t, 1, strings.Count(m.prompts[1], "Human:"))
}

type blockingModel struct {
	started chan struct{}
	release chan struct{}
}

func (m *blockingModel) Name() string { return "blocking" }

func (m *blockingModel) Complete(ctx context.Context, _ string) (string, error) {
	m.started <- struct{}{}
	select {
	case <-m.release:
		return "name: ok", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSessionsRunConcurrently(t *testing.T) {
	m := &blockingModel{started: make(chan struct{}, 2), release: make(chan struct{})}
	s := NewSessions(m, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, in := range []string{"a", "b"} {
		wg.Add(1)
		go func(in string) {
			defer wg.Done()
			_, err := s.Reformat(ctx, in, "")
			assert.NoError(t, err)
		}(in)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-m.started:
		case <-ctx.Done():
			t.Fatal("second reformat never reached the model")
		}
	}
	close(m.release)
	wg.Wait()
}
