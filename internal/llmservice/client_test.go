package llmservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"dsa-rag/internal/config"
	"dsa-rag/internal/models"
)

type fakeLLM struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	options  int
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	f.options = len(options)
	return f.resp, f.err
}

func TestNew(t *testing.T) {
	_, err := New(&config.LLMConfig{BaseURL: "http://localhost:1234/v1", Model: "m"})
	assert.Error(t, err)

	llm, err := New(&config.LLMConfig{BaseURL: "http://localhost:1234/v1", Key: "Bearer abc", Model: "m"})
	require.NoError(t, err)
	assert.NotNil(t, llm)
}

func TestComplete(t *testing.T) {
	f := &fakeLLM{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "a stack is LIFO"}}}}

	out, err := Complete(context.Background(), f, "what is a stack")
	require.NoError(t, err)
	assert.Equal(t, "a stack is LIFO", out)

	require.Len(t, f.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, f.messages[0].Role)
	assert.Equal(t, llms.TextContent{Text: "what is a stack"}, f.messages[0].Parts[0])
	assert.Equal(t, 0, f.options)
}

func TestComplete_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Complete(ctx, &fakeLLM{}, "  ")
	assert.ErrorIs(t, err, models.ErrEmptyQuery)

	boom := errors.New("boom")
	_, err = Complete(ctx, &fakeLLM{err: boom}, "prompt")
	assert.ErrorIs(t, err, boom)

	_, err = Complete(ctx, &fakeLLM{resp: &llms.ContentResponse{}}, "prompt")
	assert.Error(t, err)
}

func TestGenerateContent_PassesTools(t *testing.T) {
	f := &fakeLLM{resp: &llms.ContentResponse{}}
	tools := []llms.Tool{{Type: "function", Function: &llms.FunctionDefinition{Name: "lookup"}}}

	_, err := GenerateContent(context.Background(), f, tools, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.options)
}
