package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"dsa-rag/internal/config"
	"dsa-rag/internal/models"
)

// Generator is the part of a langchaingo model the answer pipeline needs.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// New builds an OpenAI-compatible client from the LLM config.
func New(llmConfig *config.LLMConfig) (*openai.LLM, error) {
	if llmConfig.Key == "" {
		return nil, fmt.Errorf("llm key is required")
	}
	log.Debug().Str("base_url", llmConfig.BaseURL).Str("model", llmConfig.Model).Msg("Creating LLM client")
	return openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
}

// call llm
func GenerateContent(ctx context.Context, llm Generator, tools []llms.Tool, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	if len(tools) > 0 {
		return llm.GenerateContent(ctx, messages, llms.WithTools(tools))
	}
	return llm.GenerateContent(ctx, messages)
}

// Complete sends prompt as a single human message and returns the first choice.
func Complete(ctx context.Context, llm Generator, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", models.ErrEmptyQuery
	}
	msgContent := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := GenerateContent(ctx, llm, nil, msgContent)
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return res.Choices[0].Content, nil
}
