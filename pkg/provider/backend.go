package provider

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/finsight-ai/finsight/pkg/config"
)

// Backend is a working LLM endpoint obtained from the chain.
type Backend interface {
	// Complete generates text for a prompt and returns the total token count
	// reported by the provider.
	Complete(ctx context.Context, prompt string) (text string, tokens int, err error)
	// Model returns the model identifier served by this backend.
	Model() string
}

// openAIBackend serves any OpenAI-compatible chat completion API. OpenAI,
// Groq, and Ollama all speak this protocol; only the base URL and credential
// differ per candidate.
type openAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend constructs a backend for an OpenAI-compatible provider.
func NewOpenAIBackend(cfg config.ProviderConfig, apiKey string) (Backend, error) {
	cc := openai.DefaultConfig(apiKey)
	if cfg.URL != "" {
		cc.BaseURL = cfg.URL
	}
	return &openAIBackend{
		client: openai.NewClientWithConfig(cc),
		model:  cfg.Model,
	}, nil
}

func (b *openAIBackend) Complete(ctx context.Context, prompt string) (string, int, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", 0, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", resp.Usage.TotalTokens, fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
}

func (b *openAIBackend) Model() string { return b.model }
