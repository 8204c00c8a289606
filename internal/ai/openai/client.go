// Package openai implements ai.Generator with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/ai"
	"github.com/spigell/ats-checker/internal/logger"
)

const (
	ProviderName = "openai"

	defaultModel = openai.GPT4o
)

type Generator struct {
	client *openai.Client
	model  string
	policy ai.RetryPolicy
	logger *zap.Logger
}

// NewGenerator builds a generator. An empty baseURL keeps the public API
// endpoint.
func NewGenerator(apiKey, model, baseURL string, policy ai.RetryPolicy, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		config.BaseURL = baseURL
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{
		client: openai.NewClientWithConfig(config),
		model:  model,
		policy: policy,
		logger: logger.WithCommonFields(log, ProviderName, model),
	}, nil
}

func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	return ai.Call(ctx, g.policy, g.logger, isRetryable, func(ctx context.Context) (string, error) {
		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("create chat completion: %w", err)
		}
		for _, choice := range resp.Choices {
			if text := strings.TrimSpace(choice.Message.Content); text != "" {
				return text, nil
			}
		}
		return "", ai.ErrEmptyResponse
	})
}

func (g *Generator) Model() string { return g.model }

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
