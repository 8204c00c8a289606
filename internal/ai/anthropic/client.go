// Package anthropic implements ai.Generator with the Anthropic messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/ai"
	"github.com/spigell/ats-checker/internal/logger"
)

const (
	ProviderName = "anthropic"

	defaultModel     = "claude-3-5-sonnet-latest"
	defaultMaxTokens = 4096
)

type Generator struct {
	client *anthropic.Client
	model  string
	policy ai.RetryPolicy
	logger *zap.Logger
}

// NewGenerator builds a generator. An empty baseURL keeps the public API
// endpoint.
func NewGenerator(apiKey, model, baseURL string, policy ai.RetryPolicy, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	var opts []anthropic.ClientOption
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{
		client: anthropic.NewClient(apiKey, opts...),
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

	req := anthropic.MessagesRequest{
		Model: anthropic.Model(g.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens: defaultMaxTokens,
	}

	return ai.Call(ctx, g.policy, g.logger, isRetryable, func(ctx context.Context) (string, error) {
		resp, err := g.client.CreateMessages(ctx, req)
		if err != nil {
			return "", fmt.Errorf("create messages: %w", err)
		}

		var parts []string
		for _, content := range resp.Content {
			if content.Text == nil {
				continue
			}
			if text := strings.TrimSpace(*content.Text); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) == 0 {
			return "", ai.ErrEmptyResponse
		}
		return strings.Join(parts, "\n"), nil
	})
}

func (g *Generator) Model() string { return g.model }

func isRetryable(err error) bool {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRateLimitErr() || apiErr.IsOverloadedErr()
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == http.StatusTooManyRequests || reqErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}
