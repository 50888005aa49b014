package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/epanichev/sheetcheck/internal/observability"
	"github.com/epanichev/sheetcheck/internal/reliability"
)

// Config controls the OpenAI-compatible oracle client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// OpenAIOracle talks to any OpenAI-compatible chat completion endpoint.
type OpenAIOracle struct {
	client  *openai.Client
	model   string
	retries int
	metrics *observability.Metrics
}

func NewOpenAI(cfg Config, metrics *observability.Metrics) *OpenAIOracle {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &OpenAIOracle{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		retries: retries,
		metrics: metrics,
	}
}

func (o *OpenAIOracle) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	var lastErr error
	for attempt := 0; attempt < o.retries; attempt++ {
		if attempt > 0 {
			wait := reliability.ExponentialBackoff(attempt-1, 500*time.Millisecond, 8*time.Second)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", fmt.Errorf("oracle retry interrupted: %w", ErrUnavailable)
			}
		}

		start := time.Now()
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		})
		if o.metrics != nil {
			o.metrics.ObserveOracleLatency(time.Since(start))
		}

		if err != nil {
			lastErr = err
			o.countRequest(req.Op, "error")
			if isRetryable(err) {
				continue
			}
			return "", fmt.Errorf("oracle request failed: %v: %w", err, ErrUnavailable)
		}
		if len(resp.Choices) == 0 {
			lastErr = ErrMalformed
			o.countRequest(req.Op, "empty")
			continue
		}

		o.countRequest(req.Op, "ok")
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("oracle gave up after %d attempts: %v: %w", o.retries, lastErr, ErrUnavailable)
}

func (o *OpenAIOracle) countRequest(op Op, outcome string) {
	if o.metrics == nil {
		return
	}
	o.metrics.OracleRequests.WithLabelValues(string(op), outcome).Inc()
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return reliability.IsRetryableHTTPStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reliability.IsRetryableHTTPStatus(reqErr.HTTPStatusCode)
	}
	return reliability.IsTransientNetErr(err)
}
