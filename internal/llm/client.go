// Package llm provides the text-generation collaborator client used by the
// expert scorers and the squad completer. All resilience (retries, model
// fallback, key rotation) lives here; callers see one uniform transport
// error when everything fails.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pundit/pkg/logger"
	"pundit/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultEndpoint       = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel          = "llama-3.1-8b-instant"
	defaultMaxConcurrency = 8
	defaultTimeout        = 60 * time.Second
	defaultRetryAttempts  = 2
	defaultBackoffBase    = 500 * time.Millisecond
	keyRotationDelay      = 2500 * time.Millisecond
	fallbackModelDelay    = 2 * time.Second
)

// Request describes one generation call.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Usage reports token accounting from the upstream API.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the generated text plus usage metadata.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Client generates text from prompts, honoring ctx for cancellation.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// HTTPClient implements Client against an OpenAI-compatible chat-completions
// endpoint. A shared bounded semaphore caps simultaneous outbound calls
// across every caller.
type HTTPClient struct {
	endpoint       string
	apiKeys        []string
	defaultModel   string
	fallbackModels []string
	retryAttempts  int
	backoffBase    time.Duration
	sem            chan struct{}
	httpc          *http.Client
	logger         logger.Logger
}

// NewHTTPClient creates a client with configuration options. At least one
// API key is required.
func NewHTTPClient(opts ...Option) (*HTTPClient, error) {
	c := &HTTPClient{
		endpoint:      defaultEndpoint,
		defaultModel:  defaultModel,
		retryAttempts: defaultRetryAttempts,
		backoffBase:   defaultBackoffBase,
		sem:           make(chan struct{}, defaultMaxConcurrency),
		httpc:         &http.Client{Timeout: defaultTimeout},
		logger:        logger.Get().Named("llm"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.apiKeys) == 0 {
		return nil, ErrNoAPIKey
	}
	return c, nil
}

// Generate tries the requested model against every API key with bounded
// retries, then walks the fallback model cascade. The semaphore is held for
// the duration of each upstream call only.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (Response, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}

	var lastErr error
	for i, key := range c.apiKeys {
		resp, err := c.callWithRetry(ctx, req, req.Model, key)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		c.logger.Warn(ctx, "primary model call failed, rotating key",
			logger.String("model", req.Model), logger.Int("key_index", i), logger.Error(err))
		if err := sleep(ctx, keyRotationDelay); err != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	for _, fbModel := range c.fallbackModels {
		for _, key := range c.apiKeys {
			c.logger.Warn(ctx, "trying fallback model", logger.String("model", fbModel))
			resp, err := c.call(ctx, req, fbModel, key)
			if err == nil {
				return resp, nil
			}
			lastErr = err
			c.logger.Error(ctx, "fallback model call failed",
				logger.String("model", fbModel), logger.Error(err))
			if err := sleep(ctx, fallbackModelDelay); err != nil {
				return Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
			}
		}
	}

	metrics.RecordLLMExhausted()
	return Response{}, fmt.Errorf("%w: all models failed: %w", ErrTransport, lastErr)
}

// callWithRetry retries transient failures with exponential backoff.
func (c *HTTPClient) callWithRetry(ctx context.Context, req Request, model, key string) (Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoffBase*(1<<(attempt-1))); err != nil {
				return Response{}, err
			}
		}
		resp, err := c.call(ctx, req, model, key)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return Response{}, lastErr
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	N           int           `json:"n"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// call performs one upstream request under the concurrency semaphore.
func (c *HTTPClient) call(ctx context.Context, req Request, model, key string) (Response, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return Response{}, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
	}

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("%w: encode request: %w", ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+key)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	metrics.RecordLLMCall(model)
	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		metrics.RecordLLMError(model)
		return Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		metrics.RecordLLMError(model)
		return Response{}, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		metrics.RecordLLMError(model)
		return Response{}, fmt.Errorf("%w: status %d: %s", ErrTransport, httpResp.StatusCode, truncate(raw, 256))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.RecordLLMError(model)
		return Response{}, fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	if len(parsed.Choices) == 0 {
		metrics.RecordLLMError(model)
		return Response{}, fmt.Errorf("%w: empty choices", ErrTransport)
	}

	metrics.RecordLLMLatency(model, float64(time.Since(start).Milliseconds()))
	return Response{
		Text:  parsed.Choices[0].Message.Content,
		Model: model,
		Usage: parsed.Usage,
	}, nil
}

// sleep waits for d or until ctx is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
