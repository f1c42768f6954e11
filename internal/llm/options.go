package llm

import (
	"net/http"
	"time"

	"pundit/pkg/logger"
)

// Option applies a configuration option to the HTTPClient.
type Option func(*HTTPClient)

// WithEndpoint sets the chat-completions endpoint URL.
func WithEndpoint(url string) Option {
	return func(c *HTTPClient) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithAPIKeys sets the API keys tried in rotation. Empty keys are dropped.
func WithAPIKeys(keys ...string) Option {
	return func(c *HTTPClient) {
		c.apiKeys = c.apiKeys[:0]
		for _, k := range keys {
			if k != "" {
				c.apiKeys = append(c.apiKeys, k)
			}
		}
	}
}

// WithDefaultModel sets the model used when a request does not name one.
func WithDefaultModel(model string) Option {
	return func(c *HTTPClient) {
		if model != "" {
			c.defaultModel = model
		}
	}
}

// WithFallbackModels sets the model cascade tried after the primary fails.
func WithFallbackModels(models ...string) Option {
	return func(c *HTTPClient) {
		c.fallbackModels = models
	}
}

// WithMaxConcurrency bounds simultaneous outbound calls across all callers.
func WithMaxConcurrency(n int) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

// WithTimeout sets the per-call HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

// WithRetryAttempts sets how many times a call is attempted per key.
func WithRetryAttempts(n int) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.retryAttempts = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}
