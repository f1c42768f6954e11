package meta

import (
	"pundit/pkg/logger"
)

// Option applies a configuration option to the Completer.
type Option func(*Completer)

// WithModel sets the collaborator model used for squad completion.
func WithModel(model string) Option {
	return func(c *Completer) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens bounds the completion response size.
func WithMaxTokens(n int) Option {
	return func(c *Completer) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLogger sets a custom logger for the completer.
func WithLogger(l logger.Logger) Option {
	return func(c *Completer) {
		if l != nil {
			c.logger = l
		}
	}
}
