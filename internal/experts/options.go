package experts

import (
	"pundit/pkg/logger"
)

// Option applies a configuration option to an Expert.
type Option func(*Expert)

// WithBatchSize bounds how many candidates go into one prompt.
func WithBatchSize(size int) Option {
	return func(e *Expert) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// WithModel sets the collaborator model this expert requests.
func WithModel(model string) Option {
	return func(e *Expert) {
		if model != "" {
			e.model = model
		}
	}
}

// WithName overrides the agent name (defaults to the persona name).
func WithName(name string) Option {
	return func(e *Expert) {
		if name != "" {
			e.name = name
		}
	}
}

// WithLogger sets a custom logger for the expert.
func WithLogger(l logger.Logger) Option {
	return func(e *Expert) {
		if l != nil {
			e.logger = l
		}
	}
}
