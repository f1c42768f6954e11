package llm

import (
	"context"
	"sync"
)

// Mock is a Client whose behavior is supplied by the caller. When
// GenerateFunc is nil every call fails with ErrTransport, which exercises
// the pipeline's fallback paths end to end. Safe for concurrent use.
type Mock struct {
	GenerateFunc func(ctx context.Context, req Request) (Response, error)

	mu sync.Mutex
	// Calls records every request seen, in order. Guarded by mu; use
	// CallCount or read after all callers are done.
	Calls []Request
}

// Generate implements Client.
func (m *Mock) Generate(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()
	if m.GenerateFunc == nil {
		return Response{}, ErrTransport
	}
	return m.GenerateFunc(ctx, req)
}

// CallCount returns how many requests the mock has seen.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
