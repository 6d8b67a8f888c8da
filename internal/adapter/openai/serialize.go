package openai

import (
	"context"
	"time"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
)

// SerializedClient wraps a generator so that at most one call is in flight
// globally, regardless of how many callers submit concurrently. The external
// service enforces a per-account concurrency limit; serializing here also
// avoids interleaved-response corruption. A short pause is held after each
// call before the next queued request is dispatched.
type SerializedClient struct {
	inner domain.Generator
	slots chan struct{}
	pause time.Duration
}

// NewSerializedClient creates the single-flight decorator.
func NewSerializedClient(inner domain.Generator, pause time.Duration) *SerializedClient {
	s := &SerializedClient{
		inner: inner,
		slots: make(chan struct{}, 1),
		pause: pause,
	}
	s.slots <- struct{}{}
	return s
}

// Generate waits for its turn, issues the call, and holds the slot through
// the inter-request pause. Waiting callers are released in whatever order
// the runtime picks; callers are independent zones, so order is immaterial.
func (s *SerializedClient) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-s.slots:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	text, err := s.inner.Generate(ctx, prompt)

	s.sleep(ctx)
	s.slots <- struct{}{}
	return text, err
}

func (s *SerializedClient) sleep(ctx context.Context) {
	if s.pause <= 0 {
		return
	}
	timer := time.NewTimer(s.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
