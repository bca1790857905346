package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited throttles Generate calls on an inner client with a token
// bucket. Available and Embed pass through unthrottled.
type RateLimited struct {
	inner   LLMClient
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute calls per minute with a burst of
// perMinute/10 (at least 1). perMinute <= 0 returns inner unchanged.
func NewRateLimited(inner LLMClient, perMinute int) LLMClient {
	if perMinute <= 0 {
		return inner
	}
	burst := max(1, perMinute/10)
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

func (r *RateLimited) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	// Wait fails fast when the next token would arrive after ctx's deadline.
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimited) Available(ctx context.Context) bool {
	return r.inner.Available(ctx)
}

func (r *RateLimited) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	e, ok := r.inner.(Embedder)
	if !ok {
		return nil, ErrEmbeddingsUnsupported
	}
	return e.Embed(ctx, texts)
}

// DisabledClient stands in when LLM use is switched off. Every call fails
// with ErrUnavailable so callers take their deterministic path.
type DisabledClient struct{}

func (DisabledClient) Generate(context.Context, GenerateRequest) (*GenerateResponse, error) {
	return nil, ErrUnavailable
}

func (DisabledClient) Available(context.Context) bool { return false }

func (DisabledClient) Embed(context.Context, []string) ([][]float64, error) {
	return nil, ErrUnavailable
}

var (
	_ LLMClient = (*RateLimited)(nil)
	_ Embedder  = (*RateLimited)(nil)
	_ LLMClient = DisabledClient{}
	_ LLMClient = (*OllamaClient)(nil)
	_ Embedder  = (*OllamaClient)(nil)
	_ LLMClient = (*OpenAIClient)(nil)
	_ Embedder  = (*OpenAIClient)(nil)
)
