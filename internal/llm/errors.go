package llm

import "errors"

var (
	// ErrUnavailable indicates the model server is unreachable or LLM use is disabled.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrRateLimited indicates the call was refused by the local limiter or
	// the provider answered 429.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrEmbeddingsUnsupported indicates the provider has no embedding endpoint.
	ErrEmbeddingsUnsupported = errors.New("llm provider does not support embeddings")
)
