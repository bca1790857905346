package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
	// JSONMode asks the provider to constrain output to a JSON object.
	JSONMode bool
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the model server is reachable.
	Available(ctx context.Context) bool
}

// Embedder turns texts into vectors. Clients whose provider has no
// embedding endpoint return ErrEmbeddingsUnsupported.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// NewClient builds the client for cfg.Provider. A nil observer is allowed.
func NewClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(cfg, observer), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, observer), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// statusError is a non-2xx answer from the provider.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.code, e.body)
}

func (e *statusError) Unwrap() error {
	if e.code == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// caller holds what every HTTP-backed provider shares: config, transport,
// the retry loop and call observation.
type caller struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

func newCaller(cfg LLMConfig, observer Observer) caller {
	if observer == nil {
		observer = NoopObserver{}
	}
	return caller{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// params resolves temperature and token limits for req.
func (c caller) params(req GenerateRequest) (float64, int) {
	taskCfg := c.cfg.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	return temp, maxTok
}

// generate runs attempt up to 1+MaxRetries times under the task timeout and
// reports the outcome to the observer.
func (c caller) generate(ctx context.Context, task TaskType, attempt func(ctx context.Context) (text, model string, err error)) (*GenerateResponse, error) {
	start := time.Now()

	timeoutMs := c.cfg.TaskTimeout(task)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		text, model, err := attempt(ctx)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(LLMCallEvent{
				Task:      task,
				Model:     c.cfg.Model,
				LatencyMs: latency,
				Success:   true,
			})
			if model == "" {
				model = c.cfg.Model
			}
			return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
	}

	var result error
	switch {
	case ctx.Err() != nil:
		result = ErrTimeout
	case isConnectionError(lastErr):
		result = fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	case errors.Is(lastErr, ErrRateLimited):
		result = fmt.Errorf("%w: %v", ErrRateLimited, lastErr)
	default:
		result = fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
	}

	c.observer.OnCallComplete(LLMCallEvent{
		Task:      task,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(result),
	})
	return nil, result
}

// postJSON sends body to url and decodes a 200 answer into out.
func (c caller) postJSON(ctx context.Context, url string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return &statusError{code: httpResp.StatusCode, body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ping reports whether GET url answers 200 within two seconds.
func (c caller) ping(ctx context.Context, url string, headers map[string]string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
