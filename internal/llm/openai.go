package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// OpenAIClient speaks the OpenAI chat completions protocol, which hosted
// OpenAI models and most self-hosted gateways share.
type OpenAIClient struct {
	caller
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
// cfg.Endpoint is the base URL without the /v1 suffix.
func NewOpenAIClient(cfg LLMConfig, observer Observer) *OpenAIClient {
	return &OpenAIClient{caller: newCaller(cfg, observer)}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (c *OpenAIClient) headers() map[string]string {
	if c.cfg.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	temp, maxTok := c.params(req)
	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: temp,
		MaxTokens:   maxTok,
	}
	if req.SystemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.UserPrompt})
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	return c.generate(ctx, req.Task, func(ctx context.Context) (string, string, error) {
		var resp chatResponse
		if err := c.postJSON(ctx, c.cfg.Endpoint+"/v1/chat/completions", c.headers(), body, &resp); err != nil {
			return "", "", err
		}
		if len(resp.Choices) == 0 {
			return "", "", fmt.Errorf("%w: no choices in response", ErrInvalidOutput)
		}
		return resp.Choices[0].Message.Content, resp.Model, nil
	})
}

func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	var resp embeddingResponse
	body := embeddingRequest{Model: c.cfg.EmbeddingModel, Input: texts}
	if err := c.postJSON(ctx, c.cfg.Endpoint+"/v1/embeddings", c.headers(), body, &resp); err != nil {
		return nil, wrapEmbedError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, ErrInvalidOutput
	}
	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, ErrInvalidOutput
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (c *OpenAIClient) Available(ctx context.Context) bool {
	if c.cfg.Endpoint == "" {
		return false
	}
	return c.ping(ctx, c.cfg.Endpoint+"/v1/models", c.headers())
}

// wrapEmbedError maps a missing embedding route to ErrEmbeddingsUnsupported.
func wrapEmbedError(err error) error {
	var se *statusError
	if errors.As(err, &se) && (se.code == http.StatusNotFound || se.code == http.StatusNotImplemented) {
		return fmt.Errorf("%w: %v", ErrEmbeddingsUnsupported, err)
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("embedding request: %w", err)
}
