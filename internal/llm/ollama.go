package llm

import "context"

// OllamaClient implements LLMClient and Embedder using the Ollama HTTP API.
type OllamaClient struct {
	caller
}

// NewOllamaClient creates a client that talks to an Ollama instance.
func NewOllamaClient(cfg LLMConfig, observer Observer) *OllamaClient {
	return &OllamaClient{caller: newCaller(cfg, observer)}
}

// ollamaRequest is the JSON body sent to POST /api/generate.
type ollamaRequest struct {
	Model   string        `json:"model"`
	System  string        `json:"system,omitempty"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaResponse is the JSON body returned by POST /api/generate (non-streaming).
type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	temp, maxTok := c.params(req)
	body := ollamaRequest{
		Model:  c.cfg.Model,
		System: req.SystemPrompt,
		Prompt: req.UserPrompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: temp,
			NumPredict:  maxTok,
		},
	}
	if req.JSONMode {
		body.Format = "json"
	}

	return c.generate(ctx, req.Task, func(ctx context.Context) (string, string, error) {
		var resp ollamaResponse
		if err := c.postJSON(ctx, c.cfg.Endpoint+"/api/generate", nil, body, &resp); err != nil {
			return "", "", err
		}
		return resp.Response, resp.Model, nil
	})
}

func (c *OllamaClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	var resp ollamaEmbedResponse
	body := ollamaEmbedRequest{Model: c.cfg.EmbeddingModel, Input: texts}
	if err := c.postJSON(ctx, c.cfg.Endpoint+"/api/embed", nil, body, &resp); err != nil {
		return nil, wrapEmbedError(err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, ErrInvalidOutput
	}
	return resp.Embeddings, nil
}

func (c *OllamaClient) Available(ctx context.Context) bool {
	return c.ping(ctx, c.cfg.Endpoint+"/api/tags", nil)
}
