package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/polylearner/internal/llm"
)

// FakeLLM answers Generate calls from a per-task script. Tasks without a
// response get Err, or llm.ErrUnavailable when Err is nil.
type FakeLLM struct {
	mu        sync.Mutex
	Responses map[llm.TaskType]string
	Err       error
	// Vectors, when set, makes the fake an llm.Embedder.
	Vectors  func(text string) []float64
	Requests []llm.GenerateRequest
}

func NewFakeLLM() *FakeLLM {
	return &FakeLLM{Responses: make(map[llm.TaskType]string)}
}

// Respond scripts the raw text returned for task.
func (f *FakeLLM) Respond(task llm.TaskType, text string) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[task] = text
	return f
}

func (f *FakeLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if text, ok := f.Responses[req.Task]; ok {
		return &llm.GenerateResponse{Text: text, Model: "fake"}, nil
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return nil, llm.ErrUnavailable
}

func (f *FakeLLM) Available(context.Context) bool { return f.Err == nil }

func (f *FakeLLM) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if f.Vectors == nil {
		return nil, llm.ErrEmbeddingsUnsupported
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = f.Vectors(text)
	}
	return out, nil
}

// Calls returns how many Generate calls were made for task.
func (f *FakeLLM) Calls(task llm.TaskType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.Requests {
		if r.Task == task {
			n++
		}
	}
	return n
}

var (
	_ llm.LLMClient = (*FakeLLM)(nil)
	_ llm.Embedder  = (*FakeLLM)(nil)
)
