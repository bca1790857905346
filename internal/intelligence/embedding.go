package intelligence

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/llm"
)

// EmbeddingDims is the length of a deterministic task embedding.
const EmbeddingDims = 384

const hashDims = EmbeddingDims - 6

// Embedding sources.
const (
	EmbeddingSourceModel = "model"
	EmbeddingSourceHash  = "hash"
)

type EmbeddingService interface {
	// Embed returns one vector per task id and the source that produced them.
	Embed(ctx context.Context, tasks []domain.Task) (map[int][]float64, string)
}

type embeddingService struct {
	client llm.LLMClient
	log    *slog.Logger
}

// NewEmbeddingService uses the client's embeddings when it implements
// llm.Embedder and falls back to hash vectors otherwise.
func NewEmbeddingService(client llm.LLMClient, log *slog.Logger) EmbeddingService {
	return &embeddingService{client: client, log: log}
}

func embeddingText(t domain.Task) string {
	return fmt.Sprintf("%s %s %s", t.Title, t.Goal, t.Category)
}

func (s *embeddingService) Embed(ctx context.Context, tasks []domain.Task) (map[int][]float64, string) {
	out := make(map[int][]float64, len(tasks))
	if len(tasks) == 0 {
		return out, EmbeddingSourceHash
	}

	if e, ok := s.client.(llm.Embedder); ok {
		texts := make([]string, len(tasks))
		for i, t := range tasks {
			texts[i] = embeddingText(t)
		}
		vecs, err := e.Embed(ctx, texts)
		if err == nil && len(vecs) == len(tasks) {
			for i, t := range tasks {
				out[t.ID] = vecs[i]
			}
			return out, EmbeddingSourceModel
		}
		if err != nil {
			s.log.Warn("model embeddings unavailable, using hash vectors", "error", err)
		} else {
			s.log.Warn("model returned wrong number of embeddings", "want", len(tasks), "got", len(vecs))
		}
	}

	for _, t := range tasks {
		out[t.ID] = HashEmbedding(t)
	}
	return out, EmbeddingSourceHash
}

// HashEmbedding is a deterministic 384-dim feature vector: values in [-1, 1]
// cycled from the SHA-256 of the task text, then a category one-hot (0.25
// each when unknown), priority/10 and min(hours/10, 1).
func HashEmbedding(t domain.Task) []float64 {
	sum := sha256.Sum256([]byte(strings.ToLower(embeddingText(t))))
	base := make([]float64, len(sum)/2)
	for i := range base {
		v := binary.BigEndian.Uint16(sum[2*i:])
		base[i] = float64(v)/65535.0*2 - 1
	}

	vec := make([]float64, 0, EmbeddingDims)
	for i := 0; i < hashDims; i++ {
		vec = append(vec, base[i%len(base)])
	}

	if idx := t.Category.Index(); idx >= 0 {
		onehot := make([]float64, len(domain.Categories))
		onehot[idx] = 1
		vec = append(vec, onehot...)
	} else {
		vec = append(vec, 0.25, 0.25, 0.25, 0.25)
	}

	priority := t.Priority
	if priority == 0 {
		priority = domain.DefaultPriority
	}
	vec = append(vec, float64(priority)/10, min(t.TimeHours/10, 1))
	return vec
}
