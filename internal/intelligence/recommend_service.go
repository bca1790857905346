package intelligence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/llm"
)

// Recommendation is a scheduling tip. Priority is 1-10.
type Recommendation struct {
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
	Priority   int    `json:"priority"`
}

const maxRecommendations = 3

// DefaultRecommendations are served whenever the model cannot be used.
func DefaultRecommendations() []Recommendation {
	return []Recommendation{
		{Suggestion: "Group similar tasks together", Reason: "Minimize context switching to reduce cognitive load", Priority: 8},
		{Suggestion: "Schedule deep work in your peak hours", Reason: "High-priority coding and research tasks need focused attention", Priority: 9},
		{Suggestion: "Leave buffer time between task blocks", Reason: "Allow for breaks and unexpected delays", Priority: 7},
	}
}

type RecommendationService interface {
	Recommend(ctx context.Context, tasks []domain.Task) []Recommendation
}

type recommendationService struct {
	client llm.LLMClient
	log    *slog.Logger
}

func NewRecommendationService(client llm.LLMClient, log *slog.Logger) RecommendationService {
	return &recommendationService{client: client, log: log}
}

func (s *recommendationService) Recommend(ctx context.Context, tasks []domain.Task) []Recommendation {
	if len(tasks) == 0 {
		return DefaultRecommendations()
	}

	var b strings.Builder
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s (%s, %gh, priority: %d)\n", t.Title, t.Category, t.TimeHours, t.Priority)
	}
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskRecommend,
		SystemPrompt: recommendSystemPrompt,
		UserPrompt:   fmt.Sprintf(recommendPrompt, b.String()),
		JSONMode:     true,
	})
	if err != nil {
		s.log.Warn("recommendations falling back to defaults", "error", err)
		return DefaultRecommendations()
	}

	recs := parseRecommendations(resp.Text)
	if len(recs) == 0 {
		s.log.Warn("recommendation output unusable", "length", len(resp.Text))
		return DefaultRecommendations()
	}
	return recs
}

// parseRecommendations accepts an array or a single object, keeping at most
// three entries that carry a suggestion.
func parseRecommendations(raw string) []Recommendation {
	recs, err := llm.ExtractJSONArray[Recommendation](raw)
	if err != nil {
		one, objErr := llm.ExtractJSON[Recommendation](raw, nil)
		if objErr != nil {
			return nil
		}
		recs = []Recommendation{one}
	}
	out := make([]Recommendation, 0, maxRecommendations)
	for _, r := range recs {
		if strings.TrimSpace(r.Suggestion) == "" {
			continue
		}
		if r.Priority < domain.MinPriority || r.Priority > domain.MaxPriority {
			r.Priority = domain.DefaultPriority
		}
		out = append(out, r)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}
