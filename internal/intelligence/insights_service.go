package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/llm"
)

type CategoryStats struct {
	Count      int     `json:"count"`
	TotalHours float64 `json:"total_hours"`
}

// PatternAnalysis summarizes the current task list.
type PatternAnalysis struct {
	TotalTasks           int                               `json:"total_tasks"`
	TotalHours           float64                           `json:"total_hours"`
	AverageTaskDuration  float64                           `json:"average_task_duration"`
	AveragePriority      float64                           `json:"average_priority"`
	CategoryDistribution map[domain.Category]CategoryStats `json:"category_distribution"`
	MostCommonCategory   domain.Category                   `json:"most_common_category,omitempty"`
	Analysis             string                            `json:"analysis,omitempty"`
	AIInsights           string                            `json:"ai_insights,omitempty"`
}

const insightsUnavailable = "Unable to generate AI insights at this time."

// insightSampleSize bounds how many tasks are quoted to the model.
const insightSampleSize = 20

type InsightsService interface {
	AnalyzePatterns(ctx context.Context, tasks []domain.Task) PatternAnalysis
}

type insightsService struct {
	client llm.LLMClient
	log    *slog.Logger
}

func NewInsightsService(client llm.LLMClient, log *slog.Logger) InsightsService {
	return &insightsService{client: client, log: log}
}

func (s *insightsService) AnalyzePatterns(ctx context.Context, tasks []domain.Task) PatternAnalysis {
	stats := TaskStatistics(tasks)
	if stats.TotalTasks == 0 {
		return stats
	}

	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return stats
	}
	var sample strings.Builder
	for i, t := range tasks {
		if i == insightSampleSize {
			break
		}
		fmt.Fprintf(&sample, "%s (%s, %gh, priority %d)\n", t.Title, t.Category, t.TimeHours, t.Priority)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskInsights,
		UserPrompt: fmt.Sprintf(insightsPrompt, statsJSON, sample.String()),
	})
	switch {
	case errors.Is(err, llm.ErrUnavailable):
	case err != nil:
		s.log.Warn("insights generation failed", "error", err)
		stats.AIInsights = insightsUnavailable
	default:
		stats.AIInsights = strings.TrimSpace(resp.Text)
	}
	return stats
}

// TaskStatistics computes the deterministic part of the pattern analysis.
// The most common category is the first to reach the highest count.
func TaskStatistics(tasks []domain.Task) PatternAnalysis {
	if len(tasks) == 0 {
		return PatternAnalysis{
			CategoryDistribution: map[domain.Category]CategoryStats{},
			Analysis:             "No tasks to analyze",
		}
	}

	dist := make(map[domain.Category]CategoryStats)
	var order []domain.Category
	var hours float64
	var priority int
	for _, t := range tasks {
		hours += t.TimeHours
		priority += t.Priority
		st, seen := dist[t.Category]
		if !seen {
			order = append(order, t.Category)
		}
		st.Count++
		st.TotalHours += t.TimeHours
		dist[t.Category] = st
	}

	var most domain.Category
	best := 0
	for _, c := range order {
		st := dist[c]
		if st.Count > best {
			best, most = st.Count, c
		}
		st.TotalHours = round2(st.TotalHours)
		dist[c] = st
	}

	n := float64(len(tasks))
	return PatternAnalysis{
		TotalTasks:           len(tasks),
		TotalHours:           round2(hours),
		AverageTaskDuration:  round2(hours / n),
		AveragePriority:      round2(float64(priority) / n),
		CategoryDistribution: dist,
		MostCommonCategory:   most,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
