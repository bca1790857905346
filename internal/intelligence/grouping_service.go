package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/llm"
)

// TaskGroup is a set of tasks worth doing back to back.
type TaskGroup struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TaskIDs     []int  `json:"task_ids"`
}

// TotalHours sums the hours of the group's tasks found in byID.
func (g TaskGroup) TotalHours(byID map[int]domain.Task) float64 {
	var sum float64
	for _, id := range g.TaskIDs {
		sum += byID[id].TimeHours
	}
	return sum
}

type GroupingService interface {
	// GroupTasks places every task in exactly one group.
	GroupTasks(ctx context.Context, tasks []domain.Task) []TaskGroup
}

type groupingService struct {
	client llm.LLMClient
	log    *slog.Logger
}

func NewGroupingService(client llm.LLMClient, log *slog.Logger) GroupingService {
	return &groupingService{client: client, log: log}
}

type groupingAnswer struct {
	Groups []TaskGroup `json:"groups"`
}

type taskSummary struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	Category  domain.Category `json:"category"`
	Goal      string          `json:"goal,omitempty"`
	TimeHours float64         `json:"time_hours"`
	Priority  int             `json:"priority"`
}

func summarize(tasks []domain.Task) []taskSummary {
	out := make([]taskSummary, len(tasks))
	for i, t := range tasks {
		out[i] = taskSummary{ID: t.ID, Title: t.Title, Category: t.Category, Goal: t.Goal, TimeHours: t.TimeHours, Priority: t.Priority}
	}
	return out
}

func (s *groupingService) GroupTasks(ctx context.Context, tasks []domain.Task) []TaskGroup {
	if len(tasks) == 0 {
		return []TaskGroup{}
	}

	data, err := json.MarshalIndent(summarize(tasks), "", "  ")
	if err != nil {
		return GroupByCategory(tasks)
	}
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskGrouping,
		SystemPrompt: groupingSystemPrompt,
		UserPrompt:   fmt.Sprintf(groupingPrompt, data),
		JSONMode:     true,
	})
	if err != nil {
		s.log.Warn("grouping falling back to categories", "error", err)
		return GroupByCategory(tasks)
	}
	answer, err := llm.ExtractJSON[groupingAnswer](resp.Text, nil)
	if err != nil {
		s.log.Warn("grouping output unusable", "error", err)
		return GroupByCategory(tasks)
	}
	return reconcileGroups(answer.Groups, tasks, s.log)
}

// reconcileGroups keeps the first claim on each known task id, drops empty
// groups and files every unclaimed task under its category group.
func reconcileGroups(groups []TaskGroup, tasks []domain.Task, log *slog.Logger) []TaskGroup {
	known := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	claimed := make(map[int]bool, len(tasks))

	out := make([]TaskGroup, 0, len(groups))
	index := make(map[string]int)
	for _, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			name = "Group"
		}
		var ids []int
		for _, id := range g.TaskIDs {
			if known[id] && !claimed[id] {
				claimed[id] = true
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].TaskIDs = append(out[i].TaskIDs, ids...)
			continue
		}
		index[name] = len(out)
		out = append(out, TaskGroup{Name: name, Description: g.Description, TaskIDs: ids})
	}

	leftover := 0
	for _, t := range tasks {
		if claimed[t.ID] {
			continue
		}
		claimed[t.ID] = true
		leftover++
		name := categoryGroupName(t.Category)
		if i, ok := index[name]; ok {
			out[i].TaskIDs = append(out[i].TaskIDs, t.ID)
			continue
		}
		index[name] = len(out)
		out = append(out, TaskGroup{Name: name, TaskIDs: []int{t.ID}})
	}
	if leftover > 0 {
		log.Warn("grouping left tasks out, filed under their category", "count", leftover)
	}
	return out
}

// GroupByCategory groups tasks under their capitalized category name in
// order of first appearance.
func GroupByCategory(tasks []domain.Task) []TaskGroup {
	out := []TaskGroup{}
	index := make(map[string]int)
	for _, t := range tasks {
		name := categoryGroupName(t.Category)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, TaskGroup{Name: name})
		}
		out[i].TaskIDs = append(out[i].TaskIDs, t.ID)
	}
	return out
}

func categoryGroupName(c domain.Category) string {
	s := string(c)
	if s == "" {
		return "Other"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
