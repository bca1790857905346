package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/llm"
	"github.com/alexanderramin/polylearner/internal/repository"
)

// Query operations a plan may ask for.
const (
	QueryCount = "count"
	QueryFind  = "find"
	QuerySum   = "sum"
	QueryAvg   = "avg"
)

// Query sources.
const (
	QuerySourceLLM     = "llm"
	QuerySourceKeyword = "keyword"
)

const (
	maxQueryRows  = 100
	maxReturnRows = 20
)

var queryCollections = map[string]bool{
	repository.CollectionTasks:       true,
	repository.CollectionWeeklyGoals: true,
}

// QueryPlan is the structured form of a question.
type QueryPlan struct {
	Collection  string          `json:"collection"`
	Operation   string          `json:"operation"`
	Field       string          `json:"field,omitempty"`
	Filter      []PlanCondition `json:"filter,omitempty"`
	Sort        []PlanSort      `json:"sort,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
}

type PlanCondition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

type PlanSort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Validate checks the plan against the queryable collections and operators.
func (p QueryPlan) Validate() error {
	if !queryCollections[p.Collection] {
		return fmt.Errorf("collection %q is not queryable", p.Collection)
	}
	switch p.Operation {
	case QueryCount, QueryFind:
	case QuerySum, QueryAvg:
		if p.Field == "" {
			return fmt.Errorf("%s needs a field", p.Operation)
		}
	default:
		return fmt.Errorf("unknown operation %q", p.Operation)
	}
	for _, c := range p.Filter {
		switch docstore.Op(c.Op) {
		case docstore.OpEq, docstore.OpGt, docstore.OpGte, docstore.OpLt, docstore.OpLte, docstore.OpIn:
		default:
			return fmt.Errorf("unknown operator %q", c.Op)
		}
		if c.Field == "" {
			return errors.New("condition without field")
		}
	}
	return nil
}

func (p QueryPlan) filter() docstore.Filter {
	f := make(docstore.Filter, len(p.Filter))
	for i, c := range p.Filter {
		f[i] = docstore.Cond{Field: c.Field, Op: docstore.Op(c.Op), Value: c.Value}
	}
	return f
}

func (p QueryPlan) findOptions() docstore.FindOptions {
	opts := docstore.FindOptions{Limit: maxQueryRows}
	if p.Limit > 0 && p.Limit < maxQueryRows {
		opts.Limit = p.Limit
	}
	for _, s := range p.Sort {
		opts.Sort = append(opts.Sort, docstore.SortKey{Field: s.Field, Desc: s.Desc})
	}
	return opts
}

type CategorySummary struct {
	Category   domain.Category `json:"category"`
	Count      int             `json:"count"`
	TotalHours float64         `json:"total_hours"`
}

// QueryResult answers a question. Error carries a model-path failure when
// the keyword fallback produced the answer.
type QueryResult struct {
	Question    string            `json:"question"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"query_explanation,omitempty"`
	Collection  string            `json:"collection,omitempty"`
	Operation   string            `json:"operation,omitempty"`
	Count       int               `json:"result_count"`
	Value       *float64          `json:"value,omitempty"`
	Data        []docstore.Doc    `json:"data,omitempty"`
	Titles      []string          `json:"tasks,omitempty"`
	Categories  []CategorySummary `json:"categories,omitempty"`
	Source      string            `json:"source"`
	Error       string            `json:"error,omitempty"`
}

type QueryService interface {
	Ask(ctx context.Context, question string) (*QueryResult, error)
}

type queryService struct {
	client llm.LLMClient
	store  docstore.Store
	log    *slog.Logger
}

func NewQueryService(client llm.LLMClient, store docstore.Store, log *slog.Logger) QueryService {
	return &queryService{client: client, store: store, log: log}
}

// Ask returns an error only when the store itself fails.
func (s *queryService) Ask(ctx context.Context, question string) (*QueryResult, error) {
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskQuery,
		SystemPrompt: querySystemPrompt,
		UserPrompt:   fmt.Sprintf(queryPrompt, question),
		JSONMode:     true,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrUnavailable) {
			s.log.Warn("query translation failed, using keywords", "error", err)
		}
		return s.keywordAnswer(ctx, question, err)
	}

	plan, err := llm.ExtractJSON[QueryPlan](resp.Text, QueryPlan.Validate)
	if err != nil {
		s.log.Warn("query plan rejected, using keywords", "error", err)
		return s.keywordAnswer(ctx, question, err)
	}

	res, err := s.execute(ctx, question, plan)
	if errors.Is(err, docstore.ErrBadQuery) {
		s.log.Warn("query plan not executable, using keywords", "error", err)
		return s.keywordAnswer(ctx, question, err)
	}
	if err != nil {
		return nil, err
	}
	res.Answer = s.narrate(ctx, question, plan, res)
	s.log.Info("answered query", "operation", plan.Operation, "collection", plan.Collection, "count", res.Count)
	return res, nil
}

func (s *queryService) execute(ctx context.Context, question string, plan QueryPlan) (*QueryResult, error) {
	res := &QueryResult{
		Question:    question,
		Explanation: plan.Explanation,
		Collection:  plan.Collection,
		Operation:   plan.Operation,
		Source:      QuerySourceLLM,
	}
	filter := plan.filter()

	if plan.Operation == QueryCount {
		n, err := s.store.Count(ctx, plan.Collection, filter)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", plan.Collection, err)
		}
		res.Count = n
		return res, nil
	}

	opts := plan.findOptions()
	if plan.Operation != QueryFind {
		opts.Limit = 0
	}
	docs, err := s.store.Find(ctx, plan.Collection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", plan.Collection, err)
	}
	res.Count = len(docs)

	switch plan.Operation {
	case QueryFind:
		if len(docs) <= maxReturnRows {
			res.Data = docs
		}
	case QuerySum, QueryAvg:
		var sum float64
		n := 0
		for _, d := range docs {
			if v, ok := numberAt(d, plan.Field); ok {
				sum += v
				n++
			}
		}
		v := sum
		if plan.Operation == QueryAvg {
			v = 0
			if n > 0 {
				v = sum / float64(n)
			}
		}
		v = round2(v)
		res.Value = &v
	}
	return res, nil
}

func numberAt(d docstore.Doc, path string) (float64, bool) {
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return 0, false
		}
		cur = m[part]
	}
	switch v := cur.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (s *queryService) narrate(ctx context.Context, question string, plan QueryPlan, res *QueryResult) string {
	fallback := fmt.Sprintf("Query executed successfully. Found %d results.", res.Count)
	var summary string
	switch {
	case res.Value != nil:
		summary = fmt.Sprintf("%s of %s over %d documents: %g", plan.Operation, plan.Field, res.Count, *res.Value)
	case plan.Operation == QueryCount:
		summary = fmt.Sprintf("count: %d", res.Count)
	case res.Count == 0:
		summary = "No results found."
	default:
		rows := res.Data
		if len(rows) > 5 {
			rows = rows[:5]
		}
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fallback
		}
		summary = fmt.Sprintf("Found %d results. First rows: %s", res.Count, b)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:       llm.TaskQuery,
		UserPrompt: fmt.Sprintf(queryAnswerPrompt, question, plan.Explanation, summary),
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		return fallback
	}
	return strings.TrimSpace(resp.Text)
}

// keywordAnswer routes a question by keywords when no model plan is usable.
func (s *queryService) keywordAnswer(ctx context.Context, question string, cause error) (*QueryResult, error) {
	q := strings.ToLower(question)
	res := &QueryResult{Question: question, Collection: repository.CollectionTasks, Source: QuerySourceKeyword}
	if cause != nil && !errors.Is(cause, llm.ErrUnavailable) {
		res.Error = cause.Error()
	}

	switch {
	case strings.Contains(q, "how many") && strings.Contains(q, "task"):
		n, err := s.store.Count(ctx, repository.CollectionTasks, nil)
		if err != nil {
			return nil, fmt.Errorf("counting tasks: %w", err)
		}
		res.Operation, res.Count = QueryCount, n
		res.Answer = fmt.Sprintf("You have %d tasks in total.", n)

	case strings.Contains(q, "coding"), strings.Contains(q, "research"):
		cat := domain.CategoryCoding
		if !strings.Contains(q, "coding") {
			cat = domain.CategoryResearch
		}
		docs, err := s.store.Find(ctx, repository.CollectionTasks,
			docstore.Where(docstore.Eq("category", string(cat))), docstore.FindOptions{Limit: maxQueryRows})
		if err != nil {
			return nil, fmt.Errorf("finding %s tasks: %w", cat, err)
		}
		res.Operation, res.Count = QueryFind, len(docs)
		res.Titles = titles(docs, 10)
		res.Answer = fmt.Sprintf("Found %d %s tasks.", len(docs), cat)

	case strings.Contains(q, "priority"), strings.Contains(q, "important"):
		docs, err := s.store.Find(ctx, repository.CollectionTasks,
			docstore.Where(docstore.Gte("priority", 7)),
			docstore.FindOptions{Sort: []docstore.SortKey{docstore.Desc("priority")}, Limit: maxReturnRows})
		if err != nil {
			return nil, fmt.Errorf("finding high-priority tasks: %w", err)
		}
		res.Operation, res.Count = QueryFind, len(docs)
		if len(docs) > 10 {
			docs = docs[:10]
		}
		res.Data = docs
		res.Answer = fmt.Sprintf("Found %d high-priority tasks (priority >= 7).", res.Count)

	default:
		docs, err := s.store.Find(ctx, repository.CollectionTasks, nil, docstore.FindOptions{})
		if err != nil {
			return nil, fmt.Errorf("summarizing tasks: %w", err)
		}
		res.Operation, res.Count = QueryFind, len(docs)
		res.Categories = summarizeCategories(docs)
		res.Answer = fmt.Sprintf("You have %d tasks across %d categories.", len(docs), len(res.Categories))
	}
	return res, nil
}

func titles(docs []docstore.Doc, n int) []string {
	out := make([]string, 0, min(n, len(docs)))
	for _, d := range docs {
		if len(out) == n {
			break
		}
		if t, ok := d["title"].(string); ok {
			out = append(out, t)
		}
	}
	return out
}

func summarizeCategories(docs []docstore.Doc) []CategorySummary {
	var out []CategorySummary
	index := make(map[domain.Category]int)
	for _, d := range docs {
		c, _ := d["category"].(string)
		cat := domain.Category(c)
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, CategorySummary{Category: cat})
		}
		out[i].Count++
		if h, ok := numberAt(d, "time_hours"); ok {
			out[i].TotalHours = round2(out[i].TotalHours + h)
		}
	}
	return out
}
