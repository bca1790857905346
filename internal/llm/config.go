package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskGoalValidation TaskType = "goal_validation"
	TaskSuggestTasks   TaskType = "suggest_tasks"
	TaskSchedule       TaskType = "schedule"
	TaskRecommend      TaskType = "recommend"
	TaskGrouping       TaskType = "grouping"
	TaskInsights       TaskType = "insights"
	TaskQuery          TaskType = "query"
)

// Provider selects the wire protocol used to reach the model.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	// ProviderOpenAI covers OpenAI and any server exposing /v1/chat/completions.
	ProviderOpenAI Provider = "openai"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TimeoutMs   int     `json:"timeout_ms"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled        bool                    `json:"enabled"`
	LogCalls       bool                    `json:"log_calls"`
	Provider       Provider                `json:"provider"`
	Endpoint       string                  `json:"endpoint"`
	APIKey         string                  `json:"api_key"`
	Model          string                  `json:"model"`
	EmbeddingModel string                  `json:"embedding_model"`
	TimeoutMs      int                     `json:"timeout_ms"`
	MaxRetries     int                     `json:"max_retries"`
	RatePerMinute  int                     `json:"rate_per_minute"` // 0 disables limiting
	Tasks          map[TaskType]TaskConfig `json:"tasks"`
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:        false,
		LogCalls:       false,
		Provider:       ProviderOllama,
		Endpoint:       "http://localhost:11434",
		Model:          "llama3.1",
		EmbeddingModel: "nomic-embed-text",
		TimeoutMs:      60000,
		MaxRetries:     1,
		RatePerMinute:  30,
		Tasks: map[TaskType]TaskConfig{
			TaskGoalValidation: {Temperature: 0.3, MaxTokens: 1000},
			TaskSuggestTasks:   {Temperature: 0.5, MaxTokens: 2000, TimeoutMs: 120000},
			TaskSchedule:       {Temperature: 0.3, MaxTokens: 2000, TimeoutMs: 120000},
			TaskRecommend:      {Temperature: 0.5, MaxTokens: 800},
			TaskGrouping:       {Temperature: 0.2, MaxTokens: 1000},
			TaskInsights:       {Temperature: 0.7, MaxTokens: 500},
			TaskQuery:          {Temperature: 0.1, MaxTokens: 500, TimeoutMs: 20000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overrides cfg with any POLYLEARNER_LLM_* variables that are set.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("POLYLEARNER_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("POLYLEARNER_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("POLYLEARNER_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("POLYLEARNER_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("POLYLEARNER_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("POLYLEARNER_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("POLYLEARNER_LLM_EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("POLYLEARNER_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("POLYLEARNER_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("POLYLEARNER_LLM_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RatePerMinute = n
		}
	}

	applyTaskTimeoutEnv(cfg, TaskGoalValidation, "POLYLEARNER_LLM_GOAL_VALIDATION_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskSuggestTasks, "POLYLEARNER_LLM_SUGGEST_TASKS_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskSchedule, "POLYLEARNER_LLM_SCHEDULE_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskQuery, "POLYLEARNER_LLM_QUERY_TIMEOUT_MS")
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[TaskType]TaskConfig{}
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
