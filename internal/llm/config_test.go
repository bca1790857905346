package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_DisabledOllama(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, 120000, cfg.TaskTimeout(TaskSchedule))
	assert.Equal(t, 60000, cfg.TaskTimeout(TaskGoalValidation))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("POLYLEARNER_LLM_ENABLED", "true")
	t.Setenv("POLYLEARNER_LLM_PROVIDER", "OpenAI")
	t.Setenv("POLYLEARNER_LLM_ENDPOINT", "https://api.example.com/")
	t.Setenv("POLYLEARNER_LLM_TIMEOUT_MS", "9000")
	t.Setenv("POLYLEARNER_LLM_QUERY_TIMEOUT_MS", "1500")
	t.Setenv("POLYLEARNER_LLM_RATE_PER_MINUTE", "0")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "https://api.example.com", cfg.Endpoint)
	assert.Equal(t, 9000, cfg.TimeoutMs)
	assert.Equal(t, 1500, cfg.TaskTimeout(TaskQuery))
	assert.Equal(t, 9000, cfg.TaskTimeout(TaskInsights))
	assert.Zero(t, cfg.RatePerMinute)
}

func TestLoadConfig_InvalidOverridesIgnored(t *testing.T) {
	t.Setenv("POLYLEARNER_LLM_TIMEOUT_MS", "-5")
	t.Setenv("POLYLEARNER_LLM_SCHEDULE_TIMEOUT_MS", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 60000, cfg.TimeoutMs)
	assert.Equal(t, 120000, cfg.TaskTimeout(TaskSchedule))
}
