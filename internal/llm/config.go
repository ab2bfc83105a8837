package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of advisory call being made.
type TaskType string

const (
	// TaskAdvisory is a single-shot advisory message.
	TaskAdvisory TaskType = "advisory"
	// TaskConversation is a turn inside a coaching conversation.
	TaskConversation TaskType = "conversation"
)

// TaskConfig holds per-task generation parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the advisory backend client.
type Config struct {
	Enabled   bool
	LogCalls  bool
	Endpoint  string
	Model     string
	TimeoutMs int
	Tasks     map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults. The backend
// is disabled by default.
func DefaultConfig() Config {
	return Config{
		Enabled:   false,
		LogCalls:  false,
		Endpoint:  "http://localhost:11434",
		Model:     "llama3.2",
		TimeoutMs: 20000,
		Tasks: map[TaskType]TaskConfig{
			TaskAdvisory:     {Temperature: 0.4, MaxTokens: 512, TimeoutMs: 20000},
			TaskConversation: {Temperature: 0.5, MaxTokens: 1024, TimeoutMs: 30000},
		},
	}
}

// LoadConfig reads backend configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("MUSE_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MUSE_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MUSE_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("MUSE_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("MUSE_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskAdvisory, "MUSE_LLM_ADVISORY_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskConversation, "MUSE_LLM_CONVERSATION_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *Config, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
