// Package config loads application configuration from an optional YAML
// file and CODEACT_* environment variables, with sane defaults for the
// scripted demo. API keys are never stored here; the llm and websearch
// collaborators read them from their usual environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the agent application.
type Config struct {
	Agent    AgentConfig    `mapstructure:"agent"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Research ResearchConfig `mapstructure:"research"`
}

// AgentConfig controls the turn loop.
type AgentConfig struct {
	MaxTurns       int    `mapstructure:"max_turns"`
	EnableResearch bool   `mapstructure:"enable_research"`
	Instruction    string `mapstructure:"instruction"`
}

// LLMConfig selects and tunes the model provider. Provider "scripted"
// wires the built-in demo fixture instead of a live model.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ResearchConfig tunes the research environment and its decorators.
type ResearchConfig struct {
	Backend         string        `mapstructure:"backend"` // "simulated" or "browser"
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	MaxContentChars int           `mapstructure:"max_content_chars"`
	MaxPagesPerPlan int           `mapstructure:"max_pages_per_plan"`
	SearchProvider  string        `mapstructure:"search_provider"` // "brave" or "serper"
	CallTimeout     time.Duration `mapstructure:"call_timeout"`    // 0 = unbounded

	CacheDir  string        `mapstructure:"cache_dir"` // "" = no persisted tier
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`

	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// DefaultInstruction is the canned diagnostic instruction used when none
// is supplied.
const DefaultInstruction = "Test the execution environment and report findings."

func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.max_turns", 5)
	v.SetDefault("agent.enable_research", false)
	v.SetDefault("agent.instruction", DefaultInstruction)

	v.SetDefault("llm.provider", "scripted")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 4096)

	v.SetDefault("research.backend", "simulated")
	v.SetDefault("research.fetch_timeout", 15*time.Second)
	v.SetDefault("research.max_content_chars", 20000)
	v.SetDefault("research.max_pages_per_plan", 3)
	v.SetDefault("research.search_provider", "brave")
	v.SetDefault("research.call_timeout", 120*time.Second)
	v.SetDefault("research.cache_dir", "research_cache")
	v.SetDefault("research.redis_addr", "")
	v.SetDefault("research.redis_db", 0)
	v.SetDefault("research.cache_ttl", 0)
	v.SetDefault("research.max_retries", 3)
	v.SetDefault("research.retry_delay", 2*time.Second)
}

// Load reads configuration. A non-empty path must be readable; an empty
// path means defaults plus environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CODEACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
