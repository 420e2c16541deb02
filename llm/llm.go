// Package llm provides the provider-backed ModelPort of the agent loop,
// built on gollm so one constructor covers OpenAI, Anthropic, and the
// other providers gollm speaks. API keys come from configuration or the
// provider's usual environment variables.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/teilomillet/gollm"

	"github.com/martinemde/codeact/agentloop"
)

// systemPreamble teaches the model the action protocol the parser
// understands. Kept in one place so the prompt and the parser stay in
// agreement.
const systemPreamble = `You are CodeAct, an agent that solves tasks over multiple turns.
Each turn, respond using these tags:
  <thought>your reasoning</thought>
  <execute>python code to run</execute>
  <research>a multi-step research plan</research>
  <search>a web search query</search>
  <navigate>a URL to open</navigate>
  <solution>your final answer</solution>
Use exactly one action tag per turn. Emit <solution> only when the task is done.`

// Provider implements agentloop.ModelPort over a gollm LLM.
type Provider struct {
	llm   gollm.LLM
	model string
}

// Option configures a Provider.
type Option func(*config)

type config struct {
	model       string
	maxTokens   int
	temperature float64
	extraOpts   []gollm.ConfigOption
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithMaxTokens sets the generation token cap.
func WithMaxTokens(n int) Option {
	return func(c *config) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *config) { c.temperature = t }
}

// WithGollmOptions appends extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) Option {
	return func(c *config) { c.extraOpts = append(c.extraOpts, opts...) }
}

// New creates a Provider for the named backend ("openai", "anthropic",
// ...). An empty apiKey lets gollm read the provider's environment
// variable.
func New(providerName, apiKey string, opts ...Option) (*Provider, error) {
	cfg := &config{
		maxTokens:   4096,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		switch providerName {
		case "anthropic":
			model = "claude-sonnet-4-5-20250514"
		default:
			model = "gpt-4o-mini"
		}
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(providerName),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // retries belong to this repo's wrappers
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	inner, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", providerName, err)
	}
	return &Provider{llm: inner, model: model}, nil
}

// Model returns the configured model identifier.
func (p *Provider) Model() string { return p.model }

// Generate builds one prompt from the history snapshot and the last
// observation, then calls the provider. Errors here are fatal to the
// interaction; the controller does not retry the model port.
func (p *Provider) Generate(ctx context.Context, prompt string, history []agentloop.HistoryEntry) (string, error) {
	text, err := p.llm.Generate(ctx, gollm.NewPrompt(buildPrompt(prompt, history)))
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	return text, nil
}

// buildPrompt renders the protocol preamble, the transcript, and the
// latest observation into a single prompt string.
func buildPrompt(observation string, history []agentloop.HistoryEntry) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n# Transcript\n")
	for _, entry := range history {
		fmt.Fprintf(&b, "[%s]\n%s\n", entry.Role, entry.Content)
	}
	fmt.Fprintf(&b, "\n# Latest observation\n%s\n\nRespond now with your next tagged action.", observation)
	return b.String()
}
