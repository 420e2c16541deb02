package main

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/martinemde/codeact/agentloop"
	"github.com/martinemde/codeact/codexec"
	"github.com/martinemde/codeact/config"
	"github.com/martinemde/codeact/llm"
	"github.com/martinemde/codeact/research"
	"github.com/martinemde/codeact/research/websearch"
)

// demoScript is the two-turn scripted interaction: probe the execution
// environment, then conclude. It drives the default (provider=scripted)
// run so the loop can be exercised without credentials.
var demoScript = []string{
	`<thought>
This is turn 1. I should execute a simple script to check the environment.
</thought>
<execute>
import sys, platform
print(f"Environment Check: Python={sys.version_info.major}.{sys.version_info.minor}, OS={platform.system()}")
print(f"Simple Calculation: 2 * 3 = {2 * 3}")
</execute>`,
	`<thought>
The code executed in the previous turn. I can now report the result.
</thought>
<solution>
Environment tested successfully. The interpreter is reachable and calculations work.
</solution>`,
}

func runCMD() *cobra.Command {
	var (
		configPath  string
		instruction string
		maxTurns    int
		useResearch bool
		provider    string
		modelName   string
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one agent interaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("instruction") {
				cfg.Agent.Instruction = instruction
			}
			if cmd.Flags().Changed("max-turns") {
				cfg.Agent.MaxTurns = maxTurns
			}
			if cmd.Flags().Changed("research") {
				cfg.Agent.EnableResearch = useResearch
			}
			if cmd.Flags().Changed("provider") {
				cfg.LLM.Provider = provider
			}
			if cmd.Flags().Changed("model") {
				cfg.LLM.Model = modelName
			}
			return runInteraction(cmd, cfg, quiet)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&instruction, "instruction", config.DefaultInstruction, "initial instruction for the agent")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 5, "maximum number of turns")
	cmd.Flags().BoolVar(&useResearch, "research", false, "enable web research actions")
	cmd.Flags().StringVar(&provider, "provider", "", `model provider ("scripted", "openai", "anthropic", ...)`)
	cmd.Flags().StringVar(&modelName, "model", "", "model identifier for the provider")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the event stream, print only outcome and transcript")
	return cmd
}

func runInteraction(cmd *cobra.Command, cfg *config.Config, quiet bool) error {
	model, err := buildModel(cfg)
	if err != nil {
		return err
	}

	deps := agentloop.Dependencies{
		Model: model,
		Exec:  codexec.NewLocal(),
	}
	if cfg.Agent.EnableResearch {
		env, err := buildResearch(cfg)
		if err != nil {
			return err
		}
		deps.Research = env
	}

	loopCfg := agentloop.Config{
		MaxTurns:       cfg.Agent.MaxTurns,
		EnableResearch: cfg.Agent.EnableResearch,
	}
	ctrl := agentloop.NewController(deps, &loopCfg)
	defer ctrl.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for event := range ctrl.Events() {
			if !quiet {
				log.Printf("[%s] %v", event.Kind, event.Data)
			}
		}
	}()

	outcome, history, err := ctrl.RunInteraction(cmd.Context(), cfg.Agent.Instruction)
	ctrl.Close()
	wg.Wait()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n======= Final Outcome =======\n%s\n", outcome)
	fmt.Fprintf(out, "\n======= Transcript (%d entries) =======\n", len(history))
	for i, entry := range history {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, entry.Role, entry.Content)
	}
	return nil
}

func buildModel(cfg *config.Config) (agentloop.ModelPort, error) {
	if cfg.LLM.Provider == "" || cfg.LLM.Provider == "scripted" {
		return agentloop.NewScriptedModel(demoScript...), nil
	}
	return llm.New(cfg.LLM.Provider, "",
		llm.WithModel(cfg.LLM.Model),
		llm.WithTemperature(cfg.LLM.Temperature),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
	)
}

// buildResearch assembles the decorated research environment:
// retry(cache(timebound(base))). The persisted cache tier prefers redis
// when an address is configured, falling back to the file store.
func buildResearch(cfg *config.Config) (research.Environment, error) {
	var base research.Environment
	switch cfg.Research.Backend {
	case "", "simulated":
		base = demoSite()
	case "browser":
		opts := []research.BrowserOption{
			research.WithFetchTimeout(cfg.Research.FetchTimeout),
			research.WithMaxContentChars(cfg.Research.MaxContentChars),
			research.WithMaxPlanPages(cfg.Research.MaxPagesPerPlan),
		}
		if searcher := buildSearcher(cfg); searcher != nil {
			opts = append(opts, research.WithSearcher(searcher))
		}
		base = research.NewBrowser(opts...)
	default:
		return nil, fmt.Errorf("unknown research backend %q", cfg.Research.Backend)
	}

	if cfg.Research.CallTimeout > 0 {
		base = research.NewTimebound(base, cfg.Research.CallTimeout)
	}

	var persisted research.Store
	if cfg.Research.RedisAddr != "" {
		persisted = research.NewRedisStore(cfg.Research.RedisAddr, os.Getenv("REDIS_PASSWORD"),
			cfg.Research.RedisDB, cfg.Research.CacheTTL)
	} else if cfg.Research.CacheDir != "" {
		fs, err := research.NewFileStore(cfg.Research.CacheDir)
		if err != nil {
			log.Printf("cache dir unavailable, running memory-only: %v", err)
		} else {
			persisted = fs
		}
	}

	cached := research.NewCached(base, persisted)
	return research.NewRetrying(cached, cfg.Research.MaxRetries, cfg.Research.RetryDelay, nil), nil
}

func buildSearcher(cfg *config.Config) websearch.Searcher {
	provider := websearch.Provider(cfg.Research.SearchProvider)
	var key string
	switch provider {
	case websearch.BraveProvider:
		key = os.Getenv("BRAVE_API_KEY")
	case websearch.SerperProvider:
		key = os.Getenv("SERPER_API_KEY")
	}
	if key == "" {
		return nil
	}
	searcher, err := websearch.New(provider, key)
	if err != nil {
		log.Printf("search provider disabled: %v", err)
		return nil
	}
	return searcher
}

// demoSite is the fixed site graph behind the simulated research backend.
func demoSite() *research.Simulated {
	return research.NewSimulated(
		&research.WebPage{
			URL:   "https://example.org/go",
			Title: "The Go Programming Language",
			Content: "Go is an open source programming language.\n" +
				"Release cadence: every six months.\n" +
				"Concurrency is built on goroutines and channels.",
			Links: []string{"https://example.org/go/releases"},
		},
		&research.WebPage{
			URL:   "https://example.org/go/releases",
			Title: "Go Release History",
			Content: "Go 1.24 shipped in February 2025.\n" +
				"Each release is supported until two newer major releases are out.",
		},
	)
}
