package agentloop

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/martinemde/codeact/codexec"
	"github.com/martinemde/codeact/research"
)

// Outcome strings returned by RunInteraction.
const (
	OutcomeMaxTurns = "Agent stopped: Max turns reached."
	OutcomeCanceled = "Agent stopped: Interaction cancelled."
)

const (
	observationInitialPrefix = "Received initial instruction: "
	observationNoAction      = "Observation: No specific action taken. Please proceed."
	noteNoAction             = "LLM provided no executable action or final solution."
)

// Config holds controller configuration.
type Config struct {
	MaxTurns       int  `json:"max_turns"`
	EnableResearch bool `json:"enable_research"`
}

// DefaultConfig returns the default configuration: five turns, research
// disabled.
func DefaultConfig() Config {
	return Config{MaxTurns: 5}
}

// Dependencies bundles the ports a Controller orchestrates. Model and Exec
// are required; Research is required only when research is enabled.
// Parser defaults to ResearchParser (research tags are still recognized
// when research is disabled, so they fall through to the no-action branch
// instead of collapsing into a whole-text solution). History defaults to
// a fresh InMemoryHistory.
type Dependencies struct {
	Model    ModelPort
	Exec     codexec.Runner
	Research research.Environment
	Parser   OutputParser
	History  HistoryStore
}

// Controller is the turn-based state machine orchestrating
// generate -> parse -> dispatch -> observe across a bounded number of
// turns. It owns the history store; capabilities are reached only through
// their ports.
type Controller struct {
	id       string
	model    ModelPort
	exec     codexec.Runner
	research research.Environment
	parser   OutputParser
	history  HistoryStore
	config   Config
	emitter  *EventEmitter
}

// NewController creates a controller with the given dependencies and
// optional configuration.
func NewController(deps Dependencies, config *Config) *Controller {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultConfig().MaxTurns
	}
	if deps.Parser == nil {
		deps.Parser = ResearchParser{}
	}
	if deps.History == nil {
		deps.History = NewInMemoryHistory()
	}

	id := uuid.New().String()
	return &Controller{
		id:       id,
		model:    deps.Model,
		exec:     deps.Exec,
		research: deps.Research,
		parser:   deps.Parser,
		history:  deps.History,
		config:   cfg,
		emitter:  NewEventEmitter(id, 256),
	}
}

// ID returns the controller's interaction identifier.
func (c *Controller) ID() string { return c.id }

// Events returns the event channel for the host application.
func (c *Controller) Events() <-chan LoopEvent { return c.emitter.Events() }

// Close closes the event channel. Safe to call multiple times.
func (c *Controller) Close() { c.emitter.Close() }

// History returns a snapshot of the interaction transcript.
func (c *Controller) History() []HistoryEntry { return c.history.History() }

// RunInteraction runs the full turn loop for one instruction. The history
// is reset and seeded with the instruction as a "user" entry; the loop
// then runs until the model emits a solution or MaxTurns is exhausted.
//
// The returned error is non-nil only for faults outside the capability
// taxonomy: a model port failure, or context cancellation between turns.
// Capability failures never surface here; they become observations.
func (c *Controller) RunInteraction(ctx context.Context, instruction string) (string, []HistoryEntry, error) {
	c.history.Clear()
	c.history.AddEntry(RoleUser, instruction)
	observation := observationInitialPrefix + instruction

	c.emitter.Emit(EventInteractionStart, map[string]interface{}{
		"instruction": instruction,
		"max_turns":   c.config.MaxTurns,
	})

	for turn := 1; turn <= c.config.MaxTurns; turn++ {
		select {
		case <-ctx.Done():
			c.emitter.Emit(EventError, map[string]interface{}{"error": ctx.Err().Error()})
			return OutcomeCanceled, c.history.History(), ctx.Err()
		default:
		}

		c.emitter.Emit(EventTurnStart, map[string]interface{}{
			"turn":      turn,
			"max_turns": c.config.MaxTurns,
		})

		// 1. Generate from the last observation plus a history snapshot.
		raw, err := c.model.Generate(ctx, observation, c.history.History())
		if err != nil {
			c.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			return "", c.history.History(), fmt.Errorf("model port: %w", err)
		}
		c.history.AddEntry(RoleAssistantRaw, raw)

		// 2. Classify.
		parsed := c.parser.Parse(raw)
		c.emitter.Emit(EventModelOutput, map[string]interface{}{"raw": raw})
		if parsed.Thought != "" {
			c.history.AddEntry(RoleAssistantThought, parsed.Thought)
			c.emitter.Emit(EventThought, map[string]interface{}{"thought": parsed.Thought})
		}

		// 3. Dispatch by strict priority; first match wins.
		switch {
		case c.config.EnableResearch && parsed.ResearchPlan != "":
			observation = c.dispatchResearch(ctx, RoleAssistantResearch, parsed.ResearchPlan, c.research.ExecutePlan)

		case c.config.EnableResearch && parsed.SearchQuery != "":
			observation = c.dispatchResearch(ctx, RoleAssistantSearch, parsed.SearchQuery, c.research.Search)

		case c.config.EnableResearch && parsed.NavigateURL != "":
			observation = c.dispatchResearch(ctx, RoleAssistantNavigate, parsed.NavigateURL, c.research.Navigate)

		case parsed.CodeAction != "":
			c.history.AddEntry(RoleAssistantAction, parsed.CodeAction)
			c.emitter.Emit(EventActionDispatch, map[string]interface{}{
				"kind":   RoleAssistantAction,
				"action": parsed.CodeAction,
			})
			res := c.exec.Execute(ctx, parsed.CodeAction)
			observation = ObservationFromExecution(res)
			c.history.AddEntry(RoleEnvironment, observation)
			c.emitter.Emit(EventObservation, map[string]interface{}{"observation": observation})

		case parsed.Solution != "":
			c.history.AddEntry(RoleAssistantSolution, parsed.Solution)
			outcome := "Task Finished. Final Answer: " + parsed.Solution
			c.emitter.Emit(EventSolutionFound, map[string]interface{}{"solution": parsed.Solution})
			c.emitter.Emit(EventInteractionEnd, map[string]interface{}{"outcome": outcome})
			return outcome, c.history.History(), nil

		default:
			observation = observationNoAction
			c.history.AddEntry(RoleSystemNote, noteNoAction)
			c.emitter.Emit(EventWarning, map[string]interface{}{"message": noteNoAction})
		}
	}

	c.emitter.Emit(EventTurnLimit, map[string]interface{}{"turns": c.config.MaxTurns})
	c.emitter.Emit(EventInteractionEnd, map[string]interface{}{"outcome": OutcomeMaxTurns})
	return OutcomeMaxTurns, c.history.History(), nil
}

// dispatchResearch logs the action under its role, invokes the research
// capability, and converts the result into an environment observation.
// An error from an unwrapped environment is folded into a failure-shaped
// result so the loop never has to special-case it.
func (c *Controller) dispatchResearch(ctx context.Context, role, arg string, call func(context.Context, string) (research.Result, error)) string {
	c.history.AddEntry(role, arg)
	c.emitter.Emit(EventActionDispatch, map[string]interface{}{
		"kind":   role,
		"action": arg,
	})

	res, err := call(ctx, arg)
	if err != nil {
		res = research.Result{Success: false, ErrorMessage: err.Error()}
	}
	observation := ObservationFromResearch(res)
	c.history.AddEntry(RoleEnvironment, observation)
	c.emitter.Emit(EventObservation, map[string]interface{}{"observation": observation})
	return observation
}
