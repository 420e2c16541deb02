// Package agentloop implements the CodeAct turn-based agent control loop.
//
// A Controller pairs a language model with effectful capabilities: code
// execution and web research. Each turn the controller asks the model for
// output, classifies it into exactly one action, dispatches that action
// through a narrow capability port, and feeds the resulting observation
// string back to the model. The loop ends when the model emits a solution
// or the turn budget runs out.
//
// The package is organized around these core concepts:
//
//   - Controller: The turn loop orchestrator holding the history store and
//     dispatching parsed actions in a fixed priority order.
//   - HistoryStore: Append-only transcript of the interaction, snapshotted
//     for every model call.
//   - OutputParser: Pure classification of one raw model output into a
//     ParsedOutput. RegexParser handles thought/execute/solution tags;
//     ResearchParser is a strict superset adding research/search/navigate.
//   - ModelPort: The boundary to a language model. ScriptedModel replays a
//     fixture sequence for tests and demos; package llm provides a real
//     provider-backed implementation.
//   - EventEmitter: Typed event stream for host application integration.
//
// Capability failures are never raised through the loop. Code execution
// errors arrive as codexec.Result values, research errors as
// research.Result values, and both become observations for the next turn.
// Only a model port failure terminates RunInteraction with an error.
//
// # Quick Start
//
//	model := agentloop.NewScriptedModel(
//	    "<thought>check</thought><execute>print(2*3)</execute>",
//	    "<solution>6</solution>",
//	)
//	ctrl := agentloop.NewController(agentloop.Dependencies{
//	    Model: model,
//	    Exec:  codexec.NewLocal(),
//	}, nil)
//	outcome, history, err := ctrl.RunInteraction(ctx, "Multiply 2 by 3.")
package agentloop
