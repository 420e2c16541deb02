// Package codexec provides the code execution port of the agent loop.
//
// Execution failures are never returned as errors: a failed run is
// captured into Result with Success=false and the failure text in Stderr,
// so the controller can feed it back to the model as an observation.
package codexec

import "context"

// Result holds the outcome of one code execution. Success=false signals a
// runtime or startup error captured from the executed code, not a
// control-loop failure.
type Result struct {
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
	Success bool   `json:"success"`
}

// Runner executes one code string and reports its captured output.
type Runner interface {
	Execute(ctx context.Context, code string) Result
}
