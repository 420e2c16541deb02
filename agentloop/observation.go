package agentloop

import (
	"fmt"
	"strings"

	"github.com/martinemde/codeact/codexec"
	"github.com/martinemde/codeact/research"
)

// ObservationFromExecution renders a code execution result as the
// observation string fed back to the model. It always states success or
// failure and appends stdout/stderr blocks when non-empty.
func ObservationFromExecution(res codexec.Result) string {
	var b strings.Builder
	b.WriteString("Observation: ")
	if res.Success {
		b.WriteString("Code executed successfully.\n")
	} else {
		b.WriteString("Code execution failed.\n")
	}
	if res.Stdout != "" {
		fmt.Fprintf(&b, "STDOUT:\n%s\n", res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprintf(&b, "STDERR:\n%s\n", res.Stderr)
	}
	return strings.TrimSpace(b.String())
}

// ObservationFromResearch renders a research result as the observation
// string fed back to the model.
func ObservationFromResearch(res research.Result) string {
	var b strings.Builder
	b.WriteString("Research Observation: ")
	if res.Success {
		b.WriteString("Research task completed successfully.\n")
	} else {
		fmt.Fprintf(&b, "Research task failed: %s\n", res.ErrorMessage)
	}
	if res.ExtractedInfo != "" {
		fmt.Fprintf(&b, "Findings:\n%s\n", res.ExtractedInfo)
	}
	if res.CurrentPage != nil {
		fmt.Fprintf(&b, "Current page: %s\n", res.CurrentPage.URL)
	}
	if len(res.PagesVisited) > 0 {
		fmt.Fprintf(&b, "Pages visited: %s\n", strings.Join(res.PagesVisited, ", "))
	}
	return strings.TrimSpace(b.String())
}
