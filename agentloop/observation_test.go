package agentloop

import (
	"testing"

	"github.com/martinemde/codeact/codexec"
	"github.com/martinemde/codeact/research"
)

func TestObservationFromExecution(t *testing.T) {
	cases := []struct {
		name string
		res  codexec.Result
		want string
	}{
		{
			name: "success with stdout",
			res:  codexec.Result{Stdout: "1\n", Success: true},
			want: "Observation: Code executed successfully.\nSTDOUT:\n1",
		},
		{
			name: "success no output",
			res:  codexec.Result{Success: true},
			want: "Observation: Code executed successfully.",
		},
		{
			name: "failure with stderr",
			res:  codexec.Result{Stderr: "NameError: name 'x' is not defined\n", Success: false},
			want: "Observation: Code execution failed.\nSTDERR:\nNameError: name 'x' is not defined",
		},
		{
			name: "both streams",
			res:  codexec.Result{Stdout: "partial", Stderr: "boom", Success: false},
			want: "Observation: Code execution failed.\nSTDOUT:\npartial\nSTDERR:\nboom",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ObservationFromExecution(tc.res); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestObservationFromResearch(t *testing.T) {
	res := research.Result{
		Success:       true,
		ExtractedInfo: "Go 1.0 was released in 2012.",
		CurrentPage:   &research.WebPage{URL: "https://go.dev/doc/devel/release"},
		PagesVisited:  []string{"https://go.dev", "https://go.dev/doc/devel/release"},
	}
	want := "Research Observation: Research task completed successfully.\n" +
		"Findings:\nGo 1.0 was released in 2012.\n" +
		"Current page: https://go.dev/doc/devel/release\n" +
		"Pages visited: https://go.dev, https://go.dev/doc/devel/release"
	if got := ObservationFromResearch(res); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	fail := research.Result{Success: false, ErrorMessage: "no route to host"}
	wantFail := "Research Observation: Research task failed: no route to host"
	if got := ObservationFromResearch(fail); got != wantFail {
		t.Errorf("got %q, want %q", got, wantFail)
	}
}
