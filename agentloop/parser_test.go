package agentloop

import "testing"

func TestRegexParserTags(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want ParsedOutput
	}{
		{
			name: "thought and execute",
			raw:  "<thought>check python</thought>\n<execute>print(1)</execute>",
			want: ParsedOutput{Thought: "check python", CodeAction: "print(1)"},
		},
		{
			name: "solution only",
			raw:  "<solution>The answer is 42.</solution>",
			want: ParsedOutput{Solution: "The answer is 42."},
		},
		{
			name: "fallback to whole text",
			raw:  "  I think the answer is 42.  ",
			want: ParsedOutput{Solution: "I think the answer is 42."},
		},
		{
			name: "case insensitive tags",
			raw:  "<THOUGHT>shouting</THOUGHT><Execute>x = 1</Execute>",
			want: ParsedOutput{Thought: "shouting", CodeAction: "x = 1"},
		},
		{
			name: "multiline code",
			raw:  "<execute>a = 1\nb = 2\nprint(a + b)</execute>",
			want: ParsedOutput{CodeAction: "a = 1\nb = 2\nprint(a + b)"},
		},
		{
			name: "empty tag collapses and falls back",
			raw:  "<thought></thought>",
			want: ParsedOutput{Solution: "<thought></thought>"},
		},
		{
			name: "first span wins",
			raw:  "<execute>first</execute><execute>second</execute>",
			want: ParsedOutput{CodeAction: "first"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RegexParser{}.Parse(tc.raw)
			tc.want.Raw = tc.raw
			if got != tc.want {
				t.Errorf("Parse(%q):\n  got  %+v\n  want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestResearchParserTags(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want ParsedOutput
	}{
		{
			name: "research plan",
			raw:  "<research>find Go release history</research>",
			want: ParsedOutput{ResearchPlan: "find Go release history"},
		},
		{
			name: "search query",
			raw:  "<thought>need docs</thought><search>go generics tutorial</search>",
			want: ParsedOutput{Thought: "need docs", SearchQuery: "go generics tutorial"},
		},
		{
			name: "navigate url",
			raw:  "<navigate>https://go.dev/blog</navigate>",
			want: ParsedOutput{NavigateURL: "https://go.dev/blog"},
		},
		{
			name: "all six tags",
			raw: "<thought>t</thought><execute>e</execute><solution>s</solution>" +
				"<research>r</research><search>q</search><navigate>n</navigate>",
			want: ParsedOutput{
				Thought: "t", CodeAction: "e", Solution: "s",
				ResearchPlan: "r", SearchQuery: "q", NavigateURL: "n",
			},
		},
		{
			name: "no tags falls back",
			raw:  "plain text answer",
			want: ParsedOutput{Solution: "plain text answer"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResearchParser{}.Parse(tc.raw)
			tc.want.Raw = tc.raw
			if got != tc.want {
				t.Errorf("Parse(%q):\n  got  %+v\n  want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

// A research tag must not trigger the whole-text-as-solution fallback in
// the research parser, even though the base parser would not recognize it.
func TestResearchParserSupersetOfBase(t *testing.T) {
	raw := "<research>plan something</research>"

	base := RegexParser{}.Parse(raw)
	if base.Solution != raw {
		t.Errorf("base parser should fall back to whole text, got %q", base.Solution)
	}

	full := ResearchParser{}.Parse(raw)
	if full.Solution != "" {
		t.Errorf("research parser must not fall back, got solution %q", full.Solution)
	}
	if full.ResearchPlan != "plan something" {
		t.Errorf("expected research plan extracted, got %q", full.ResearchPlan)
	}
}
