package agentloop

import (
	"regexp"
	"strings"
)

// ParsedOutput is the classification of one raw model output. Fields are
// mutually independent; the parser does not enforce exclusivity. An empty
// string means the corresponding tag was absent (a matched-but-empty tag
// collapses to absent too). Raw always carries the original text.
type ParsedOutput struct {
	Thought      string `json:"thought,omitempty"`
	CodeAction   string `json:"code_action,omitempty"`
	Solution     string `json:"solution,omitempty"`
	ResearchPlan string `json:"research_plan,omitempty"`
	SearchQuery  string `json:"search_query,omitempty"`
	NavigateURL  string `json:"navigate_url,omitempty"`
	Raw          string `json:"raw_response"`
}

// OutputParser classifies a raw model output string. Parse is a pure
// function and must never fail: unclassifiable input falls back to a
// whole-text solution so the controller always has a terminal path.
type OutputParser interface {
	Parse(raw string) ParsedOutput
}

// Tag extraction is case-insensitive and dot-matches-newline; the first
// well-formed span wins.
var (
	thoughtRE  = regexp.MustCompile(`(?is)<thought>(.*?)</thought>`)
	executeRE  = regexp.MustCompile(`(?is)<execute>(.*?)</execute>`)
	solutionRE = regexp.MustCompile(`(?is)<solution>(.*?)</solution>`)
	researchRE = regexp.MustCompile(`(?is)<research>(.*?)</research>`)
	searchRE   = regexp.MustCompile(`(?is)<search>(.*?)</search>`)
	navigateRE = regexp.MustCompile(`(?is)<navigate>(.*?)</navigate>`)
)

func firstTag(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// RegexParser recognizes <thought>, <execute> and <solution> tags. If none
// of the three match, the trimmed whole input becomes the solution.
type RegexParser struct{}

// Parse classifies raw model output into its tagged components.
func (RegexParser) Parse(raw string) ParsedOutput {
	out := ParsedOutput{
		Thought:    firstTag(thoughtRE, raw),
		CodeAction: firstTag(executeRE, raw),
		Solution:   firstTag(solutionRE, raw),
		Raw:        raw,
	}
	if out.Thought == "" && out.CodeAction == "" && out.Solution == "" {
		out.Solution = strings.TrimSpace(raw)
	}
	return out
}

// ResearchParser additionally recognizes <research>, <search> and
// <navigate> tags. It is a strict superset of RegexParser: the base tags
// are extracted identically, and the whole-text-as-solution fallback only
// fires when none of the six tags match.
type ResearchParser struct{}

// Parse classifies raw model output including research actions.
func (ResearchParser) Parse(raw string) ParsedOutput {
	out := ParsedOutput{
		Thought:      firstTag(thoughtRE, raw),
		CodeAction:   firstTag(executeRE, raw),
		Solution:     firstTag(solutionRE, raw),
		ResearchPlan: firstTag(researchRE, raw),
		SearchQuery:  firstTag(searchRE, raw),
		NavigateURL:  firstTag(navigateRE, raw),
		Raw:          raw,
	}
	if out.Thought == "" && out.CodeAction == "" && out.Solution == "" &&
		out.ResearchPlan == "" && out.SearchQuery == "" && out.NavigateURL == "" {
		out.Solution = strings.TrimSpace(raw)
	}
	return out
}
