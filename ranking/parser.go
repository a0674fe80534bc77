package ranking

import (
	"regexp"
	"strings"

	"github.com/hupe1980/llmcouncil/core"
)

// Header is the exact line introducing a ranking block. Case and punctuation
// are part of the wire format.
const Header = "FINAL RANKING:"

var entryRe = regexp.MustCompile(`^\d+\.\s+Response ([A-Z])$`)

// Parse extracts the strict, line-oriented ranking block from a peer-review
// reply. The block starts at the first line equal to Header; every following
// contiguous line must match "<integer>. Response <Label>". Parsing stops at
// the first non-matching line after the block starts, or at end of text.
//
// A missing header, or a header followed by zero valid lines, yields
// core.ParseError. A partial list (fewer entries than known labels) is
// accepted with a ranking_incomplete finding; a repeated label keeps its
// first occurrence and raises a ranking_duplicate finding.
func Parse(text string, known []core.Label) (core.Ranking, []core.Finding, error) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == Header {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return core.Ranking{}, nil, &core.ParseError{Reason: "no " + Header + " block"}
	}

	var (
		labels   []core.Label
		findings []core.Finding
		seen     = map[core.Label]bool{}
	)
	for _, line := range lines[start:] {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" && len(labels) == 0 {
			// Tolerate blank lines between the header and the first entry.
			continue
		}
		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		label := core.Label(m[1])
		if seen[label] {
			findings = append(findings, core.Finding{
				Kind:   core.FindingRankingDuplicate,
				Detail: string(label),
			})
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	if len(labels) == 0 {
		return core.Ranking{}, nil, &core.ParseError{Reason: "empty ranking block"}
	}

	if len(known) > 0 && len(labels) < len(known) {
		findings = append(findings, core.Finding{
			Kind:   core.FindingRankingIncomplete,
			Detail: incompleteDetail(labels, known),
		})
	}

	return core.Ranking{Labels: labels}, findings, nil
}

func incompleteDetail(got []core.Label, known []core.Label) string {
	present := map[core.Label]bool{}
	for _, l := range got {
		present[l] = true
	}
	var missing []string
	for _, l := range known {
		if !present[l] {
			missing = append(missing, string(l))
		}
	}
	return "missing " + strings.Join(missing, ", ")
}
