// Package phrase mines representative descriptions from the free-text
// definitions of a gene's homologs.
package phrase

import (
	"regexp"
	"strings"

	"github.com/ppiankov/coreg/internal/model"
)

var disallowed = regexp.MustCompile(`[^A-Za-z0-9\s\-\/\=\(\)]+`)

// edgeChars are trimmed from both ends of every phrase
const edgeChars = " \t\n\r\v\f-=/"

// Clean keeps letters, digits, whitespace, hyphen, slash, equals sign and
// parentheses, and lowercases the rest
func Clean(def string) string {
	return strings.ToLower(disallowed.ReplaceAllString(def, ""))
}

func trim(s string) string {
	return strings.Trim(s, edgeChars)
}

// Summarize builds the phrase table for one gene's definitions in one
// partition.
//
// One or two definitions are entered as they are, cleaned. Three or more
// are compared pairwise and each pair's longest common substring is counted
// unless it is boilerplate. A pair sharing nothing contributes the longest
// definition of the set instead. When nothing survives, the first
// definition that is not boilerplate is admitted with count 1.
func Summarize(defs []string) *model.PhraseTable {
	table := model.NewPhraseTable()

	switch {
	case len(defs) == 0:
		return table
	case len(defs) <= 2:
		for _, d := range defs {
			table.Add(trim(Clean(d)))
		}
	default:
		cleaned := make([]string, len(defs))
		for i, d := range defs {
			cleaned[i] = Clean(d)
		}
		for i := 0; i < len(cleaned); i++ {
			for j := i + 1; j < len(cleaned); j++ {
				p := trim(LongestCommonSubstring(cleaned[i], cleaned[j]))
				switch {
				case p == "":
					table.Add(longestDefinition(defs))
				case mostlyHypothetical(p):
				case rejected(p):
				default:
					table.Add(p)
				}
			}
		}
	}

	if table.Len() == 0 {
		admitFirstInformative(table, defs)
	}
	return table
}

// longestDefinition returns the longest raw definition, first one on ties,
// lowercased and trimmed
func longestDefinition(defs []string) string {
	longest := ""
	for _, d := range defs {
		if len(d) > len(longest) {
			longest = d
		}
	}
	return trim(strings.ToLower(longest))
}

func admitFirstInformative(table *model.PhraseTable, defs []string) {
	for _, d := range defs {
		p := trim(strings.ToLower(d))
		if strings.Contains(p, hypothetical) || fragmentOf(p, recoveryBoilerplate) {
			continue
		}
		table.Add(p)
		return
	}
}
