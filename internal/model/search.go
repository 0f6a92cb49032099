package model

import (
	"fmt"
	"strings"
)

// SearchMode selects the forward search program
type SearchMode string

const (
	ModeBlastX SearchMode = "blastx" // Translated nucleotide query against protein db
	ModeBlastP SearchMode = "blastp" // Protein query against protein db
	ModeBoth   SearchMode = "both"   // blastx first, then blastp
)

// Modes expands a mode selection into the concrete modes to run, in report order
func (m SearchMode) Modes() []SearchMode {
	switch m {
	case ModeBoth:
		return []SearchMode{ModeBlastX, ModeBlastP}
	case ModeBlastX, ModeBlastP:
		return []SearchMode{m}
	}
	return nil
}

// ColumnPrefix is the report column prefix for a concrete mode
func (m SearchMode) ColumnPrefix() string {
	switch m {
	case ModeBlastX:
		return "BLASTx"
	case ModeBlastP:
		return "BLASTp"
	}
	return strings.ToUpper(string(m))
}

// ParseSearchMode validates a user supplied mode name
func ParseSearchMode(s string) (SearchMode, error) {
	m := SearchMode(strings.ToLower(strings.TrimSpace(s)))
	if m.Modes() == nil {
		return "", fmt.Errorf("unknown search mode: %q (supported: blastx, blastp, both)", s)
	}
	return m, nil
}

// Clade scopes which organisms the forward search includes
type Clade struct {
	Label       string `json:"label" yaml:"label"`               // Short label used in keys and file names
	EntrezQuery string `json:"entrez_query" yaml:"entrez_query"` // Entrez filter passed to the search service
}

// Built-in clade choices
var (
	CladeNotCiliates = Clade{Label: "NOTciliates", EntrezQuery: "NOT Ciliata"}
	CladeCiliates    = Clade{Label: "ciliates", EntrezQuery: "Ciliata"}
	CladeAll         = Clade{Label: "all", EntrezQuery: ""}
)

// ResolveClade maps a clade name to its filter. "custom" requires both a
// label and a query.
func ResolveClade(name, customLabel, customQuery string) (Clade, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "not-ciliates", "notciliates":
		return CladeNotCiliates, nil
	case "ciliates":
		return CladeCiliates, nil
	case "all":
		return CladeAll, nil
	case "custom":
		if customLabel == "" || customQuery == "" {
			return Clade{}, fmt.Errorf("custom clade requires both a label and an entrez query")
		}
		if strings.ContainsAny(customLabel, `/\ `) {
			return Clade{}, fmt.Errorf("custom clade label must not contain spaces or path separators: %q", customLabel)
		}
		return Clade{Label: customLabel, EntrezQuery: customQuery}, nil
	}
	return Clade{}, fmt.Errorf("unknown clade: %q (supported: not-ciliates, ciliates, all, custom)", name)
}
