package pipeline

import (
	"fmt"
	"strings"
)

// Overwrite chooses which stored results a run recomputes
type Overwrite string

const (
	// OverwriteAll refetches the gene list and reruns every search
	OverwriteAll Overwrite = "all"
	// OverwriteSearches reuses the gene list and reruns every search
	OverwriteSearches Overwrite = "searches"
	// FillMissing computes only what is not stored yet
	FillMissing Overwrite = "missing"
)

// ParseOverwrite validates an overwrite policy name
func ParseOverwrite(s string) (Overwrite, error) {
	switch o := Overwrite(strings.ToLower(strings.TrimSpace(s))); o {
	case OverwriteAll, OverwriteSearches, FillMissing:
		return o, nil
	case "":
		return FillMissing, nil
	}
	return "", fmt.Errorf("unknown overwrite policy: %q (supported: all, searches, missing)", s)
}

func (o Overwrite) refreshHarvest() bool {
	return o == OverwriteAll
}

func (o Overwrite) refreshSearches() bool {
	return o == OverwriteAll || o == OverwriteSearches
}
