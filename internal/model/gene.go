package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// QueriedGeneLabel replaces the z-score of a gene that was itself queried
const QueriedGeneLabel = "Queried Gene"

var geneIDPattern = regexp.MustCompile(`^TTHERM_\d{8,9}$`)

// GeneQuery is one co-regulated gene discovered for a query
type GeneQuery struct {
	ID          string  `json:"id"`                    // TTHERM identifier
	ZScore      float64 `json:"z_score"`               // Co-regulation strength
	Queried     bool    `json:"queried"`               // True for genes named in the query; ZScore is meaningless
	CDNA        string  `json:"cdna,omitempty"`        // Nucleotide coding sequence
	Protein     string  `json:"protein,omitempty"`     // Protein sequence
	CommonName  string  `json:"common_name,omitempty"` // Standard name from the gene database
	Description string  `json:"description,omitempty"`
	Ontology    string  `json:"ontology,omitempty"` // Gene Ontology annotations
}

// ScoreLabel renders the z-score column value
func (g GeneQuery) ScoreLabel() string {
	if g.Queried {
		return QueriedGeneLabel
	}
	return strconv.FormatFloat(g.ZScore, 'f', -1, 64)
}

// Sequence returns the sequence a forward search in mode m is submitted with
func (g GeneQuery) Sequence(m SearchMode) string {
	if m == ModeBlastX {
		return g.CDNA
	}
	return g.Protein
}

// NormalizeGeneID upper-cases an identifier and validates its shape
func NormalizeGeneID(id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !strings.HasPrefix(id, "TTHERM_") {
		id = "TTHERM_" + id
	}
	if !geneIDPattern.MatchString(id) {
		return "", fmt.Errorf("invalid gene identifier: %q", id)
	}
	return id, nil
}

// QueryKey joins a set of gene identifiers into the key used for storage and file names
func QueryKey(ids []string) string {
	return strings.Join(ids, "_")
}
