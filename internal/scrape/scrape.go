// Package scrape reads co-regulation data and gene details from the
// Tetrahymena gene databases (TetraFGD and TGD).
package scrape

import (
	"context"
	"errors"

	"github.com/ppiankov/coreg/internal/fetch"
)

// ErrGeneNotFound is returned when a database answers with its error page
var ErrGeneNotFound = errors.New("gene not found")

// Getter fetches a page. *fetch.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// GeneDetails is what a gene-detail page contributes to a GeneQuery
type GeneDetails struct {
	Source      string
	CommonName  string
	Description string
	Ontology    string
	CDNA        string
	Protein     string
}

// DetailSource looks up annotations and sequences for one gene
type DetailSource interface {
	// Name identifies the database in logs
	Name() string

	// Details returns ErrGeneNotFound when the database does not know id
	Details(ctx context.Context, id string) (GeneDetails, error)
}

// CoregSource lists genes co-regulated with a queried gene
type CoregSource interface {
	Coregulated(ctx context.Context, id string) ([]CoregEntry, error)
}

// CoregEntry is one co-regulated gene and its z-score
type CoregEntry struct {
	ID     string
	ZScore float64
}
