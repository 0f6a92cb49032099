// Package report turns per-gene phrase summaries into the tabular report.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/coreg/internal/model"
)

// Placeholder texts. Existing reports carry these exact strings.
const (
	OrthologsUninformative = "Orthologs found, but summary is uninformative"
	ParalogsUninformative  = "Paralogs found, but summary is uninformative"
	MixedUninformative     = "Homologs found, but nothing informative"
	LongestUninformative   = "Homologs found, but summary is uninformative"
	NoBLASTPerformed       = "No BLAST performed"
	TooDissimilar          = "Definitions too dissimilar to summarize"
	NoReciprocalPerformed  = "No reciprocal BLASTs performed"
)

// Summaries maps gene ID to its summary for one search mode. A gene absent
// from the map was never reciprocated.
type Summaries map[string]model.GeneSummary

// Input is everything needed to assemble one report
type Input struct {
	QueryIDs  []string
	Clade     string // clade label
	Mode      model.SearchMode
	Threshold float64
	Genes     []model.GeneQuery
	ByMode    map[model.SearchMode]Summaries
}

// Single reports whether the query named exactly one gene
func (in Input) Single() bool {
	return len(in.QueryIDs) == 1
}

// Header returns the column header for a report
func Header(single bool, mode model.SearchMode) []string {
	// "Gene.Onotology" is misspelled in every report produced so far
	h := []string{"TTHERM_ID", "Common.Name", "Description", "Gene.Onotology"}
	if single {
		h = append(h, "z-score")
	}
	for _, m := range mode.Modes() {
		p := m.ColumnPrefix()
		h = append(h,
			p+".Ortholog.Summary",
			p+".Paralog.Summary",
			p+".Mixed.Summary",
			p+".Mixed.Longest.Common.Phrase",
		)
	}
	return append(h, "cDNA", "protein")
}

// SummaryFields renders the four summary columns for one gene in one mode
func SummaryFields(summary model.GeneSummary, ok bool) []string {
	if !ok {
		return []string{NoReciprocalPerformed, NoReciprocalPerformed, NoReciprocalPerformed, NoReciprocalPerformed}
	}
	ortho := summary[model.PartitionOrtholog]
	para := summary[model.PartitionParalog]
	mix := summary[model.PartitionMixed]
	return []string{
		field(ortho.Frequent, ortho.HasFrequent, OrthologsUninformative),
		field(para.Frequent, para.HasFrequent, ParalogsUninformative),
		field(mix.Frequent, mix.HasFrequent, MixedUninformative),
		field(mix.Longest, mix.HasLongest, LongestUninformative),
	}
}

func field(value string, set bool, unset string) string {
	switch {
	case !set:
		return unset
	case value == "":
		return NoBLASTPerformed
	case len(value) == 1:
		return TooDissimilar
	}
	return value
}

// Rows assembles one row per gene, in the order genes were harvested
func Rows(in Input) [][]string {
	rows := make([][]string, 0, len(in.Genes))
	for _, g := range in.Genes {
		row := []string{g.ID, g.CommonName, g.Description, g.Ontology}
		if in.Single() {
			row = append(row, g.ScoreLabel())
		}
		for _, m := range in.Mode.Modes() {
			s, ok := in.ByMode[m][g.ID]
			row = append(row, SummaryFields(s, ok)...)
		}
		row = append(row, g.CDNA, g.Protein)
		rows = append(rows, row)
	}
	return rows
}

// FileName names the CSV for a query
func FileName(queryIDs []string, clade string, mode model.SearchMode, threshold float64) string {
	return fmt.Sprintf("coreg_info_for_%s_%s_%s_%s.csv",
		strings.Join(queryIDs, "_"), clade, mode, strconv.FormatFloat(threshold, 'f', -1, 64))
}
