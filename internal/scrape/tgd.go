package scrape

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	tgdErrorTitle    = "Error Page"
	noDescription    = "No description available"
	labelName        = "Standard Name"
	labelDescription = "Description"
	labelOntology    = "Gene Ontology Annotations"
)

// TGDAdapter scrapes gene-detail pages of the Tetrahymena Genome Database
type TGDAdapter struct {
	base   string
	getter Getter
	logger *zap.Logger
}

// NewTGDAdapter creates an adapter for the TGD instance at baseURL
func NewTGDAdapter(baseURL string, getter Getter, logger *zap.Logger) *TGDAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TGDAdapter{
		base:   strings.TrimRight(baseURL, "/"),
		getter: getter,
		logger: logger,
	}
}

// Name returns the adapter name
func (a *TGDAdapter) Name() string {
	return "tgd"
}

// Details reads the labelled fields and FASTA blocks of the gene page
func (a *TGDAdapter) Details(ctx context.Context, id string) (GeneDetails, error) {
	rawURL := fmt.Sprintf("%s/index.php/feature/details/%s", a.base, id)
	res, err := a.getter.Get(ctx, rawURL)
	if err != nil {
		return GeneDetails{}, fmt.Errorf("tgd: %w", err)
	}
	doc, err := parseHTML(res.Body)
	if err != nil {
		return GeneDetails{}, fmt.Errorf("tgd: parse %s: %w", rawURL, err)
	}
	if strings.Contains(title(doc), tgdErrorTitle) {
		return GeneDetails{}, fmt.Errorf("tgd: %w", ErrGeneNotFound)
	}

	d := GeneDetails{Source: a.Name()}

	lines := nonEmptyLines(textOf(doc))
	for i, l := range lines {
		switch l {
		case labelName:
			d.CommonName = normalizeField(lineAt(lines, i+1))
		case labelDescription:
			d.Description = normalizeField(lineAt(lines, i+1))
		case labelOntology:
			d.Ontology = normalizeField(lineAt(lines, i+2))
		}
	}
	if d.Description == "" {
		d.Description = noDescription
	}

	for _, pre := range findAll(doc, element("pre")) {
		header, seq := splitFASTA(textOf(pre))
		switch {
		case strings.Contains(header, "coding"):
			d.CDNA = seq
		case strings.Contains(header, "protein"):
			d.Protein = seq
		}
	}

	a.logger.Debug("gene details collected",
		zap.String("gene", id),
		zap.String("name", d.CommonName),
		zap.Bool("has_cdna", d.CDNA != ""),
		zap.Bool("has_protein", d.Protein != ""))
	return d, nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

// splitFASTA separates a ">ID label" header line from the sequence lines
func splitFASTA(block string) (header, seq string) {
	block = strings.TrimSpace(block)
	header, body, _ := strings.Cut(block, "\n")
	return header, strings.Join(strings.Fields(body), "")
}
