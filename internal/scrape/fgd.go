package scrape

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const fgdErrorTitle = "TetraFGD ERROR"

// FGDAdapter scrapes the Tetrahymena Functional Genomics Database
type FGDAdapter struct {
	base   string
	getter Getter
	logger *zap.Logger
}

// NewFGDAdapter creates an adapter for the FGD instance at baseURL
func NewFGDAdapter(baseURL string, getter Getter, logger *zap.Logger) *FGDAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FGDAdapter{
		base:   strings.TrimRight(baseURL, "/"),
		getter: getter,
		logger: logger,
	}
}

// Name returns the adapter name
func (a *FGDAdapter) Name() string {
	return "fgd"
}

// Coregulated walks every result page of the gene's co-expression listing.
// Pages are discovered from the pager links, so listings of any length are
// followed exactly once per page.
func (a *FGDAdapter) Coregulated(ctx context.Context, id string) ([]CoregEntry, error) {
	var entries []CoregEntry
	visited := map[string]bool{"1": true}
	queue := []string{"1"}

	for len(queue) > 0 {
		page := queue[0]
		queue = queue[1:]

		doc, err := a.page(ctx, fmt.Sprintf("%s/search/detail/gene/%s/page/%s", a.base, id, page))
		if err != nil {
			return nil, err
		}

		found, err := parseCoregList(doc)
		if err != nil {
			return nil, fmt.Errorf("fgd page %s of %s: %w", page, id, err)
		}
		entries = append(entries, found...)

		for _, p := range pagerLinks(doc) {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}

	a.logger.Debug("co-regulated genes collected",
		zap.String("gene", id),
		zap.Int("count", len(entries)),
		zap.Int("pages", len(visited)))
	return entries, nil
}

// Details reads the FGD summary table and sequence pages. FGD carries no
// standard name or ontology.
func (a *FGDAdapter) Details(ctx context.Context, id string) (GeneDetails, error) {
	doc, err := a.page(ctx, fmt.Sprintf("%s/search/detail/gene/%s/page/1", a.base, id))
	if err != nil {
		return GeneDetails{}, err
	}

	d := GeneDetails{Source: a.Name()}
	if cells := findAll(doc, element("td")); len(cells) > 1 {
		d.Description = normalizeField(textOf(cells[1]))
	}

	if d.CDNA, err = a.sequence(ctx, "dna", id); err != nil {
		return GeneDetails{}, err
	}
	if d.Protein, err = a.sequence(ctx, "protein", id); err != nil {
		return GeneDetails{}, err
	}
	d.Protein = strings.TrimSuffix(d.Protein, "*")
	return d, nil
}

func (a *FGDAdapter) sequence(ctx context.Context, kind, id string) (string, error) {
	doc, err := a.page(ctx, fmt.Sprintf("%s/search/%s/locus/%s", a.base, kind, id))
	if err != nil {
		return "", err
	}
	p := findFirst(doc, elementWithClass("p", "seq"))
	if p == nil {
		return "", nil
	}
	return strings.Join(strings.Fields(textOf(p)), ""), nil
}

func (a *FGDAdapter) page(ctx context.Context, rawURL string) (*html.Node, error) {
	res, err := a.getter.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fgd: %w", err)
	}
	doc, err := parseHTML(res.Body)
	if err != nil {
		return nil, fmt.Errorf("fgd: parse %s: %w", rawURL, err)
	}
	if strings.Contains(title(doc), fgdErrorTitle) {
		return nil, fmt.Errorf("fgd: %w", ErrGeneNotFound)
	}
	return doc, nil
}

func parseCoregList(doc *html.Node) ([]CoregEntry, error) {
	list := findFirst(doc, elementWithClass("div", "colist"))
	if list == nil {
		return nil, nil
	}

	var entries []CoregEntry
	for _, a := range findAll(list, element("a")) {
		fields := strings.Fields(textOf(a))
		if len(fields) < 2 {
			continue
		}
		z, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("z-score %q for %s: %w", fields[1], fields[0], err)
		}
		entries = append(entries, CoregEntry{ID: fields[0], ZScore: z})
	}
	return entries, nil
}

// pagerLinks returns the page labels linked from div.page, skipping the
// Next/Previous arrows
func pagerLinks(doc *html.Node) []string {
	pager := findFirst(doc, elementWithClass("div", "page"))
	if pager == nil {
		return nil
	}
	var pages []string
	for _, a := range findAll(pager, element("a")) {
		label := strings.TrimSpace(textOf(a))
		if label == "" || label == "Next" || label == "Previous" {
			continue
		}
		pages = append(pages, label)
	}
	return pages
}
