package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/coreg/internal/model"
	"go.uber.org/zap"
)

// Harvester builds the gene list for a query from a co-regulation source
// and an ordered chain of detail sources.
type Harvester struct {
	coreg   CoregSource
	details []DetailSource
	logger  *zap.Logger
}

// NewHarvester creates a harvester. Detail sources are consulted in order;
// the first that knows a gene supplies its annotations.
func NewHarvester(coreg CoregSource, logger *zap.Logger, details ...DetailSource) *Harvester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harvester{coreg: coreg, details: details, logger: logger}
}

// Harvest returns the queried genes followed by their co-regulated genes,
// each with annotations and sequences. For several queried genes only genes
// co-regulated with all of them are kept. Co-regulated genes without a cDNA
// sequence are dropped; queried genes are always kept and searched in the
// modes their sequences allow.
func (h *Harvester) Harvest(ctx context.Context, ids []string) ([]model.GeneQuery, error) {
	lists := make([][]CoregEntry, 0, len(ids))
	for _, id := range ids {
		entries, err := h.coreg.Coregulated(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("co-regulation for %s: %w", id, err)
		}
		h.logger.Info("co-regulated genes found", zap.String("gene", id), zap.Int("count", len(entries)))
		lists = append(lists, entries)
	}

	genes := make([]model.GeneQuery, 0, len(ids))
	for _, id := range ids {
		genes = append(genes, model.GeneQuery{ID: id, Queried: true})
	}
	queried := make(map[string]bool, len(ids))
	for _, id := range ids {
		queried[id] = true
	}
	for _, e := range Intersect(lists) {
		if !queried[e.ID] {
			genes = append(genes, model.GeneQuery{ID: e.ID, ZScore: e.ZScore})
		}
	}

	kept := genes[:0]
	for i := range genes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.annotate(ctx, &genes[i]); err != nil {
			return nil, err
		}
		if genes[i].CDNA == "" {
			if !genes[i].Queried {
				h.logger.Warn("no cDNA sequence available, dropping gene", zap.String("gene", genes[i].ID))
				continue
			}
			h.logger.Warn("no cDNA sequence available for queried gene", zap.String("gene", genes[i].ID))
		}
		if genes[i].Protein == "" {
			h.logger.Warn("no protein sequence available", zap.String("gene", genes[i].ID))
		}
		kept = append(kept, genes[i])
		if n := len(kept); n%10 == 0 {
			h.logger.Info("collected sequences", zap.Int("genes", n))
		}
	}
	return kept, nil
}

// annotate fills g from the first detail source that knows it. Sequences
// missing from that source are taken from later ones.
func (h *Harvester) annotate(ctx context.Context, g *model.GeneQuery) error {
	found := false
	for _, src := range h.details {
		d, err := src.Details(ctx, g.ID)
		if errors.Is(err, ErrGeneNotFound) {
			h.logger.Debug("gene not listed", zap.String("gene", g.ID), zap.String("source", src.Name()))
			continue
		}
		if err != nil {
			return fmt.Errorf("details for %s from %s: %w", g.ID, src.Name(), err)
		}
		if !found {
			g.CommonName = d.CommonName
			g.Description = d.Description
			g.Ontology = d.Ontology
			found = true
		}
		if g.CDNA == "" {
			g.CDNA = d.CDNA
		}
		if g.Protein == "" {
			g.Protein = d.Protein
		}
		if g.CDNA != "" && g.Protein != "" {
			break
		}
	}
	if !found {
		g.CommonName = "None"
		g.Description = "None"
	}
	return nil
}

// Intersect keeps entries whose ID occurs in every list, in the order and
// with the z-score of the first list. A single list is returned unchanged.
func Intersect(lists [][]CoregEntry) []CoregEntry {
	if len(lists) == 0 {
		return nil
	}
	if len(lists) == 1 {
		return lists[0]
	}

	counts := make(map[string]int)
	for _, l := range lists {
		seen := make(map[string]bool)
		for _, e := range l {
			if !seen[e.ID] {
				seen[e.ID] = true
				counts[e.ID]++
			}
		}
	}

	var out []CoregEntry
	emitted := make(map[string]bool)
	for _, e := range lists[0] {
		if counts[e.ID] == len(lists) && !emitted[e.ID] {
			emitted[e.ID] = true
			out = append(out, e)
		}
	}
	return out
}

// SelectForSearch returns the genes submitted to homology searches: queried
// genes and those co-regulated at or above threshold.
func SelectForSearch(genes []model.GeneQuery, threshold float64) []model.GeneQuery {
	var out []model.GeneQuery
	for _, g := range genes {
		if g.Queried || g.ZScore >= threshold {
			out = append(out, g)
		}
	}
	return out
}
