package homology

import (
	"fmt"

	"github.com/ppiankov/coreg/internal/model"
)

// Verdict is the classification of one hit
type Verdict struct {
	Quality model.Quality
	Reason  string
}

// Classify decides the fate of one hit from the reciprocal search record
// obtained with the hit's sequence. geneID is the gene whose forward search
// produced the hit. Classify never returns QualityUnclassified.
//
// Order of checks:
//  1. no hits at all: remove
//  2. top hit is the gene: ortholog
//  3. gene absent from the ranked table: remove
//  4. gene e-value is zero: ortholog
//  5. top/gene e-value ratio >= 0.01: ortholog
//  6. same group field as the top hit: paralog
//  7. otherwise: remove
//
// Unparseable e-values degrade to remove.
func Classify(geneID string, rec model.ReciprocalRecord) Verdict {
	if rec.NoHits {
		return Verdict{model.QualityRemove, "no reciprocal hits"}
	}
	if rec.TopHit == geneID {
		return Verdict{model.QualityOrtholog, "top reciprocal hit"}
	}

	gene, ok := rec.Ranked[geneID]
	if !ok {
		return Verdict{model.QualityRemove, "gene absent from reciprocal hits"}
	}

	geneEval, err := ParseEValue(gene.EValue)
	if err != nil {
		return Verdict{model.QualityRemove, err.Error()}
	}
	if geneEval == 0 {
		return Verdict{model.QualityOrtholog, "gene e-value is zero"}
	}

	top, ok := rec.Ranked[rec.TopHit]
	if !ok {
		return Verdict{model.QualityRemove, fmt.Sprintf("top hit %q missing from ranked table", rec.TopHit)}
	}
	topEval, err := ParseEValue(top.EValue)
	if err != nil {
		return Verdict{model.QualityRemove, err.Error()}
	}

	ratio := topEval / geneEval
	switch {
	case ratio >= orthologRatio:
		return Verdict{model.QualityOrtholog, fmt.Sprintf("e-value ratio %g within two orders of magnitude", ratio)}
	case top.Group == gene.Group:
		return Verdict{model.QualityParalog, fmt.Sprintf("e-value ratio %g, same group %q", ratio, gene.Group)}
	default:
		return Verdict{model.QualityRemove, fmt.Sprintf("e-value ratio %g, different group", ratio)}
	}
}
