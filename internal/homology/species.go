package homology

import (
	"regexp"

	"github.com/ppiankov/coreg/internal/model"
)

// speciesPattern matches "[Genus species]" and the doubly bracketed
// "[[Genus] species]" form that some NCBI definitions carry.
var speciesPattern = regexp.MustCompile(`\[{1,2}[^\[]*\]`)

// SpeciesLabel returns the first bracketed species label in a definition,
// or "" when there is none.
func SpeciesLabel(definition string) string {
	return speciesPattern.FindString(definition)
}

// DedupeSpecies keeps the first hit seen for every species label. Later
// hits of an already seen species are returned in dropped, tagged remove.
// Hits without a label are always kept. Input order is preserved in both
// outputs and the input slice is not modified.
func DedupeSpecies(hits []model.HomologyHit) (kept, dropped []model.HomologyHit) {
	seen := make(map[string]bool)
	for _, h := range hits {
		label := SpeciesLabel(h.Definition)
		h.Species = label
		if label == "" {
			kept = append(kept, h)
			continue
		}
		if seen[label] {
			h.Quality = model.QualityRemove
			h.Reason = "duplicate species"
			dropped = append(dropped, h)
			continue
		}
		seen[label] = true
		kept = append(kept, h)
	}
	return kept, dropped
}
