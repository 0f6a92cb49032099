package phrase

import "github.com/ppiankov/coreg/internal/model"

// Best picks the most frequent and the longest phrase from a table. Each
// scan only replaces its running best on a strictly greater value, so the
// first phrase seen wins ties. A phrase must have a positive count to be
// most frequent and a positive length to be longest.
func Best(t *model.PhraseTable) model.BestPhrasePair {
	pair := model.SentinelPair()
	if t == nil {
		return pair
	}

	best := 0
	for _, p := range t.Phrases() {
		if c := t.Count(p); c > best {
			best = c
			pair.Frequent = p
			pair.HasFrequent = true
		}
	}

	longest := 0
	for _, p := range t.Phrases() {
		if len(p) > longest {
			longest = len(p)
			pair.Longest = p
			pair.HasLongest = true
		}
	}

	return pair
}

// SummarizeGene runs the summarizer and selector over every partition of one gene
func SummarizeGene(defs map[model.Partition][]string) model.GeneSummary {
	summary := make(model.GeneSummary, len(model.Partitions))
	for _, p := range model.Partitions {
		summary[p] = Best(Summarize(defs[p]))
	}
	return summary
}
