package model

// PhraseTable counts phrases for one gene in one partition. Iteration
// order is insertion order, which the best-phrase tie-break depends on.
type PhraseTable struct {
	order  []string
	counts map[string]int
}

// NewPhraseTable creates an empty table
func NewPhraseTable() *PhraseTable {
	return &PhraseTable{counts: make(map[string]int)}
}

// Add increments a phrase's count, creating it if new
func (t *PhraseTable) Add(phrase string) {
	if _, ok := t.counts[phrase]; !ok {
		t.order = append(t.order, phrase)
	}
	t.counts[phrase]++
}

// Count returns the count for a phrase (0 if absent)
func (t *PhraseTable) Count(phrase string) int {
	return t.counts[phrase]
}

// Len returns the number of distinct phrases
func (t *PhraseTable) Len() int {
	return len(t.order)
}

// Phrases returns phrases in insertion order
func (t *PhraseTable) Phrases() []string {
	return append([]string(nil), t.order...)
}

// Partition names one of the three definition groupings
type Partition string

const (
	PartitionOrtholog Partition = "ortho"
	PartitionParalog  Partition = "para"
	PartitionMixed    Partition = "mix"
)

// Partitions lists partitions in report column order
var Partitions = []Partition{PartitionOrtholog, PartitionParalog, PartitionMixed}

// BestPhrasePair holds the most frequent and the longest phrase for one
// gene. Either element may be unset; the zero value is the sentinel pair
// returned for an empty table.
type BestPhrasePair struct {
	Frequent    string `json:"frequent"`
	Longest     string `json:"longest"`
	HasFrequent bool   `json:"has_frequent"`
	HasLongest  bool   `json:"has_longest"`
}

// SentinelPair is returned for an empty phrase table
func SentinelPair() BestPhrasePair {
	return BestPhrasePair{}
}

// IsSentinel reports whether neither element was set
func (p BestPhrasePair) IsSentinel() bool {
	return !p.HasFrequent && !p.HasLongest
}

// GeneSummary holds the best pairs of every partition for one gene in one mode
type GeneSummary map[Partition]BestPhrasePair
