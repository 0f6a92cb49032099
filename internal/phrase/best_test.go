package phrase

import (
	"testing"

	"github.com/ppiankov/coreg/internal/model"
)

func table(phrases ...string) *model.PhraseTable {
	t := model.NewPhraseTable()
	for _, p := range phrases {
		t.Add(p)
	}
	return t
}

func TestBestOnEmptyTableIsSentinel(t *testing.T) {
	for _, tbl := range []*model.PhraseTable{nil, model.NewPhraseTable()} {
		got := Best(tbl)
		if !got.IsSentinel() {
			t.Errorf("Best() = %+v, want sentinel", got)
		}
	}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name         string
		table        *model.PhraseTable
		wantFrequent string
		wantLongest  string
	}{
		{
			name:         "independent picks",
			table:        table("kinase", "kinase", "serine threonine kinase"),
			wantFrequent: "kinase",
			wantLongest:  "serine threonine kinase",
		},
		{
			name:         "first seen wins count tie",
			table:        table("alpha tubulin", "beta tubulin"),
			wantFrequent: "alpha tubulin",
			wantLongest:  "alpha tubulin",
		},
		{
			name:         "first seen wins length tie",
			table:        table("abcd", "wxyz", "wxyz"),
			wantFrequent: "wxyz",
			wantLongest:  "abcd",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Best(tt.table)
			if got.Frequent != tt.wantFrequent || got.Longest != tt.wantLongest {
				t.Errorf("Best() = %+v, want frequent %q longest %q", got, tt.wantFrequent, tt.wantLongest)
			}
			if !got.HasFrequent || !got.HasLongest {
				t.Errorf("Best() = %+v, both elements should be set", got)
			}
		})
	}
}

func TestBestWithOnlyEmptyPhrase(t *testing.T) {
	got := Best(table(""))
	if !got.HasFrequent || got.Frequent != "" {
		t.Errorf("frequent = %+v, want empty string set", got)
	}
	if got.HasLongest {
		t.Errorf("longest should stay unset for a zero-length phrase: %+v", got)
	}
}

func TestSummarizeGene(t *testing.T) {
	defs := map[model.Partition][]string{
		model.PartitionOrtholog: {"dynein heavy chain"},
		model.PartitionMixed:    {"dynein heavy chain", "kinesin"},
	}
	s := SummarizeGene(defs)
	if got := s[model.PartitionOrtholog]; got.Frequent != "dynein heavy chain" {
		t.Errorf("ortho = %+v", got)
	}
	if got := s[model.PartitionParalog]; !got.IsSentinel() {
		t.Errorf("para = %+v, want sentinel", got)
	}
	if got := s[model.PartitionMixed]; got.Frequent != "dynein heavy chain" || got.Longest != "dynein heavy chain" {
		t.Errorf("mix = %+v", got)
	}
}
