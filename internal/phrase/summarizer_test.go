package phrase

import (
	"reflect"
	"testing"

	"github.com/ppiankov/coreg/internal/model"
)

type entry struct {
	phrase string
	count  int
}

func entries(t *model.PhraseTable) []entry {
	var out []entry
	for _, p := range t.Phrases() {
		out = append(out, entry{p, t.Count(p)})
	}
	return out
}

func TestClean(t *testing.T) {
	got := Clean("Serine/Threonine-Protein Kinase (PKC), isoform #2; [putative]")
	want := "serine/threonine-protein kinase (pkc) isoform 2 putative"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		defs []string
		want []entry
	}{
		{
			name: "no definitions",
			defs: nil,
			want: nil,
		},
		{
			name: "single definition",
			defs: []string{"  Ubiquitin Ligase E3, "},
			want: []entry{{"ubiquitin ligase e3", 1}},
		},
		{
			name: "two definitions are not merged",
			defs: []string{"kinase domain", "kinase domain-like protein"},
			want: []entry{{"kinase domain", 1}, {"kinase domain-like protein", 1}},
		},
		{
			name: "pairwise common phrase",
			defs: []string{
				"dynein heavy chain 7",
				"cytoplasmic dynein heavy chain",
				"dynein heavy chain, axonemal",
			},
			want: []entry{{"dynein heavy chain", 3}},
		},
		{
			name: "stoplisted and short matches are dropped, recovery admits first informative",
			defs: []string{
				"membrane x",
				"membrane y",
				"membrane z",
			},
			want: []entry{{"membrane x", 1}},
		},
		{
			name: "pair with nothing in common falls back to longest definition",
			defs: []string{
				"abc",
				"xyz",
				"qqqq",
			},
			want: []entry{{"qqqq", 3}},
		},
		{
			name: "hypothetical protein alone is dropped",
			defs: []string{
				"hypothetical protein A",
				"hypothetical protein B",
				"hypothetical protein C",
				"unnamed protein product",
				"serine protease",
			},
			want: []entry{{"serine protease", 1}},
		},
		{
			name: "hypothetical protein variant with informative tail is kept",
			defs: []string{
				"hypothetical protein variant of kinase",
				"hypothetical protein variant of kinase",
				"hypothetical protein variant of kinase",
			},
			want: []entry{{"hypothetical protein variant of kinase", 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entries(Summarize(tt.defs))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Summarize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarizeRecoverySkipsBoilerplate(t *testing.T) {
	defs := []string{
		"predicted protein",
		"Uncharacterized protein",
		"hypothetical protein XP_1",
		"Actin-related protein",
		"tubulin",
	}
	// Pairwise matches here are all boilerplate or too short
	got := entries(Summarize(defs))
	if len(got) == 0 {
		t.Fatal("expected a recovered phrase")
	}
	for _, e := range got {
		if e.phrase == "predicted protein" || e.phrase == "uncharacterized protein" {
			t.Errorf("boilerplate admitted: %q", e.phrase)
		}
	}
}

func TestLongestCommonSubstring(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"kinase domain", "kinase domain-like", "kinase domain"},
		{"abcxyz", "xyzabc", "abc"},
		{"abc", "def", ""},
		{"", "abc", ""},
		{"cytoplasmic dynein", "dynein heavy", "dynein"},
	}
	for _, tt := range tests {
		if got := LongestCommonSubstring(tt.a, tt.b); got != tt.want {
			t.Errorf("LongestCommonSubstring(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
