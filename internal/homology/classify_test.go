package homology

import (
	"testing"

	"github.com/ppiankov/coreg/internal/model"
)

const gene = "TTHERM_00321680"

func ranked(rows ...string) map[string]model.RankedEntry {
	m := make(map[string]model.RankedEntry)
	for i := 0; i+2 < len(rows); i += 3 {
		m[rows[i]] = model.RankedEntry{Group: rows[i+1], EValue: rows[i+2]}
	}
	return m
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		rec  model.ReciprocalRecord
		want model.Quality
	}{
		{
			name: "no hits",
			rec:  model.ReciprocalRecord{NoHits: true},
			want: model.QualityRemove,
		},
		{
			name: "top hit is the gene",
			rec:  model.ReciprocalRecord{TopHit: gene, Ranked: ranked(gene, "g1", "1e-80")},
			want: model.QualityOrtholog,
		},
		{
			name: "top hit is the gene even without a table",
			rec:  model.ReciprocalRecord{TopHit: gene},
			want: model.QualityOrtholog,
		},
		{
			name: "gene absent from table",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "1e-80")},
			want: model.QualityRemove,
		},
		{
			name: "gene e-value zero",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "1e-80", gene, "g2", "0.0")},
			want: model.QualityOrtholog,
		},
		{
			name: "gene e-value zero with unparseable top",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "n/a", gene, "g2", "0")},
			want: model.QualityOrtholog,
		},
		{
			name: "ratio 10 is ortholog",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "1e-50", gene, "g2", "1e-49")},
			want: model.QualityOrtholog,
		},
		{
			name: "ratio exactly 0.01 is ortholog",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "1e-2", gene, "g2", "1")},
			want: model.QualityOrtholog,
		},
		{
			name: "distant same group is paralog",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "1e-50", gene, "g1", "1e-10")},
			want: model.QualityParalog,
		},
		{
			name: "distant different group is removed",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "1e-50", gene, "g2", "1e-10")},
			want: model.QualityRemove,
		},
		{
			name: "mantissa-less e-values",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "e-120", gene, "g1", "e-119")},
			want: model.QualityOrtholog,
		},
		{
			name: "top e-value zero, gene nonzero, same group",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "0.0", gene, "g1", "1e-30")},
			want: model.QualityParalog,
		},
		{
			name: "malformed gene e-value",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked("TTHERM_99999999", "g1", "1e-50", gene, "g1", "abc")},
			want: model.QualityRemove,
		},
		{
			name: "top hit missing from table",
			rec:  model.ReciprocalRecord{TopHit: "TTHERM_99999999", Ranked: ranked(gene, "g1", "1e-10")},
			want: model.QualityRemove,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(gene, tt.rec)
			if got.Quality != tt.want {
				t.Errorf("Classify() = %v (%s), want %v", got.Quality, got.Reason, tt.want)
			}
			if got.Quality == model.QualityUnclassified {
				t.Error("Classify() must never return unclassified")
			}
		})
	}
}

func TestParseEValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1e-50", 1e-50, false},
		{"e-120", 1e-120, false},
		{" 2e-10 ", 2e-10, false},
		{"0.0", 0, false},
		{"0.003", 0.003, false},
		{"", 0, true},
		{"n/a", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseEValue(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEValue(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEValue(%q) = %g, want %g", tt.in, got, tt.want)
		}
	}
}
