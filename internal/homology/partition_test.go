package homology

import (
	"testing"

	"github.com/ppiankov/coreg/internal/model"
)

func TestCleanDefinition(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"serine kinase [Homo sapiens]", "serine kinase"},
		{"kinase [Mus musculus] >gi|12345|ref|XP_1.1| kinase B [Rattus norvegicus]", "kinase kinase B"},
		{"ABC  transporter [[Candida] glabrata]", "ABC transporter"},
	}
	for _, tt := range tests {
		if got := CleanDefinition(tt.in); got != tt.want {
			t.Errorf("CleanDefinition(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsDBError(t *testing.T) {
	if !IsDBError("[blastsrv4.REAL]: Error: CPU usage limit was exceeded, resulting in SIGXCPU (24).") {
		t.Error("CPU limit message not detected")
	}
	if !IsDBError("Failed to collect db stats for nr") {
		t.Error("db stats message not detected")
	}
	if IsDBError("No hits found") {
		t.Error("plain no-hits message flagged as db error")
	}
}

func TestPartition(t *testing.T) {
	doc := &model.HitDocument{Hits: []model.HomologyHit{
		{Definition: "serine kinase [Homo sapiens]", Quality: model.QualityOrtholog},
		{Definition: "kinase family [Danio rerio]", Quality: model.QualityParalog},
		{Definition: "unrelated [Gallus gallus]", Quality: model.QualityRemove},
	}}

	defs := Partition(doc)
	if got := defs[model.PartitionOrtholog]; len(got) != 1 || got[0] != "serine kinase" {
		t.Errorf("ortho = %v", got)
	}
	if got := defs[model.PartitionParalog]; len(got) != 1 || got[0] != "kinase family" {
		t.Errorf("para = %v", got)
	}
	if got := defs[model.PartitionMixed]; len(got) != 2 {
		t.Errorf("mix = %v", got)
	}
}

func TestPartitionPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		doc  *model.HitDocument
		want string
	}{
		{"db error", &model.HitDocument{DBError: true}, DBErrorText},
		{"no hits", &model.HitDocument{}, NoHomologsText},
		{"all removed", &model.HitDocument{Hits: []model.HomologyHit{{Quality: model.QualityRemove}}}, NoHomologsText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := Partition(tt.doc)
			for _, p := range model.Partitions {
				if got := defs[p]; len(got) != 1 || got[0] != tt.want {
					t.Errorf("%s = %v, want [%s]", p, got, tt.want)
				}
			}
		})
	}
}
