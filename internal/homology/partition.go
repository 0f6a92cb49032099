package homology

import (
	"regexp"
	"strings"

	"github.com/ppiankov/coreg/internal/model"
)

// Placeholder definitions entered into every partition of a gene without usable hits
const (
	NoHomologsText = "No informative homologs found"
	DBErrorText    = "db error"
)

// Iteration messages that mark a search killed by the service rather than
// a search that legitimately found nothing.
var dbErrorMarkers = []string{
	"CPU usage limit was exceeded",
	"Failed to collect db stats for nr",
}

var (
	giPattern     = regexp.MustCompile(`>gi[^\s]*`)
	repeatedSpace = regexp.MustCompile(`\s{2,}`)
)

// IsDBError reports whether a search-service message is a resource-limit error
func IsDBError(message string) bool {
	for _, m := range dbErrorMarkers {
		if strings.Contains(message, m) {
			return true
		}
	}
	return false
}

// CleanDefinition strips gi codes and species labels from a hit definition
func CleanDefinition(def string) string {
	def = giPattern.ReplaceAllString(def, "")
	def = speciesPattern.ReplaceAllString(def, "")
	return strings.TrimSpace(repeatedSpace.ReplaceAllString(def, " "))
}

// Definitions holds the cleaned definitions of one gene per partition
type Definitions map[model.Partition][]string

// DocumentQuality is the gene-level state of a classified document:
// error for a database error, empty when nothing survived, otherwise
// unclassified (meaning "has hits").
func DocumentQuality(doc *model.HitDocument) model.Quality {
	if doc.DBError {
		return model.QualityError
	}
	if len(doc.Surviving()) == 0 {
		return model.QualityEmpty
	}
	return model.QualityUnclassified
}

// Partition splits a classified document into ortholog, paralog and mixed
// definition lists. Empty and error documents put their placeholder text
// into all three.
func Partition(doc *model.HitDocument) Definitions {
	defs := Definitions{}
	switch DocumentQuality(doc) {
	case model.QualityError:
		for _, p := range model.Partitions {
			defs[p] = []string{DBErrorText}
		}
		return defs
	case model.QualityEmpty:
		for _, p := range model.Partitions {
			defs[p] = []string{NoHomologsText}
		}
		return defs
	}

	for _, h := range doc.Hits {
		def := CleanDefinition(h.Definition)
		switch h.Quality {
		case model.QualityOrtholog:
			defs[model.PartitionOrtholog] = append(defs[model.PartitionOrtholog], def)
			defs[model.PartitionMixed] = append(defs[model.PartitionMixed], def)
		case model.QualityParalog:
			defs[model.PartitionParalog] = append(defs[model.PartitionParalog], def)
			defs[model.PartitionMixed] = append(defs[model.PartitionMixed], def)
		}
	}
	return defs
}
