package phrase

import "strings"

const (
	hypothetical = "hypothetical protein"

	// Phrases dominated by "hypothetical protein" above this share are dropped
	hypotheticalShare = 0.6

	// Phrases this short or shorter never carry meaning
	minPhraseLen = 4
)

// Exact matches that say nothing about function
var uninformative = map[string]bool{
	"unknown":                   true,
	"repeat-containing protein": true,
	"domain-containing protein": true,
	"peptid":                    true,
	"terminal domain":           true,
	"containing protein":        true,
	"membrane":                  true,
	"repeat":                    true,
}

// Boilerplate whose every fragment is uninformative. A phrase that is a
// substring of one of these is rejected.
var boilerplate = []string{
	"conserved unknown protein",
	strings.Repeat("protein ", 3),
	strings.Repeat("hypothetical protein ", 3),
	strings.Repeat("predicted protein ", 3),
	strings.Repeat("predicted ", 3),
	strings.Repeat("hypothetical ", 3),
	strings.Repeat("conserved hypothetical protein ", 3),
	strings.Repeat("hypothetical protein variant ", 3),
}

// Boilerplate rejected when recovering a phrase for a gene that produced none
var recoveryBoilerplate = []string{
	strings.Repeat("predicted protein ", 3),
	strings.Repeat("unnamed protein product ", 3),
	strings.Repeat("uncharacterized protein ", 3),
}

// mostlyHypothetical reports whether "hypothetical protein" makes up more
// than 60% of the phrase
func mostlyHypothetical(p string) bool {
	return strings.Contains(p, hypothetical) &&
		float64(len(hypothetical))/float64(len(p)) > hypotheticalShare
}

// rejected applies the stoplist to a pairwise match
func rejected(p string) bool {
	if len(p) <= minPhraseLen || uninformative[p] {
		return true
	}
	return fragmentOf(p, boilerplate)
}

func fragmentOf(p string, of []string) bool {
	for _, b := range of {
		if strings.Contains(b, p) {
			return true
		}
	}
	return false
}
