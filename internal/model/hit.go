package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Quality is the classification tag carried by every homology hit
type Quality int

const (
	QualityUnclassified Quality = iota // Not yet seen by the reciprocal classifier
	QualityOrtholog                    // Reciprocal search points back at the queried gene
	QualityParalog                     // Queried gene ranks, but a same-group gene beats it
	QualityRemove                      // Excluded from summarization
	QualityEmpty                       // No informative homologs survived
	QualityError                       // Database error marker from the search service
)

var qualityNames = map[Quality]string{
	QualityUnclassified: "unclassified",
	QualityOrtholog:     "ortholog",
	QualityParalog:      "paralog",
	QualityRemove:       "remove",
	QualityEmpty:        "empty",
	QualityError:        "error",
}

// String returns the lowercase tag name
func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// ParseQuality converts a tag name back into a Quality
func ParseQuality(s string) (Quality, error) {
	for q, name := range qualityNames {
		if name == s {
			return q, nil
		}
	}
	return QualityUnclassified, fmt.Errorf("unknown quality tag: %q", s)
}

// MarshalJSON stores the tag by name so persisted documents stay readable
func (q Quality) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON reads a tag name written by MarshalJSON
func (q *Quality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseQuality(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// HomologyHit is one hit from a forward similarity search
type HomologyHit struct {
	Accession  string  `json:"accession"`         // Accession.version, unique within a document
	Definition string  `json:"definition"`        // Raw definition line as returned by the service
	Species    string  `json:"species,omitempty"` // Bracketed species label, if one was found
	Quality    Quality `json:"quality"`           // Classification tag
	Reason     string  `json:"reason,omitempty"`  // Short note on why the tag was assigned
}

// HitDocument is the persisted result of one forward search for one gene
type HitDocument struct {
	GeneID    string        `json:"gene_id"`
	Clade     string        `json:"clade"` // Clade label (e.g. "NOTciliates")
	Mode      SearchMode    `json:"mode"`
	Hits      []HomologyHit `json:"hits"`
	Message   string        `json:"message,omitempty"` // Iteration message from the search service
	DBError   bool          `json:"db_error"`          // Service reported a resource-limit error
	CreatedAt time.Time     `json:"created_at"`
}

// Surviving returns hits not tagged remove
func (d *HitDocument) Surviving() []HomologyHit {
	var out []HomologyHit
	for _, h := range d.Hits {
		if h.Quality != QualityRemove {
			out = append(out, h)
		}
	}
	return out
}

// Clone returns a deep copy so classification never mutates the forward document
func (d *HitDocument) Clone() *HitDocument {
	c := *d
	c.Hits = append([]HomologyHit(nil), d.Hits...)
	return &c
}
