package homology

import (
	"fmt"
	"strconv"
	"strings"
)

// orthologRatio is the smallest top/query e-value ratio still counted as
// an ortholog: the queried gene is within two orders of magnitude.
const orthologRatio = 0.01

// ParseEValue parses an e-value as printed by BLAST report tables. Values
// such as "e-120" lack a mantissa and are read as "1e-120".
func ParseEValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "e") || strings.HasPrefix(s, "E") {
		s = "1" + s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse e-value %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("parse e-value %q: negative", s)
	}
	return v, nil
}
