package model

// RankedEntry is one row of a reciprocal search's ranked hit table
type RankedEntry struct {
	Group  string // Species-or-rank column
	EValue string // E-value as printed, possibly missing its mantissa ("e-120")
}

// ReciprocalRecord is the parsed outcome of one reciprocal search
type ReciprocalRecord struct {
	NoHits bool                   // Service reported no hits at all
	TopHit string                 // Identifier of the top-ranked hit
	Ranked map[string]RankedEntry // Identifier to ranked row
}
