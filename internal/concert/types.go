// Package concert defines the core record types shared across subsystems.
package concert

// Piece is a single programme entry.
type Piece struct {
	Name     string `json:"name"`
	Composer string `json:"composer"`
	// Links is reserved for future enrichment (recordings, scores) and is
	// currently always empty.
	Links map[string]string `json:"links"`
}

// Record is the extracted programme for one New Year's Concert.
type Record struct {
	Year      int     `json:"year"`
	Conductor string  `json:"conductor"`
	Pieces    []Piece `json:"pieces"`
}

// Valid reports whether the record carries the minimum required fields.
// Records failing this are discarded by the pipeline and never persisted.
func (r Record) Valid() bool {
	return r.Year != 0 && r.Conductor != "" && len(r.Pieces) > 0
}

// Archive is the persisted corpus of discovered concerts, unique by year and
// kept sorted ascending by year.
type Archive struct {
	Concerts []Record `json:"concerts"`
}

// UnknownComposer is used when a piece cannot be paired with a composer.
const UnknownComposer = "Unknown"
