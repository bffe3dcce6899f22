package catalog

import (
	"bytes"
	"regexp"
)

// MinBodyBytes is the smallest body that could plausibly be a concert page.
// Anything shorter is an error page or a redirect stub.
const MinBodyBytes = 500

var (
	markerNewYear = []byte("new year")
	markerConcert = []byte("concert")

	// A concert page always carries a "January 1" date with a four digit
	// year somewhere in its body.
	january1Pattern = regexp.MustCompile(`(?i)january\s+1[,\s]+\d{4}`)
)

// IsConcertPage decides from content alone whether a fetched document is a
// New Year's Concert page. The cheap containment checks run before the date
// regex on purpose: the scanner pushes thousands of candidate documents
// through this gate and most of them fail the lexical checks immediately.
func IsConcertPage(body []byte) bool {
	if len(body) < MinBodyBytes {
		return false
	}
	lower := bytes.ToLower(body)
	if !bytes.Contains(lower, markerNewYear) || !bytes.Contains(lower, markerConcert) {
		return false
	}
	return january1Pattern.Match(body)
}
