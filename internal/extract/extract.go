// Package extract turns a classified catalog page into a typed concert
// record. The catalog's markup has changed across decades of publication, so
// every field is extracted through layout-specific patterns tried in a fixed
// priority order.
package extract

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/concertarchive/nyc-crawler/internal/concert"
)

var (
	// The common modern format spells out the weekday; try it first.
	strictYearPattern = regexp.MustCompile(`(?i)monday, january 1, (\d{4})`)
	looseYearPattern  = regexp.MustCompile(`(?i)january 1[,\s]+(\d{4})`)

	dataComposersPattern = regexp.MustCompile(`data-composers="([^"]+)"`)
	programmePattern     = regexp.MustCompile(`(?i)<span[^>]*cast-programm[^>]*>\s*<em>([^<]+)</em>`)
)

// minPieceNameLen is the shortest cleaned title treated as data rather than
// markup noise.
const minPieceNameLen = 3

// Record extracts the concert record from a page body. The second return
// value is false when any required field (year, conductor, at least one
// surviving piece) could not be extracted.
func Record(body []byte) (concert.Record, bool) {
	page := newDocument(body)

	year, ok := extractYear(page.raw)
	if !ok {
		return concert.Record{}, false
	}
	conductor, ok := extractConductor(page)
	if !ok {
		return concert.Record{}, false
	}
	pieces := extractPieces(page.raw, extractComposers(page.raw))
	if len(pieces) == 0 {
		return concert.Record{}, false
	}
	return concert.Record{
		Year:      year,
		Conductor: conductor,
		Pieces:    pieces,
	}, true
}

func extractYear(raw string) (int, bool) {
	m := strictYearPattern.FindStringSubmatch(raw)
	if m == nil {
		m = looseYearPattern.FindStringSubmatch(raw)
	}
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

func extractConductor(page *document) (string, bool) {
	for _, strategy := range conductorStrategies {
		if name, ok := strategy.Extract(page); ok {
			return name, true
		}
	}
	return "", false
}

// extractComposers reads the semicolon-delimited data-composers attribute.
// Absence is not fatal; pieces without a positional composer fall back to
// "Unknown".
func extractComposers(raw string) []string {
	m := dataComposersPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ";")
	composers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			composers = append(composers, p)
		}
	}
	return composers
}

// extractPieces collects programme titles and pairs each occurrence with the
// composer at the same positional index. Pairing happens before noise
// filtering so a dropped entry still consumes its composer slot.
func extractPieces(raw string, composers []string) []concert.Piece {
	matches := programmePattern.FindAllStringSubmatch(raw, -1)
	pieces := make([]concert.Piece, 0, len(matches))
	for i, m := range matches {
		name := cleanTitle(m[1])
		if utf8.RuneCountInString(name) < minPieceNameLen {
			continue
		}
		composer := concert.UnknownComposer
		if i < len(composers) {
			composer = composers[i]
		}
		pieces = append(pieces, concert.Piece{
			Name:     name,
			Composer: composer,
			Links:    map[string]string{},
		})
	}
	return pieces
}

func cleanTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
