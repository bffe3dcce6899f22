package concert

import "sort"

// Merge reconciles one record into the archive. A record whose year already
// exists replaces that entry's conductor and pieces in place; otherwise the
// record is appended. The archive is re-sorted ascending by year after every
// merge, so callers may rely on the ordering at all times.
func Merge(archive Archive, rec Record) Archive {
	replaced := false
	for i := range archive.Concerts {
		if archive.Concerts[i].Year == rec.Year {
			archive.Concerts[i].Conductor = rec.Conductor
			archive.Concerts[i].Pieces = rec.Pieces
			replaced = true
			break
		}
	}
	if !replaced {
		archive.Concerts = append(archive.Concerts, rec)
	}
	sort.Slice(archive.Concerts, func(i, j int) bool {
		return archive.Concerts[i].Year < archive.Concerts[j].Year
	})
	return archive
}

// Lookup returns the record for a year, if present.
func (a Archive) Lookup(year int) (Record, bool) {
	for _, rec := range a.Concerts {
		if rec.Year == year {
			return rec, true
		}
	}
	return Record{}, false
}
