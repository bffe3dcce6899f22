package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/concertarchive/nyc-crawler/internal/concert"
)

func TestMappingCache_MissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	cache, err := LoadMappingCache(filepath.Join(t.TempDir(), "concert_ids.json"))
	require.NoError(t, err)
	require.Equal(t, 0, cache.Len())
	require.False(t, cache.Dirty())

	_, ok := cache.Lookup(2015)
	require.False(t, ok)
}

func TestMappingCache_RecordPersistRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "concert_ids.json")

	cache, err := LoadMappingCache(path)
	require.NoError(t, err)

	cache.Record(2015, 10430)
	require.True(t, cache.Dirty())
	require.NoError(t, cache.Persist())
	require.False(t, cache.Dirty())

	reloaded, err := LoadMappingCache(path)
	require.NoError(t, err)
	id, ok := reloaded.Lookup(2015)
	require.True(t, ok)
	require.Equal(t, 10430, id)

	// The file format carries string years and a last_updated stamp.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk struct {
		Mappings    map[string]int `json:"mappings"`
		LastUpdated string         `json:"last_updated"`
	}
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	require.Equal(t, map[string]int{"2015": 10430}, onDisk.Mappings)
	require.NotEmpty(t, onDisk.LastUpdated)
}

func TestMappingCache_CorruptFileIsAnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "concert_ids.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadMappingCache(path)
	require.Error(t, err)
}

func TestCorpusStore_MissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	s := NewCorpusStore(filepath.Join(t.TempDir(), "data.json"))
	archive, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, archive.Concerts)
}

func TestCorpusStore_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewCorpusStore(filepath.Join(t.TempDir(), "data.json"))

	archive := concert.Merge(concert.Archive{}, concert.Record{
		Year:      2015,
		Conductor: "Zubin Mehta",
		Pieces: []concert.Piece{
			{Name: "Blue Danube Waltz", Composer: "Johann Strauss II", Links: map[string]string{}},
		},
	})
	require.NoError(t, s.Save(archive))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, archive, loaded)
}

func TestCorpusStore_MergeUpdateKeepsLengthAndOrder(t *testing.T) {
	t.Parallel()

	s := NewCorpusStore(filepath.Join(t.TempDir(), "data.json"))

	archive := concert.Archive{}
	for _, y := range []int{2014, 2015, 2016} {
		archive = concert.Merge(archive, concert.Record{
			Year:      y,
			Conductor: "Old Conductor",
			Pieces:    []concert.Piece{{Name: "Old Piece", Composer: concert.UnknownComposer, Links: map[string]string{}}},
		})
	}
	require.NoError(t, s.Save(archive))

	loaded, err := s.Load()
	require.NoError(t, err)
	loaded = concert.Merge(loaded, concert.Record{
		Year:      2015,
		Conductor: "Zubin Mehta",
		Pieces:    []concert.Piece{{Name: "New Piece", Composer: "Josef Strauss", Links: map[string]string{}}},
	})
	require.NoError(t, s.Save(loaded))

	final, err := s.Load()
	require.NoError(t, err)
	require.Len(t, final.Concerts, 3)
	require.Equal(t, 2014, final.Concerts[0].Year)
	require.Equal(t, 2015, final.Concerts[1].Year)
	require.Equal(t, 2016, final.Concerts[2].Year)
	require.Equal(t, "Zubin Mehta", final.Concerts[1].Conductor)
	require.Equal(t, "New Piece", final.Concerts[1].Pieces[0].Name)
}
