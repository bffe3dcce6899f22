package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func concertBody(date string) []byte {
	var b bytes.Buffer
	b.WriteString("<html><body><h1>Vienna Philharmonic New Year's Concert</h1>")
	b.WriteString("<p>" + date + "</p>")
	b.WriteString(strings.Repeat("<p>programme filler</p>", 40))
	b.WriteString("</body></html>")
	return b.Bytes()
}

func TestIsConcertPage_Accepts(t *testing.T) {
	t.Parallel()

	require.True(t, IsConcertPage(concertBody("Monday, January 1, 2015")))
	require.True(t, IsConcertPage(concertBody("JANUARY 1, 1989")))
	require.True(t, IsConcertPage(concertBody("january  1 2001")))
}

func TestIsConcertPage_RejectsShortBody(t *testing.T) {
	t.Parallel()

	require.False(t, IsConcertPage([]byte("<html>New Year Concert January 1, 2015</html>")))
}

func TestIsConcertPage_RejectsMissingMarkers(t *testing.T) {
	t.Parallel()

	noConcert := bytes.ReplaceAll(concertBody("January 1, 2015"), []byte("Concert"), []byte("Recital"))
	require.False(t, IsConcertPage(noConcert))

	noNewYear := bytes.ReplaceAll(concertBody("January 1, 2015"), []byte("New Year's"), []byte("Summer"))
	require.False(t, IsConcertPage(noNewYear))
}

func TestIsConcertPage_RejectsMissingDate(t *testing.T) {
	t.Parallel()

	require.False(t, IsConcertPage(concertBody("Sometime in spring")))
	// A year without the January 1 anchor is not enough.
	require.False(t, IsConcertPage(concertBody("December 31, 2014")))
}
