package catalog

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the catalog path template prefix. Concert pages live at
// <base>/<id>/ where <id> is an opaque numeric identifier with no relation
// to the concert year.
const DefaultBaseURL = "https://www.wienerphilharmoniker.at/en/konzerte/new-years-concert"

// PageURL builds the address for one candidate identifier.
func PageURL(baseURL string, id int) string {
	return fmt.Sprintf("%s/%d/", strings.TrimSuffix(baseURL, "/"), id)
}
