package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
)

func TestDebugColly(t *testing.T) {
	body := "<html>" + strings.Repeat("concert page ", 60) + "</html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Logf("server got path %q", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := colly.NewCollector(colly.Async(false))
	c.SetRequestTimeout(2 * time.Second)
	c.OnRequest(func(r *colly.Request) { t.Logf("on request: %s", r.URL) })
	var got []byte
	c.OnResponse(func(r *colly.Response) { got = append([]byte(nil), r.Body...) })
	c.OnError(func(_ *colly.Response, err error) { t.Logf("colly error: %v", err) })
	url := PageURL(srv.URL, 1234)
	t.Logf("visiting %s", url)
	err := c.Visit(url)
	t.Logf("visit err=%v bodylen=%d", err, len(got))

	c2 := colly.NewCollector()
	c2.OnRequest(func(r *colly.Request) { t.Logf("c2 on request: %s", r.URL) })
	c2.OnResponse(func(r *colly.Response) { t.Logf("c2 response len=%d", len(r.Body)) })
	c2.OnError(func(_ *colly.Response, err error) { t.Logf("c2 error: %v", err) })
	err2 := c2.Visit(srv.URL + "/plain")
	t.Logf("c2 visit err=%v", err2)
}
