package links

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test HTML: %v", err)
	}
	return doc
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse URL: %v", err)
	}
	return u
}

func TestFromDocument(t *testing.T) {
	html := `<html><body>
		<a href="/handbook/values/" title="Our Values">Values</a>
		<a href="https://example.org/pricing">Pricing</a>
		<a href="mailto:hi@example.com">Email</a>
		<a href="/handbook/values/">Values again</a>
		<a href="#section">Anchor only</a>
	</body></html>`

	base := mustParseURL(t, "https://example.com/handbook/")
	got := FromDocument(base, parseDoc(t, html), 250)

	if len(got) != 3 {
		t.Fatalf("FromDocument() returned %d links, want 3: %+v", len(got), got)
	}

	if got[0].URL != "https://example.com/handbook/values/" {
		t.Errorf("relative link not joined against base: %q", got[0].URL)
	}
	for _, want := range []string{"Values", "Our Values", "https://example.com/handbook/values/"} {
		if !strings.Contains(got[0].Context, want) {
			t.Errorf("context %q missing %q", got[0].Context, want)
		}
	}

	if got[1].URL != "https://example.org/pricing" {
		t.Errorf("absolute link altered: %q", got[1].URL)
	}

	// The fragment-only link resolves to the base page URL, which is a
	// valid http candidate distinct from the others.
	if !strings.HasPrefix(got[2].URL, "https://example.com/handbook/") {
		t.Errorf("unexpected third link: %q", got[2].URL)
	}
}

func TestFromDocument_DedupeByExactURL(t *testing.T) {
	html := `<html><body>
		<a href="https://example.com/a">first</a>
		<a href="https://example.com/a">second</a>
		<a href="https://example.com/a?x=1">different query</a>
	</body></html>`

	got := FromDocument(mustParseURL(t, "https://example.com/"), parseDoc(t, html), 250)
	if len(got) != 2 {
		t.Fatalf("FromDocument() returned %d links, want 2 (exact-URL dedupe)", len(got))
	}
	if got[0].Context != "first https://example.com/a" {
		t.Errorf("first occurrence should win: %q", got[0].Context)
	}
}

func TestFromDocument_MaxLinksCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 20; i++ {
		sb.WriteString(`<a href="https://example.com/page` + string(rune('a'+i)) + `">link</a>`)
	}
	sb.WriteString("</body></html>")

	got := FromDocument(mustParseURL(t, "https://example.com/"), parseDoc(t, sb.String()), 5)
	if len(got) != 5 {
		t.Errorf("FromDocument() returned %d links, want capped at 5", len(got))
	}
}

func TestFromDocument_NonPositiveMaxLinks(t *testing.T) {
	html := `<html><body>
		<a href="https://example.com/a">a</a>
		<a href="https://example.com/b">b</a>
	</body></html>`

	for _, maxLinks := range []int{0, -1} {
		got := FromDocument(mustParseURL(t, "https://example.com/"), parseDoc(t, html), maxLinks)
		if len(got) != 0 {
			t.Errorf("FromDocument(maxLinks=%d) returned %d links, want 0", maxLinks, len(got))
		}
	}
}

func TestFromDocument_PreservesDocumentOrder(t *testing.T) {
	html := `<html><body>
		<a href="https://example.com/one">1</a>
		<a href="https://example.com/two">2</a>
		<a href="https://example.com/three">3</a>
	</body></html>`

	got := FromDocument(mustParseURL(t, "https://example.com/"), parseDoc(t, html), 250)
	want := []string{"https://example.com/one", "https://example.com/two", "https://example.com/three"}
	for i, url := range want {
		if got[i].URL != url {
			t.Errorf("got[%d].URL = %q, want %q", i, got[i].URL, url)
		}
	}
}
