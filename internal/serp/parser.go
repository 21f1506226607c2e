package serp

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/kwhitfield/jobradar/internal/model"
)

// Result is one candidate entry extracted from a search result page.
type Result struct {
	URL   string
	Title string
}

// Google-owned hosts that show up as navigation, cache, or account links in
// result markup. Never job postings.
var navigationHosts = []string{
	"google.com",
	"googleusercontent.com",
	"gstatic.com",
	"youtube.com",
	"translate.goog",
}

// Parse extracts candidate results from a raw search result payload. Each
// result anchor on a Google page wraps an h3 heading; anchors without an
// extractable absolute URL are dropped rather than reported as errors.
func Parse(body []byte) ([]Result, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &model.ParseError{Reason: "malformed result markup: " + err.Error()}
	}

	var results []Result
	seen := make(map[string]bool)

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if r, ok := resultFromAnchor(n); ok && !seen[r.URL] {
				seen[r.URL] = true
				results = append(results, r)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
	}
	walker(doc)

	return results, nil
}

// resultFromAnchor accepts an anchor only when it has a resolvable non-Google
// destination and a heading child to use as the title.
func resultFromAnchor(n *html.Node) (Result, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}
	if href == "" {
		return Result{}, false
	}

	target, ok := unwrapHref(href)
	if !ok {
		return Result{}, false
	}

	title := headingText(n)
	if title == "" {
		return Result{}, false
	}

	return Result{URL: target, Title: title}, true
}

// unwrapHref turns a result href into the destination URL. Google wraps
// destinations as /url?q=<target>; direct absolute links pass through.
// Relative links and Google-owned destinations are rejected.
func unwrapHref(href string) (string, bool) {
	if strings.HasPrefix(href, "/url?") {
		parsed, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		href = parsed.Query().Get("q")
		if href == "" {
			return "", false
		}
	}

	parsed, err := url.Parse(href)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if isNavigationHost(parsed.Host) {
		return "", false
	}

	parsed.Fragment = ""
	return parsed.String(), true
}

func isNavigationHost(host string) bool {
	host = strings.ToLower(host)
	for _, nav := range navigationHosts {
		if host == nav || strings.HasSuffix(host, "."+nav) {
			return true
		}
	}
	return false
}

// headingText returns the text of the first h3 descendant, falling back to
// the anchor's own text when no heading is present.
func headingText(anchor *html.Node) string {
	var h3 *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if h3 != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "h3" {
			h3 = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(anchor)

	if h3 != nil {
		return nodeText(h3)
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// AllowedSite reports whether rawURL belongs to one of the configured sites.
// With no site restriction configured, every URL is allowed. This is a
// predicate applied by the discovery pipeline, not a hard error.
func AllowedSite(rawURL string, sites []string) bool {
	if len(sites) == 0 {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, site := range sites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site == "" {
			continue
		}
		if host == site || strings.HasSuffix(host, "."+site) {
			return true
		}
	}
	return false
}
