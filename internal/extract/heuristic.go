package extract

import (
	stdhtml "html"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// metaTagFields reads OpenGraph metadata. Less structured than JSON-LD but
// still authored rather than scraped.
func metaTagFields(doc *html.Node) fields {
	var f fields

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			content := strings.TrimSpace(attrVal(n, "content"))
			if content != "" {
				switch attrVal(n, "property") {
				case "og:title":
					if f.Title == "" {
						f.Title = content
					}
				case "og:site_name":
					if f.Company == "" {
						f.Company = content
					}
				case "og:description":
					if f.Description == "" {
						f.Description = content
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
	}
	walker(doc)

	return f
}

var (
	locationClassRe = regexp.MustCompile(`(?i)\blocation\b`)
	postedDateRe    = regexp.MustCompile(`(?i)posted(?:\s+on)?:?\s+([A-Za-z0-9][A-Za-z0-9 ,/.-]{2,40})`)
)

// heuristicFields is the last-resort textual scan: first h1 as title, any
// element whose class or id mentions "location" as location, article/main
// body text as description, and a "Posted ..." phrase as the posted date.
func heuristicFields(doc *html.Node) fields {
	var f fields

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "h1" && f.Title == "":
				f.Title = elementText(n)
			case n.Data == "title" && f.Title == "" && n.FirstChild != nil:
				f.Title = strings.TrimSpace(n.FirstChild.Data)
			case (n.Data == "article" || n.Data == "main") && f.Description == "":
				f.Description = elementText(n)
			default:
				if f.Location == "" && hasLocationMarker(n) {
					if text := elementText(n); text != "" && len(text) <= 120 {
						f.Location = text
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walker(c)
		}
	}
	walker(doc)

	if f.PostedDate == "" {
		haystack := f.Description
		if haystack == "" {
			haystack = elementText(doc)
		}
		if m := postedDateRe.FindStringSubmatch(haystack); m != nil {
			f.PostedDate = strings.TrimSpace(m[1])
		}
	}

	return f
}

func hasLocationMarker(n *html.Node) bool {
	return locationClassRe.MatchString(attrVal(n, "class")) ||
		locationClassRe.MatchString(attrVal(n, "id")) ||
		locationClassRe.MatchString(attrVal(n, "data-automation-id"))
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// elementText flattens an element's text content, skipping script and style
// bodies, and collapses whitespace.
func elementText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// stripTags converts an HTML or HTML-encoded fragment to plain text. JSON-LD
// descriptions are frequently double-encoded; unescaping first is a no-op on
// already-plain text.
func stripTags(content string) string {
	unescaped := stdhtml.UnescapeString(content)
	plain := htmlTagRe.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}
