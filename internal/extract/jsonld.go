package extract

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// jsonLDFields reads schema.org JobPosting metadata from ld+json script
// blocks. This is the most reliable source: ATS platforms emit it for search
// engines, so when it exists it wins over every textual heuristic.
func jsonLDFields(doc *html.Node) fields {
	var f fields

	var walker func(*html.Node)
	walker = func(n *html.Node) {
		if f.Title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && attrVal(n, "type") == "application/ld+json" {
			if n.FirstChild != nil {
				if posting, ok := findJobPosting([]byte(n.FirstChild.Data)); ok {
					f = posting
					return
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

// findJobPosting locates a JobPosting object in a decoded ld+json payload,
// which may be a single object, an array, or an @graph wrapper.
func findJobPosting(raw []byte) (fields, bool) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fields{}, false
	}

	var candidates []map[string]any
	switch v := decoded.(type) {
	case map[string]any:
		candidates = append(candidates, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]any); ok {
					candidates = append(candidates, m)
				}
			}
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				candidates = append(candidates, m)
			}
		}
	}

	for _, c := range candidates {
		if !isJobPosting(c["@type"]) {
			continue
		}
		return fields{
			Title:       jsonString(c["title"]),
			Company:     jsonString(path(c, "hiringOrganization", "name")),
			Location:    jobLocationText(c["jobLocation"]),
			Description: stripTags(jsonString(c["description"])),
			PostedDate:  jsonString(c["datePosted"]),
		}, true
	}
	return fields{}, false
}

func isJobPosting(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

// jobLocationText flattens a schema.org jobLocation (object or array) into a
// single display string: "Arlington, VA" style when an address is present.
func jobLocationText(loc any) string {
	switch v := loc.(type) {
	case []any:
		for _, item := range v {
			if s := jobLocationText(item); s != "" {
				return s
			}
		}
	case map[string]any:
		if addr, ok := v["address"].(map[string]any); ok {
			parts := []string{}
			for _, key := range []string{"addressLocality", "addressRegion"} {
				if s := jsonString(addr[key]); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
		return jsonString(v["name"])
	case string:
		return v
	}
	return ""
}

func path(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

func jsonString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
