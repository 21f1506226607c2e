package extract

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/kwhitfield/jobradar/internal/model"
)

const maxDescriptionLen = 5000

// fields holds whatever one strategy managed to pull from the page. Empty
// strings mean "not found"; the caller merges strategies first-non-empty-wins.
type fields struct {
	Title       string
	Company     string
	Location    string
	Description string
	PostedDate  string
}

type strategy func(doc *html.Node) fields

// Ordered chain: structured metadata first, textual heuristics last.
var strategies = []strategy{
	jsonLDFields,
	metaTagFields,
	heuristicFields,
}

// Extract pulls structured job fields from a detail page. Missing optional
// fields are left empty; the record is rejected only when neither a title nor
// a company can be recovered, because a job without both is useless for
// matching and deduplication.
func Extract(pageURL string, body []byte, scrapedAt time.Time) (model.Job, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return model.Job{}, &model.ParseError{URL: pageURL, Reason: "malformed detail page: " + err.Error()}
	}

	var merged fields
	for _, s := range strategies {
		merged = merge(merged, s(doc))
	}

	if merged.Company == "" {
		merged.Company = companyFromURL(pageURL)
	}

	if merged.Title == "" && merged.Company == "" {
		return model.Job{}, &model.ParseError{URL: pageURL, Reason: "neither title nor company recoverable"}
	}

	if len(merged.Description) > maxDescriptionLen {
		merged.Description = merged.Description[:maxDescriptionLen]
	}

	return model.Job{
		URL:         pageURL,
		Title:       merged.Title,
		Company:     merged.Company,
		Location:    merged.Location,
		Description: merged.Description,
		PostedDate:  merged.PostedDate,
		ScrapedAt:   scrapedAt,
		Status:      model.StatusNew,
	}, nil
}

func merge(a, b fields) fields {
	if a.Title == "" {
		a.Title = b.Title
	}
	if a.Company == "" {
		a.Company = b.Company
	}
	if a.Location == "" {
		a.Location = b.Location
	}
	if a.Description == "" {
		a.Description = b.Description
	}
	if a.PostedDate == "" {
		a.PostedDate = b.PostedDate
	}
	return a
}

// companyFromURL derives a readable company name from the page host when no
// strategy found one, e.g. "jobs.baesystems.com" -> "Baesystems".
func companyFromURL(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	for _, prefix := range []string{"www.", "jobs.", "careers.", "apply.", "boards."} {
		host = strings.TrimPrefix(host, prefix)
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}
	name := labels[0]
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
