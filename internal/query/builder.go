package query

import (
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/kwhitfield/jobradar/internal/config"
)

const googleSearchURL = "https://www.google.com/search"

// SearchQuery is one (keyword, location) combination together with the
// constraint fragments that apply to every search in a run. It is ephemeral:
// built from config, consumed by the search executor, never persisted.
type SearchQuery struct {
	Keyword          string
	Location         string
	Sites            []string
	DateRange        string
	MinSalary        int
	MaxSalary        int
	ExperienceLevels []string
	MaxResults       int
}

// Terms renders the search expression: quoted keyword and location, a job
// marker term, optional experience-level alternation, optional salary range,
// and a site restriction when included_sites is configured.
func (q SearchQuery) Terms() string {
	var parts []string

	if len(q.Sites) > 0 {
		restrictions := make([]string, len(q.Sites))
		for i, s := range q.Sites {
			restrictions[i] = "site:" + s
		}
		parts = append(parts, "("+strings.Join(restrictions, " OR ")+")")
	}

	parts = append(parts, fmt.Sprintf("%q", q.Keyword), "job")

	if q.Location != "" {
		parts = append(parts, fmt.Sprintf("%q", q.Location))
	}

	if len(q.ExperienceLevels) > 0 {
		levels := make([]string, len(q.ExperienceLevels))
		for i, l := range q.ExperienceLevels {
			levels[i] = fmt.Sprintf("%q", l)
		}
		parts = append(parts, "("+strings.Join(levels, " OR ")+")")
	}

	// Google numeric-range operator; open-ended when only one bound is set.
	if q.MinSalary > 0 && q.MaxSalary > 0 {
		parts = append(parts, fmt.Sprintf("%d..%d", q.MinSalary, q.MaxSalary))
	} else if q.MinSalary > 0 {
		parts = append(parts, fmt.Sprintf("%d..", q.MinSalary))
	}

	return strings.Join(parts, " ")
}

// URL renders the full search request URL, including the result cap and the
// date-range filter (tbs=qdr:*).
func (q SearchQuery) URL() string {
	v := url.Values{}
	v.Set("q", q.Terms())
	if q.MaxResults > 0 {
		v.Set("num", fmt.Sprintf("%d", q.MaxResults))
	}
	if tbs := dateRangeParam(q.DateRange); tbs != "" {
		v.Set("tbs", tbs)
	}
	return googleSearchURL + "?" + v.Encode()
}

func dateRangeParam(dateRange string) string {
	switch dateRange {
	case config.DatePastDay:
		return "qdr:d"
	case config.DatePastWeek:
		return "qdr:w"
	case config.DatePastMonth:
		return "qdr:m"
	default:
		return ""
	}
}

// Builder produces the query sequence for one discovery run.
type Builder struct {
	cfg config.SearchConfig
}

// NewBuilder returns a builder over the given search configuration.
func NewBuilder(cfg config.SearchConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Count returns the number of queries Queries will yield.
func (b *Builder) Count() int {
	return len(b.cfg.Keywords) * len(b.cfg.Locations)
}

// Queries yields one SearchQuery per (keyword, location) combination.
// Keywords iterate in the outer loop and locations in the inner loop, so the
// order is deterministic and a run can be resumed by position.
func (b *Builder) Queries() iter.Seq[SearchQuery] {
	return func(yield func(SearchQuery) bool) {
		for _, kw := range b.cfg.Keywords {
			for _, loc := range b.cfg.Locations {
				q := SearchQuery{
					Keyword:          kw,
					Location:         loc,
					Sites:            b.cfg.IncludedSites,
					DateRange:        b.cfg.DateRange,
					MinSalary:        b.cfg.MinSalary,
					MaxSalary:        b.cfg.MaxSalary,
					ExperienceLevels: b.cfg.ExperienceLevels,
					MaxResults:       b.cfg.ResultsPerSearch,
				}
				if !yield(q) {
					return
				}
			}
		}
	}
}
