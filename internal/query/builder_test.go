package query

import (
	"net/url"
	"strings"
	"testing"

	"github.com/kwhitfield/jobradar/internal/config"
)

func TestBuilder_CombinationOrder(t *testing.T) {
	b := NewBuilder(config.SearchConfig{
		Keywords:  []string{"data engineer", "platform engineer"},
		Locations: []string{"Remote", "Denver, CO"},
	})

	if got := b.Count(); got != 4 {
		t.Fatalf("Count() = %d, want 4", got)
	}

	var got [][2]string
	for q := range b.Queries() {
		got = append(got, [2]string{q.Keyword, q.Location})
	}
	want := [][2]string{
		{"data engineer", "Remote"},
		{"data engineer", "Denver, CO"},
		{"platform engineer", "Remote"},
		{"platform engineer", "Denver, CO"},
	}
	if len(got) != len(want) {
		t.Fatalf("yielded %d queries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBuilder_EarlyStop(t *testing.T) {
	b := NewBuilder(config.SearchConfig{
		Keywords:  []string{"sre"},
		Locations: []string{"Remote", "NYC", "Austin"},
	})

	n := 0
	for range b.Queries() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("consumed %d queries, want 2", n)
	}
}

func TestTerms_QuotesKeywordAndLocation(t *testing.T) {
	q := SearchQuery{Keyword: "data engineer", Location: "Remote"}
	got := q.Terms()
	if got != `"data engineer" job "Remote"` {
		t.Errorf("Terms() = %q", got)
	}
}

func TestTerms_SiteRestriction(t *testing.T) {
	q := SearchQuery{
		Keyword:  "sre",
		Location: "Remote",
		Sites:    []string{"boards.greenhouse.io", "jobs.lever.co"},
	}
	got := q.Terms()
	if !strings.HasPrefix(got, "(site:boards.greenhouse.io OR site:jobs.lever.co) ") {
		t.Errorf("Terms() = %q, want site alternation first", got)
	}
}

func TestTerms_ExperienceAlternation(t *testing.T) {
	q := SearchQuery{
		Keyword:          "sre",
		ExperienceLevels: []string{"senior", "staff"},
	}
	if got := q.Terms(); !strings.Contains(got, `("senior" OR "staff")`) {
		t.Errorf("Terms() = %q", got)
	}
}

func TestTerms_SalaryRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     string
	}{
		{"bounded", 150000, 200000, "150000..200000"},
		{"open ended", 150000, 0, "150000.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := SearchQuery{Keyword: "sre", MinSalary: tt.min, MaxSalary: tt.max}
			if got := q.Terms(); !strings.HasSuffix(got, tt.want) {
				t.Errorf("Terms() = %q, want suffix %q", got, tt.want)
			}
		})
	}
}

func TestTerms_NoSalaryWhenUnset(t *testing.T) {
	q := SearchQuery{Keyword: "sre"}
	if got := q.Terms(); strings.Contains(got, "..") {
		t.Errorf("Terms() = %q, unexpected salary range", got)
	}
}

func TestURL_Params(t *testing.T) {
	q := SearchQuery{
		Keyword:    "data engineer",
		Location:   "Remote",
		DateRange:  config.DatePastWeek,
		MaxResults: 30,
	}

	u, err := url.Parse(q.URL())
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	if u.Host != "www.google.com" || u.Path != "/search" {
		t.Errorf("URL = %s", u)
	}
	v := u.Query()
	if v.Get("q") != q.Terms() {
		t.Errorf("q param = %q, want %q", v.Get("q"), q.Terms())
	}
	if v.Get("num") != "30" {
		t.Errorf("num param = %q, want 30", v.Get("num"))
	}
	if v.Get("tbs") != "qdr:w" {
		t.Errorf("tbs param = %q, want qdr:w", v.Get("tbs"))
	}
}

func TestURL_DateRanges(t *testing.T) {
	tests := []struct {
		dateRange string
		want      string
	}{
		{config.DatePastDay, "qdr:d"},
		{config.DatePastWeek, "qdr:w"},
		{config.DatePastMonth, "qdr:m"},
		{config.DateAny, ""},
	}
	for _, tt := range tests {
		q := SearchQuery{Keyword: "sre", DateRange: tt.dateRange}
		u, err := url.Parse(q.URL())
		if err != nil {
			t.Fatalf("parse URL: %v", err)
		}
		if got := u.Query().Get("tbs"); got != tt.want {
			t.Errorf("date range %q: tbs = %q, want %q", tt.dateRange, got, tt.want)
		}
	}
}
