package serp

import (
	"strings"
	"testing"
)

const samplePage = `<html><body>
<div id="search">
  <div class="g">
    <a href="/url?q=https://jobs.acme.com/careers/12345&sa=U"><h3>Data Engineer - Acme Corp</h3></a>
  </div>
  <div class="g">
    <a href="https://careers.initech.com/openings/architect"><h3>Enterprise <em>Architect</em></h3></a>
  </div>
  <div class="g">
    <a href="/url?q=https://jobs.acme.com/careers/12345&sa=U"><h3>Data Engineer - Acme Corp (duplicate)</h3></a>
  </div>
  <a href="/search?q=next+page">Next</a>
  <a href="https://accounts.google.com/signin"><h3>Sign in</h3></a>
  <a href="https://maps.gstatic.com/x"><h3>Maps</h3></a>
  <a href="https://jobs.acme.com/no-heading">plain link</a>
</div>
</body></html>`

func TestParse_ExtractsResultAnchors(t *testing.T) {
	results, err := Parse([]byte(samplePage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}

	if results[0].URL != "https://jobs.acme.com/careers/12345" {
		t.Errorf("unexpected first URL: %s", results[0].URL)
	}
	if results[0].Title != "Data Engineer - Acme Corp" {
		t.Errorf("unexpected first title: %q", results[0].Title)
	}

	// Nested markup inside the heading is flattened to text.
	if results[1].Title != "Enterprise Architect" {
		t.Errorf("unexpected second title: %q", results[1].Title)
	}
}

func TestParse_ToleratesMalformedMarkup(t *testing.T) {
	// Unclosed tags and stray anchors must not fail the whole page.
	mangled := `<div><a href="/url?q=https://jobs.acme.com/1"><h3>Role One<div><a href=""><h3></h3></a>`
	results, err := Parse([]byte(mangled))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result from mangled markup, got %d", len(results))
	}
	if !strings.HasPrefix(results[0].Title, "Role One") {
		t.Errorf("unexpected title: %q", results[0].Title)
	}
}

func TestParse_EmptyPayload(t *testing.T) {
	results, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestAllowedSite(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		sites []string
		want  bool
	}{
		{
			name:  "no restriction allows everything",
			url:   "https://anything.example.com/job/1",
			sites: nil,
			want:  true,
		},
		{
			name:  "exact host match",
			url:   "https://jobs.acme.com/careers/1",
			sites: []string{"jobs.acme.com"},
			want:  true,
		},
		{
			name:  "subdomain of configured site",
			url:   "https://www.jobs.acme.com/careers/1",
			sites: []string{"jobs.acme.com"},
			want:  true,
		},
		{
			name:  "foreign domain rejected",
			url:   "https://jobs.other.com/careers/1",
			sites: []string{"jobs.acme.com", "careers.initech.com"},
			want:  false,
		},
		{
			name:  "unparseable url rejected under restriction",
			url:   "::not-a-url",
			sites: []string{"jobs.acme.com"},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedSite(tt.url, tt.sites); got != tt.want {
				t.Errorf("AllowedSite(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
