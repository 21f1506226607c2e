package filter

import "strings"

// remoteMarkers always include a job regardless of the configured targets.
var remoteMarkers = []string{
	"remote",
	"work from home",
	"wfh",
	"telecommute",
	"telework",
	"anywhere",
}

// synonyms maps a canonical place name to the spellings and abbreviations job
// boards actually use for it. Matching a synonym counts as matching the
// configured target.
var synonyms = map[string][]string{
	"washington dc":        {"washington", "dc", "d.c.", "district of columbia"},
	"district of columbia": {"washington dc", "washington", "dc", "d.c."},
	"dc":                   {"washington dc", "washington", "d.c.", "district of columbia"},
	"virginia":             {"va", "arlington", "alexandria", "fairfax", "reston", "mclean", "tysons", "herndon", "vienna", "falls church"},
	"maryland":             {"md", "bethesda", "rockville", "silver spring", "gaithersburg", "college park", "annapolis", "laurel"},
	"new york":             {"ny", "nyc", "new york city", "manhattan", "brooklyn"},
	"california":           {"ca", "san francisco", "sf", "bay area", "los angeles", "la", "san jose", "sunnyvale"},
	"san francisco":        {"sf", "bay area"},
	"texas":                {"tx", "austin", "dallas", "houston", "san antonio"},
	"united states":        {"us", "usa", "u.s.", "u.s.a."},
}

// LocationFilter decides whether an extracted job's location is worth keeping.
// The default is asymmetric on purpose: include on ambiguity, exclude only on
// a confident mismatch — dropping a real match is worse than keeping an
// irrelevant one a human can skip visually.
type LocationFilter struct {
	targets []string
}

// NewLocationFilter returns a filter for the configured target locations.
// A "remote" target is handled by the remote markers, not the synonym table.
func NewLocationFilter(targets []string) *LocationFilter {
	normalized := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	return &LocationFilter{targets: normalized}
}

// Match reports whether a job with the given location string should be kept.
// Precedence: remote markers include; target or synonym substring match
// includes; an empty location includes (the site failed to tag it, not us);
// anything else is a confident mismatch and is excluded.
func (f *LocationFilter) Match(location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" || !hasWords(loc) {
		return true
	}

	for _, marker := range remoteMarkers {
		if strings.Contains(loc, marker) {
			return true
		}
	}

	for _, target := range f.targets {
		if target == "remote" {
			// Already covered by the markers above.
			continue
		}
		if containsPlace(loc, target) {
			return true
		}
		for _, syn := range synonyms[target] {
			if containsPlace(loc, syn) {
				return true
			}
		}
	}

	return false
}

// hasWords reports whether the string contains any letters at all. A location
// with no words is unparseable noise, and unparseable locations are included
// rather than silently dropped.
func hasWords(s string) bool {
	for _, r := range s {
		if 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' {
			return true
		}
	}
	return false
}

// containsPlace matches term against loc. Short terms ("dc", "va", "md")
// must appear as whole tokens so "Las Vegas" does not match "la"; longer
// place names match as plain substrings.
func containsPlace(loc, term string) bool {
	if len(term) > 3 {
		return strings.Contains(loc, term)
	}
	for _, tok := range strings.FieldsFunc(loc, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '.'
	}) {
		if tok == term || strings.TrimRight(tok, ".") == strings.TrimRight(term, ".") {
			return true
		}
	}
	return false
}
