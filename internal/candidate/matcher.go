package candidate

import (
	"strings"

	"wattle/downloader/internal/domain"
)

// Matcher decides whether an activity item belongs to a filter's candidate sequence
type Matcher interface {
	Match(item domain.Item) bool
}

// NameMatcher matches items whose name contains the filter, ignoring case
type NameMatcher struct {
	Filter string
}

func (m NameMatcher) Match(item domain.Item) bool {
	return item.Name != "" && strings.Contains(strings.ToLower(item.Name), strings.ToLower(m.Filter))
}

// TypeMatcher matches items whose resource details mention Marker
type TypeMatcher struct {
	Marker string
}

func (m TypeMatcher) Match(item domain.Item) bool {
	return item.Details != "" && strings.Contains(item.Details, m.Marker)
}

// MatcherFor returns a TypeMatcher when filter names one of typeFilters
// (label -> details marker, compared case-insensitively) and a NameMatcher otherwise
func MatcherFor(filter string, typeFilters map[string]string) Matcher {
	for label, marker := range typeFilters {
		if strings.EqualFold(label, filter) {
			return TypeMatcher{Marker: marker}
		}
	}
	return NameMatcher{Filter: filter}
}
