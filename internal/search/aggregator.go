// Package search filters the cached catalog across media types and reveals
// matches incrementally.
package search

import (
	"strings"

	"github.com/mmcdole/xcview/internal/domain"
)

// Collections holds the item listings searched together
type Collections struct {
	Live   []domain.MediaItem
	Movie  []domain.MediaItem
	Series []domain.MediaItem
}

// Len returns the number of items across all collections
func (c Collections) Len() int {
	return len(c.Live) + len(c.Movie) + len(c.Series)
}

// All returns every item in Live, Movie, Series order
func (c Collections) All() []domain.MediaItem {
	all := make([]domain.MediaItem, 0, c.Len())
	all = append(all, c.Live...)
	all = append(all, c.Movie...)
	return append(all, c.Series...)
}

// Filter returns the items matching query, ordered Live, then Movie, then
// Series, keeping source order within each collection. The query is trimmed
// and matched case-insensitively as a substring; an empty query matches
// everything. Live channels and movies match on name, series also match on
// cast, director, genre, TMDb id and plot.
func Filter(c Collections, query string) []domain.MediaItem {
	q := strings.ToLower(strings.TrimSpace(query))

	results := make([]domain.MediaItem, 0)
	for _, item := range c.Live {
		if contains(item.Name, q) {
			results = append(results, item)
		}
	}
	for _, item := range c.Movie {
		if contains(item.Name, q) {
			results = append(results, item)
		}
	}
	for _, item := range c.Series {
		if seriesMatches(item, q) {
			results = append(results, item)
		}
	}
	return results
}

func seriesMatches(item domain.MediaItem, q string) bool {
	for _, field := range []string{item.Name, item.Cast, item.Director, item.Genre, item.TMDBID, item.Plot} {
		if contains(field, q) {
			return true
		}
	}
	return false
}

// contains reports whether s contains the lowercased query q
func contains(s, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), q)
}
