package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/xcview/internal/domain"
)

// Suggest returns up to n items whose names fuzzily match query, best match
// first. It is meant for queries where Filter finds nothing, such as typos
// or diacritics ("amelie" matches "Amélie").
func Suggest(c Collections, query string, n int) []domain.MediaItem {
	query = strings.TrimSpace(query)
	if query == "" || n <= 0 {
		return nil
	}

	all := c.All()
	names := make([]string, len(all))
	for i, item := range all {
		names[i] = item.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	suggestions := make([]domain.MediaItem, 0, len(ranks))
	for _, r := range ranks {
		suggestions = append(suggestions, all[r.OriginalIndex])
	}
	return suggestions
}
