package search

import "github.com/mmcdole/xcview/internal/domain"

// DefaultChunkSize is the number of results revealed per page
const DefaultChunkSize = 10

// Pager reveals the results of a query one chunk at a time.
// The revealed count never exceeds the number of results.
type Pager struct {
	collections Collections
	chunkSize   int
	query       string
	results     []domain.MediaItem
	revealed    int
}

// NewPager creates a pager over c. A chunkSize below one uses the default.
// The initial query is empty, so every item matches.
func NewPager(c Collections, chunkSize int) *Pager {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	p := &Pager{collections: c, chunkSize: chunkSize}
	p.SetQuery("")
	return p
}

// SetQuery refilters and resets the revealed count to one chunk
func (p *Pager) SetQuery(query string) {
	p.query = query
	p.results = Filter(p.collections, query)
	p.revealed = min(p.chunkSize, len(p.results))
}

// SetCollections replaces the searched items and reapplies the current query
func (p *Pager) SetCollections(c Collections) {
	p.collections = c
	p.SetQuery(p.query)
}

// LoadMore reveals one more chunk and returns the new revealed count
func (p *Pager) LoadMore() int {
	p.revealed = min(p.revealed+p.chunkSize, len(p.results))
	return p.revealed
}

// Visible returns the revealed results
func (p *Pager) Visible() []domain.MediaItem {
	return p.results[:p.revealed]
}

// HasMore reports whether results remain hidden
func (p *Pager) HasMore() bool {
	return p.revealed < len(p.results)
}

// Query returns the active query
func (p *Pager) Query() string { return p.query }

// Revealed returns the number of results currently revealed
func (p *Pager) Revealed() int { return p.revealed }

// Total returns the number of results matching the query
func (p *Pager) Total() int { return len(p.results) }
