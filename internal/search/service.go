package search

import (
	"context"
	"log/slog"

	"github.com/mmcdole/xcview/internal/domain"
)

// Catalog provides the cached item listings
type Catalog interface {
	RetrieveCategoryInfo(ctx context.Context, t domain.MediaType) []domain.MediaItem
}

// Service builds search pagers over the active profile's catalog
type Service struct {
	catalog   Catalog
	chunkSize int
	logger    *slog.Logger
}

// NewService creates a new search service
func NewService(catalog Catalog, chunkSize int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Service{catalog: catalog, chunkSize: chunkSize, logger: logger}
}

// Collections loads the three listings, Live first, then Movie, then Series
func (s *Service) Collections(ctx context.Context) Collections {
	c := Collections{
		Live:   s.catalog.RetrieveCategoryInfo(ctx, domain.MediaTypeLive),
		Movie:  s.catalog.RetrieveCategoryInfo(ctx, domain.MediaTypeMovie),
		Series: s.catalog.RetrieveCategoryInfo(ctx, domain.MediaTypeSeries),
	}
	s.logger.Debug("loaded search collections",
		"live", len(c.Live), "movie", len(c.Movie), "series", len(c.Series))
	return c
}

// Load returns a pager over the catalog with an empty query
func (s *Service) Load(ctx context.Context) *Pager {
	return NewPager(s.Collections(ctx), s.chunkSize)
}
