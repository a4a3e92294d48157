package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/xcview/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	kindCategories = "categories"
	kindItems      = "items"
)

// entry is a cached listing and the profile it was fetched under
type entry[T any] struct {
	profile string
	values  []T
}

// Cache holds at most one category listing and one item listing per media
// type, each tagged with the profile it belongs to. A listing is reused only
// while the active profile matches; otherwise it is replaced by a new fetch.
type Cache struct {
	source   domain.CatalogSource
	profiles domain.ProfileProvider
	metrics  *Metrics
	logger   *slog.Logger

	group singleflight.Group

	mu         sync.RWMutex
	categories map[domain.MediaType]entry[domain.Category]
	items      map[domain.MediaType]entry[domain.MediaItem]
}

// NewCache creates a catalog cache. metrics may be nil.
func NewCache(source domain.CatalogSource, profiles domain.ProfileProvider, metrics *Metrics, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Cache{
		source:     source,
		profiles:   profiles,
		metrics:    metrics,
		logger:     logger,
		categories: make(map[domain.MediaType]entry[domain.Category]),
		items:      make(map[domain.MediaType]entry[domain.MediaItem]),
	}
}

// RetrieveCategories returns the categories of t for the active profile.
// Failures are logged and reported as an empty listing. The returned slice
// is a copy and may be modified by the caller.
func (c *Cache) RetrieveCategories(ctx context.Context, t domain.MediaType) []domain.Category {
	return retrieve(ctx, c, kindCategories, t, c.categories, c.source.FetchCategories)
}

// RetrieveCategoryInfo returns every item of t for the active profile.
// Failures are logged and reported as an empty listing.
func (c *Cache) RetrieveCategoryInfo(ctx context.Context, t domain.MediaType) []domain.MediaItem {
	return retrieve(ctx, c, kindItems, t, c.items, c.source.FetchCategoryItems)
}

type fetchFunc[T any] func(ctx context.Context, profile string, t domain.MediaType) ([]T, error)

func retrieve[T any](
	ctx context.Context,
	c *Cache,
	kind string,
	t domain.MediaType,
	entries map[domain.MediaType]entry[T],
	fetch fetchFunc[T],
) []T {
	profile := c.profiles.Current()

	c.mu.RLock()
	e, ok := entries[t]
	c.mu.RUnlock()
	if ok && e.profile == profile {
		c.metrics.Hits.WithLabelValues(kind, t.String()).Inc()
		return slices.Clone(e.values)
	}
	c.metrics.Misses.WithLabelValues(kind, t.String()).Inc()

	// Another profile's listing is dropped before refetching, so a failed
	// fetch never leaves it behind to be served later
	if ok {
		c.mu.Lock()
		if cur, still := entries[t]; still && cur.profile != profile {
			delete(entries, t)
		}
		c.mu.Unlock()
	}

	key := kind + "/" + profile + "/" + t.String()
	v, err, shared := c.group.Do(key, func() (any, error) {
		values, err := fetch(ctx, profile, t)
		if err != nil {
			c.metrics.Failures.WithLabelValues(kind, t.String()).Inc()
			return nil, err
		}
		if values == nil {
			values = []T{}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// A profile switch while the fetch was in flight makes the result stale
		if current := c.profiles.Current(); current != profile {
			c.metrics.Discarded.WithLabelValues(kind, t.String()).Inc()
			c.logger.Debug("discarding stale fetch", "kind", kind, "type", t, "profile", profile, "active", current)
			return []T{}, nil
		}
		entries[t] = entry[T]{profile: profile, values: values}
		return values, nil
	})
	if err != nil {
		c.logger.Error("failed to fetch "+kind, "type", t, "profile", profile, "error", err)
		return []T{}
	}
	if shared {
		c.logger.Debug("shared in-flight fetch", "kind", kind, "type", t)
	}
	return slices.Clone(v.([]T))
}

// Cached returns the cached categories and items of t for the active profile
// without fetching. ok is false when either listing is missing or stale.
func (c *Cache) Cached(t domain.MediaType) (categories []domain.Category, items []domain.MediaItem, ok bool) {
	profile := c.profiles.Current()

	c.mu.RLock()
	defer c.mu.RUnlock()
	ce, okCats := c.categories[t]
	ie, okItems := c.items[t]
	if !okCats || !okItems || ce.profile != profile || ie.profile != profile {
		return nil, nil, false
	}
	return slices.Clone(ce.values), slices.Clone(ie.values), true
}

// Invalidate drops both listings of t
func (c *Cache) Invalidate(t domain.MediaType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.categories, t)
	delete(c.items, t)
}

// InvalidateAll drops every cached listing
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.categories)
	clear(c.items)
}
