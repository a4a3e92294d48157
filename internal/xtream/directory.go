package xtream

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mmcdole/xcview/internal/domain"
)

// Directory implements domain.CatalogSource over one Xtream account per
// profile. Clients are created lazily and reused.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]Account
	clients  map[string]*Client
	logger   *slog.Logger
}

// NewDirectory creates a directory from a profile -> account map
func NewDirectory(accounts map[string]Account, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	copied := make(map[string]Account, len(accounts))
	for name, acct := range accounts {
		copied[name] = acct
	}
	return &Directory{
		accounts: copied,
		clients:  make(map[string]*Client),
		logger:   logger,
	}
}

// Account returns the credentials configured for profile
func (d *Directory) Account(profile string) (Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[profile]
	if !ok {
		return Account{}, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, profile)
	}
	return acct, nil
}

// SetAccount adds or replaces the account of profile
func (d *Directory) SetAccount(profile string, acct Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[profile] = acct
	delete(d.clients, profile)
}

// Client returns the API client of profile
func (d *Directory) Client(profile string) (*Client, error) {
	d.mu.RLock()
	c, ok := d.clients[profile]
	d.mu.RUnlock()
	if ok {
		return c, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.clients[profile]; ok {
		return c, nil
	}
	acct, ok := d.accounts[profile]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, profile)
	}
	c = NewClient(acct, d.logger.With("profile", profile))
	d.clients[profile] = c
	return c, nil
}

// FetchCategories implements domain.CatalogSource
func (d *Directory) FetchCategories(ctx context.Context, profile string, t domain.MediaType) ([]domain.Category, error) {
	c, err := d.Client(profile)
	if err != nil {
		return nil, err
	}
	return c.GetCategories(ctx, t)
}

// FetchCategoryItems implements domain.CatalogSource. Items are listed with a
// single call and grouped by the provider's category order; items of unknown
// categories keep their place at the end.
func (d *Directory) FetchCategoryItems(ctx context.Context, profile string, t domain.MediaType) ([]domain.MediaItem, error) {
	c, err := d.Client(profile)
	if err != nil {
		return nil, err
	}
	items, err := c.GetStreams(ctx, t, "")
	if err != nil {
		return nil, err
	}

	categories, err := c.GetCategories(ctx, t)
	if err != nil {
		d.logger.Warn("failed to order items by category", "type", t, "error", err)
		return items, nil
	}
	return orderByCategory(items, categories), nil
}

// FetchMediaInfo implements domain.CatalogSource. Live channels carry no
// extended metadata.
func (d *Directory) FetchMediaInfo(ctx context.Context, profile string, t domain.MediaType, id string) (*domain.MediaInfo, error) {
	c, err := d.Client(profile)
	if err != nil {
		return nil, err
	}
	switch t {
	case domain.MediaTypeMovie:
		return c.GetVODInfo(ctx, id)
	case domain.MediaTypeSeries:
		return c.GetSeriesInfo(ctx, id)
	default:
		return nil, fmt.Errorf("%w: no media info for %s", domain.ErrNotFound, t)
	}
}

func orderByCategory(items []domain.MediaItem, categories []domain.Category) []domain.MediaItem {
	rank := make(map[string]int, len(categories))
	for i, cat := range categories {
		rank[cat.ID] = i
	}
	position := func(item domain.MediaItem) int {
		if r, ok := rank[item.CategoryID]; ok {
			return r
		}
		return len(categories)
	}

	ordered := make([]domain.MediaItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return position(ordered[i]) < position(ordered[j])
	})
	return ordered
}
