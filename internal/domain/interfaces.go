package domain

import "context"

// CatalogSource is the remote catalog/metadata provider. The profile is passed
// explicitly so a fetch always uses the credentials it was started under.
type CatalogSource interface {
	// FetchCategories returns the categories of one media type in source order
	FetchCategories(ctx context.Context, profile string, t MediaType) ([]Category, error)

	// FetchCategoryItems returns every item of one media type, flattened across categories
	FetchCategoryItems(ctx context.Context, profile string, t MediaType) ([]MediaItem, error)

	// FetchMediaInfo returns detailed metadata, or ErrNotFound
	FetchMediaInfo(ctx context.Context, profile string, t MediaType, id string) (*MediaInfo, error)
}

// ProfileProvider resolves the active viewer profile
type ProfileProvider interface {
	Current() string
}

// ProfileStore is the profile-namespaced key-value persistence used by the
// bucket list and category visibility managers.
type ProfileStore interface {
	Get(profile, key string) ([]byte, error)
	Set(profile, key string, value []byte) error
	GetStrings(profile, key string) ([]string, error)
	SetStrings(profile, key string, values []string) error
}
