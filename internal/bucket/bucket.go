// Package bucket manages the per-profile favorites list.
package bucket

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mmcdole/xcview/internal/domain"
	"github.com/mmcdole/xcview/internal/store"
)

// Manager toggles items in and out of a profile's bucket list. The list is
// stored as "<type>-<id>" keys in insertion order.
type Manager struct {
	store  domain.ProfileStore
	logger *slog.Logger
}

// NewManager creates a bucket list manager
func NewManager(s domain.ProfileStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: s, logger: logger}
}

// Keys returns the bucket list of profile. A read failure is logged and
// treated as an empty list.
func (m *Manager) Keys(profile string) []string {
	keys, err := m.store.GetStrings(profile, store.KeyBucket)
	if err != nil {
		m.logger.Warn("failed to read bucket list", "profile", profile, "error", err)
		return []string{}
	}
	return keys
}

// Contains reports whether the item is in profile's bucket list
func (m *Manager) Contains(profile string, t domain.MediaType, id string) bool {
	return slices.Contains(m.Keys(profile), domain.BucketKey(t, id))
}

// Toggle adds the item when absent and removes it when present, then writes
// the list back. It returns whether the item is now in the list. A write
// failure is returned and the stored list is left unchanged.
func (m *Manager) Toggle(profile string, t domain.MediaType, id string) (bool, error) {
	if !t.Valid() || id == "" {
		return false, fmt.Errorf("%w: bucket item %q/%q", domain.ErrInvalidInput, t, id)
	}
	key := domain.BucketKey(t, id)
	keys := m.Keys(profile)

	added := false
	if i := slices.Index(keys, key); i >= 0 {
		keys = slices.Delete(keys, i, i+1)
	} else {
		keys = append(keys, key)
		added = true
	}

	if err := m.store.SetStrings(profile, store.KeyBucket, keys); err != nil {
		m.logger.Error("failed to save bucket list", "profile", profile, "key", key, "error", err)
		return !added, err
	}
	m.logger.Debug("toggled bucket item", "profile", profile, "key", key, "added", added)
	return added, nil
}

// Resolve maps bucket keys to catalog items in list order. Keys whose item
// is not in the given listings are skipped.
func Resolve(keys []string, listings ...[]domain.MediaItem) []domain.MediaItem {
	byKey := make(map[string]domain.MediaItem)
	for _, items := range listings {
		for _, item := range items {
			byKey[item.Key()] = item
		}
	}

	resolved := make([]domain.MediaItem, 0, len(keys))
	for _, key := range keys {
		if item, ok := byKey[key]; ok {
			resolved = append(resolved, item)
		}
	}
	return resolved
}
