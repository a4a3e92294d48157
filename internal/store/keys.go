package store

import "github.com/mmcdole/xcview/internal/domain"

// Key names inside a profile namespace
const (
	// KeyBucket holds the profile's bucket list ("<type>-<id>" entries)
	KeyBucket = "bucket"

	// PrefixHiddenCategories is the prefix for hidden category sets (hiddenCategories:{type})
	PrefixHiddenCategories = "hiddenCategories:"
)

// Settings keys (global namespace)
const (
	// SettingActiveProfile holds the name of the active profile
	SettingActiveProfile = "name"
)

// HiddenCategoriesKey returns the key of the hidden category set for t
func HiddenCategoriesKey(t domain.MediaType) string {
	return PrefixHiddenCategories + string(t)
}
