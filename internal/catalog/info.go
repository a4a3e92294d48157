package catalog

import (
	"context"
	"log/slog"

	"github.com/mmcdole/xcview/internal/domain"
)

// Resolver produces detailed metadata for a single item. Detail is never
// cached; the caller may hand in metadata it already holds.
type Resolver struct {
	source   domain.CatalogSource
	profiles domain.ProfileProvider
	logger   *slog.Logger
}

// NewResolver creates a media info resolver
func NewResolver(source domain.CatalogSource, profiles domain.ProfileProvider, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{source: source, profiles: profiles, logger: logger}
}

// Resolve returns provided unchanged when it is non-nil. Otherwise it fetches
// the detail for the active profile; any failure yields (nil, false).
// Series detail carries the distinct non-zero season numbers in episode order.
func (r *Resolver) Resolve(ctx context.Context, t domain.MediaType, id string, provided *domain.MediaInfo) (*domain.MediaInfo, bool) {
	if provided != nil {
		return provided, true
	}

	profile := r.profiles.Current()
	info, err := r.source.FetchMediaInfo(ctx, profile, t, id)
	if err != nil {
		r.logger.Error("failed to fetch media info", "type", t, "id", id, "profile", profile, "error", err)
		return nil, false
	}
	if info == nil {
		return nil, false
	}

	if t == domain.MediaTypeSeries {
		info.Seasons = Seasons(info.Episodes)
	}
	return info, true
}

// Seasons returns the distinct non-zero season numbers of episodes in first
// appearance order
func Seasons(episodes []domain.Episode) []int {
	seen := make(map[int]bool)
	seasons := []int{}
	for _, ep := range episodes {
		if ep.Season == 0 || seen[ep.Season] {
			continue
		}
		seen[ep.Season] = true
		seasons = append(seasons, ep.Season)
	}
	return seasons
}
