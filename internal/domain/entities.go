package domain

import (
	"fmt"
	"strings"
)

// MediaType distinguishes the three catalog collections
type MediaType string

const (
	MediaTypeLive   MediaType = "live"
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// MediaTypes lists every media type in search order
var MediaTypes = []MediaType{MediaTypeLive, MediaTypeMovie, MediaTypeSeries}

// ParseMediaType converts a user-supplied string to a MediaType
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "tv":
		return MediaTypeLive, nil
	case "movie", "movies", "vod":
		return MediaTypeMovie, nil
	case "series", "show", "shows":
		return MediaTypeSeries, nil
	default:
		return "", fmt.Errorf("%w: unknown media type %q", ErrInvalidInput, s)
	}
}

// String returns the wire name of the media type
func (t MediaType) String() string { return string(t) }

// Valid reports whether t is one of the known media types
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeLive, MediaTypeMovie, MediaTypeSeries:
		return true
	default:
		return false
	}
}

// Category is a named grouping of media items within one media type.
// Name usually starts with a country flag token ("US News", "🇫🇷 Cinema").
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// Flag returns the display flag of the category name
func (c Category) Flag() string {
	flag, _ := SplitCategoryName(c.Name)
	return flag
}

// Label returns the category name without its flag token
func (c Category) Label() string {
	_, label := SplitCategoryName(c.Name)
	return label
}

// MediaItem is a single entry of a category listing. Type selects which
// detail schema and URL rule applies; series-only fields stay empty for
// live channels and movies.
type MediaItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StreamIcon string    `json:"stream_icon"`
	Type       MediaType `json:"type"`
	CategoryID string    `json:"category_id,omitempty"`
	Extension  string    `json:"extension,omitempty"` // container extension (movies)
	Added      int64     `json:"added,omitempty"`     // unix seconds
	Rating     string    `json:"rating,omitempty"`

	// Series listing metadata (searchable)
	Plot        string `json:"plot,omitempty"`
	Cast        string `json:"cast,omitempty"`
	Director    string `json:"director,omitempty"`
	Genre       string `json:"genre,omitempty"`
	TMDBID      string `json:"tmdb_id,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// Key returns the composite "<type>-<id>" key of the item
func (m MediaItem) Key() string {
	return BucketKey(m.Type, m.ID)
}

// Episode is one playable entry of a series
type Episode struct {
	Season     int    `json:"season"`
	Episode    int    `json:"episode"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	Extension  string `json:"extension"`
	Duration   string `json:"duration,omitempty"`
	Background string `json:"background,omitempty"`
}

// Code returns the formatted episode code (e.g., "S01E05")
func (e Episode) Code() string {
	return fmt.Sprintf("S%02dE%02d", e.Season, e.Episode)
}

// MediaInfo is the extended metadata of a movie or series
type MediaInfo struct {
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	Name        string    `json:"name"`
	Plot        string    `json:"plot,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Cast        string    `json:"cast,omitempty"`
	Director    string    `json:"director,omitempty"`
	Rating      string    `json:"rating,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Background  string    `json:"background,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	TMDBID      string    `json:"tmdb_id,omitempty"`
	Extension   string    `json:"extension,omitempty"` // movies only

	// Series only
	Episodes []Episode `json:"episodes,omitempty"`
	Seasons  []int     `json:"seasons,omitempty"`
}

// ReleaseYear returns the year part of ReleaseDate ("2019-04-02" -> "2019")
func (m *MediaInfo) ReleaseYear() string {
	year, _, _ := strings.Cut(m.ReleaseDate, "-")
	return year
}

// EpisodesInSeason returns the episodes of one season in source order
func (m *MediaInfo) EpisodesInSeason(season int) []Episode {
	var episodes []Episode
	for _, ep := range m.Episodes {
		if ep.Season == season {
			episodes = append(episodes, ep)
		}
	}
	return episodes
}

// Artwork returns the background image, falling back to the cover
func (m *MediaInfo) Artwork() string {
	if m.Background != "" {
		return m.Background
	}
	return m.Cover
}

// BucketKey builds the composite key stored in a bucket list
func BucketKey(t MediaType, id string) string {
	return string(t) + "-" + id
}

// ParseBucketKey splits a composite bucket key back into type and id
func ParseBucketKey(key string) (MediaType, string, bool) {
	typ, id, ok := strings.Cut(key, "-")
	if !ok || id == "" {
		return "", "", false
	}
	t := MediaType(typ)
	if !t.Valid() {
		return "", "", false
	}
	return t, id, true
}
