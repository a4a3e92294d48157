// Package stream builds playback and reference links for catalog items.
package stream

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/xcview/internal/domain"
)

const (
	liveExtension  = "ts"
	tmdbBaseURL    = "https://www.themoviedb.org"
	maxTitleLength = 30
)

// Builder builds stream URLs for one account. It holds no state beyond the
// credentials, so identical input always yields identical output.
type Builder struct {
	BaseURL  string
	Username string
	Password string
}

// Build returns the playback URL of an item:
//
//	live:   <base>/live/<user>/<pass>/<id>.ts
//	movie:  <base>/movie/<user>/<pass>/<id>.<ext>
//	series: <base>/series/<user>/<pass>/<id>.<ext>
//
// Series ids are episode ids. An empty id, missing credentials, a missing
// movie/series extension or one that is not alphanumeric returns
// domain.ErrInvalidInput.
func (b Builder) Build(t domain.MediaType, id, ext string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	id = strings.TrimSpace(id)
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")

	switch {
	case base == "":
		return "", fmt.Errorf("%w: missing base url", domain.ErrInvalidInput)
	case b.Username == "" || b.Password == "":
		return "", fmt.Errorf("%w: missing credentials", domain.ErrInvalidInput)
	case id == "":
		return "", fmt.Errorf("%w: missing stream id", domain.ErrInvalidInput)
	}

	var segment string
	switch t {
	case domain.MediaTypeLive:
		segment = "live"
		if ext == "" {
			ext = liveExtension
		}
	case domain.MediaTypeMovie:
		segment = "movie"
	case domain.MediaTypeSeries:
		segment = "series"
	default:
		return "", fmt.Errorf("%w: media type %q", domain.ErrInvalidInput, t)
	}
	if ext == "" {
		return "", fmt.Errorf("%w: missing container extension", domain.ErrInvalidInput)
	}
	if !validExtension(ext) {
		return "", fmt.Errorf("%w: container extension %q", domain.ErrInvalidInput, ext)
	}

	return fmt.Sprintf("%s/%s/%s/%s/%s.%s",
		base, segment, url.PathEscape(b.Username), url.PathEscape(b.Password), url.PathEscape(id), ext), nil
}

// validExtension accepts ASCII letters and digits only
func validExtension(ext string) bool {
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// TMDbURL returns the themoviedb.org page of a movie or series, or "" when
// there is no id or the type has no TMDb page.
func TMDbURL(t domain.MediaType, tmdbID string) string {
	tmdbID = strings.TrimSpace(tmdbID)
	if tmdbID == "" || tmdbID == "0" {
		return ""
	}
	switch t {
	case domain.MediaTypeMovie:
		return tmdbBaseURL + "/movie/" + url.PathEscape(tmdbID)
	case domain.MediaTypeSeries:
		return tmdbBaseURL + "/tv/" + url.PathEscape(tmdbID)
	default:
		return ""
	}
}

// PlayerTitle shortens a title for the player overlay
func PlayerTitle(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= maxTitleLength {
		return title
	}
	return strings.TrimSpace(string(runes[:maxTitleLength])) + "..."
}
