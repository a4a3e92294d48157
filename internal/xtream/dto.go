package xtream

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// flexString decodes a JSON string, number, bool or null into a string.
// Providers are inconsistent about quoting ids and ratings.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*f = flexString(data)
	case data[0] == '[' || data[0] == '{':
		// Some panels send [] for missing scalars
		*f = ""
	default:
		*f = flexString(data)
	}
	return nil
}

func (f flexString) String() string { return string(f) }

// Int returns the value as an int, or 0 when it is not numeric
func (f flexString) Int() int {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0
	}
	return n
}

// flexList decodes either a single string or a list of strings
type flexList []string

func (f *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}
	if data[0] == '[' {
		var list []flexString
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s != "" {
				out = append(out, string(s))
			}
		}
		*f = out
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = nil
	} else {
		*f = flexList{string(s)}
	}
	return nil
}

// First returns the first entry or ""
func (f flexList) First() string {
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// isObject reports whether raw holds a JSON object
func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// AuthResponse is the player_api.php response without an action
type AuthResponse struct {
	UserInfo   UserInfo   `json:"user_info"`
	ServerInfo ServerInfo `json:"server_info"`
}

// UserInfo describes the account behind a set of credentials
type UserInfo struct {
	Username       string     `json:"username"`
	Auth           flexString `json:"auth"`
	Status         string     `json:"status"`
	ExpDate        flexString `json:"exp_date"`
	IsTrial        flexString `json:"is_trial"`
	ActiveCons     flexString `json:"active_cons"`
	MaxConnections flexString `json:"max_connections"`
	AllowedFormats []string   `json:"allowed_output_formats"`
}

// ServerInfo describes the provider endpoint
type ServerInfo struct {
	URL            string     `json:"url"`
	Port           flexString `json:"port"`
	ServerProtocol string     `json:"server_protocol"`
	Timezone       string     `json:"timezone"`
}

// categoryDTO is an entry of get_*_categories
type categoryDTO struct {
	CategoryID   flexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     flexString `json:"parent_id"`
}

// streamDTO is an entry of get_live_streams and get_vod_streams
type streamDTO struct {
	Num                flexString `json:"num"`
	Name               string     `json:"name"`
	StreamType         string     `json:"stream_type"`
	StreamID           flexString `json:"stream_id"`
	StreamIcon         string     `json:"stream_icon"`
	CategoryID         flexString `json:"category_id"`
	Added              flexString `json:"added"`
	Rating             flexString `json:"rating"`
	ContainerExtension string     `json:"container_extension"`
}

// seriesDTO is an entry of get_series
type seriesDTO struct {
	Num         flexString `json:"num"`
	Name        string     `json:"name"`
	SeriesID    flexString `json:"series_id"`
	Cover       string     `json:"cover"`
	Plot        string     `json:"plot"`
	Cast        string     `json:"cast"`
	Director    string     `json:"director"`
	Genre       string     `json:"genre"`
	ReleaseDate string     `json:"releaseDate"`
	Rating      flexString `json:"rating"`
	CategoryID  flexString `json:"category_id"`
	TMDB        flexString `json:"tmdb"`
	LastUpdate  flexString `json:"last_modified"`
}

// vodInfoResponse is the get_vod_info response. Info is an object for known
// ids and an empty list for unknown ones.
type vodInfoResponse struct {
	Info      json.RawMessage `json:"info"`
	MovieData json.RawMessage `json:"movie_data"`
}

type vodInfoDTO struct {
	TMDBID       flexString `json:"tmdb_id"`
	Name         string     `json:"name"`
	Plot         string     `json:"plot"`
	Cast         string     `json:"cast"`
	Director     string     `json:"director"`
	Genre        string     `json:"genre"`
	ReleaseDate  string     `json:"releasedate"`
	ReleaseDate2 string     `json:"release_date"`
	Duration     string     `json:"duration"`
	Rating       flexString `json:"rating"`
	MovieImage   string     `json:"movie_image"`
	CoverBig     string     `json:"cover_big"`
	Backdrop     flexList   `json:"backdrop_path"`
}

type movieDataDTO struct {
	StreamID           flexString `json:"stream_id"`
	Name               string     `json:"name"`
	ContainerExtension string     `json:"container_extension"`
}

// seriesInfoResponse is the get_series_info response. Episodes is keyed by
// season number on most panels and a list of lists on a few.
type seriesInfoResponse struct {
	Info     json.RawMessage `json:"info"`
	Episodes json.RawMessage `json:"episodes"`
}

type seriesInfoDTO struct {
	Name        string     `json:"name"`
	Cover       string     `json:"cover"`
	Plot        string     `json:"plot"`
	Cast        string     `json:"cast"`
	Director    string     `json:"director"`
	Genre       string     `json:"genre"`
	ReleaseDate string     `json:"releaseDate"`
	Rating      flexString `json:"rating"`
	Backdrop    flexList   `json:"backdrop_path"`
	TMDB        flexString `json:"tmdb"`
	RunTime     flexString `json:"episode_run_time"`
}

type episodeDTO struct {
	ID                 flexString      `json:"id"`
	EpisodeNum         flexString      `json:"episode_num"`
	Title              string          `json:"title"`
	ContainerExtension string          `json:"container_extension"`
	Season             flexString      `json:"season"`
	Info               json.RawMessage `json:"info"`
}

type episodeInfoDTO struct {
	Duration   string `json:"duration"`
	MovieImage string `json:"movie_image"`
}
