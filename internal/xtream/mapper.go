package xtream

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/mmcdole/xcview/internal/domain"
)

// mapCategories converts category DTOs to domain categories, keeping source order
func mapCategories(dtos []categoryDTO) []domain.Category {
	categories := make([]domain.Category, 0, len(dtos))
	for _, d := range dtos {
		if d.CategoryID == "" {
			continue
		}
		categories = append(categories, domain.Category{
			ID:       d.CategoryID.String(),
			Name:     d.CategoryName,
			ParentID: d.ParentID.String(),
		})
	}
	return categories
}

// mapStreams converts live or VOD stream DTOs to domain items
func mapStreams(dtos []streamDTO, t domain.MediaType) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(dtos))
	for _, d := range dtos {
		if d.StreamID == "" {
			continue
		}
		added, _ := strconv.ParseInt(d.Added.String(), 10, 64)
		items = append(items, domain.MediaItem{
			ID:         d.StreamID.String(),
			Name:       d.Name,
			StreamIcon: d.StreamIcon,
			Type:       t,
			CategoryID: d.CategoryID.String(),
			Extension:  d.ContainerExtension,
			Added:      added,
			Rating:     d.Rating.String(),
		})
	}
	return items
}

// mapSeries converts get_series DTOs to domain items
func mapSeries(dtos []seriesDTO) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(dtos))
	for _, d := range dtos {
		if d.SeriesID == "" {
			continue
		}
		added, _ := strconv.ParseInt(d.LastUpdate.String(), 10, 64)
		items = append(items, domain.MediaItem{
			ID:          d.SeriesID.String(),
			Name:        d.Name,
			StreamIcon:  d.Cover,
			Type:        domain.MediaTypeSeries,
			CategoryID:  d.CategoryID.String(),
			Added:       added,
			Rating:      d.Rating.String(),
			Plot:        d.Plot,
			Cast:        d.Cast,
			Director:    d.Director,
			Genre:       d.Genre,
			TMDBID:      d.TMDB.String(),
			ReleaseDate: d.ReleaseDate,
		})
	}
	return items
}

// mapVODInfo converts a get_vod_info response. Returns false when the
// provider answered with an empty info block.
func mapVODInfo(id string, resp vodInfoResponse) (*domain.MediaInfo, bool) {
	if !isObject(resp.Info) {
		return nil, false
	}
	var d vodInfoDTO
	if err := json.Unmarshal(resp.Info, &d); err != nil {
		return nil, false
	}

	info := &domain.MediaInfo{
		ID:          id,
		Type:        domain.MediaTypeMovie,
		Name:        d.Name,
		Plot:        d.Plot,
		Genre:       d.Genre,
		Cast:        d.Cast,
		Director:    d.Director,
		Rating:      d.Rating.String(),
		ReleaseDate: d.ReleaseDate,
		Duration:    d.Duration,
		Background:  d.Backdrop.First(),
		Cover:       d.MovieImage,
		TMDBID:      d.TMDBID.String(),
	}
	if isObject(resp.MovieData) {
		var md movieDataDTO
		if err := json.Unmarshal(resp.MovieData, &md); err == nil {
			info.Extension = md.ContainerExtension
			if info.Name == "" {
				info.Name = md.Name
			}
			if sid := md.StreamID.String(); sid != "" {
				info.ID = sid
			}
		}
	}
	if info.ReleaseDate == "" {
		info.ReleaseDate = d.ReleaseDate2
	}
	if info.Cover == "" {
		info.Cover = d.CoverBig
	}
	return info, true
}

// mapSeriesInfo converts a get_series_info response. Episodes are ordered by
// season number, then by source order within a season.
func mapSeriesInfo(id string, resp seriesInfoResponse) (*domain.MediaInfo, bool) {
	if !isObject(resp.Info) {
		return nil, false
	}
	var d seriesInfoDTO
	if err := json.Unmarshal(resp.Info, &d); err != nil {
		return nil, false
	}

	info := &domain.MediaInfo{
		ID:          id,
		Type:        domain.MediaTypeSeries,
		Name:        d.Name,
		Plot:        d.Plot,
		Genre:       d.Genre,
		Cast:        d.Cast,
		Director:    d.Director,
		Rating:      d.Rating.String(),
		ReleaseDate: d.ReleaseDate,
		Duration:    d.RunTime.String(),
		Background:  d.Backdrop.First(),
		Cover:       d.Cover,
		TMDBID:      d.TMDB.String(),
		Episodes:    mapEpisodes(resp.Episodes),
	}
	return info, true
}

func mapEpisodes(raw json.RawMessage) []domain.Episode {
	var groups [][]episodeDTO

	if isObject(raw) {
		bySeason := map[string][]episodeDTO{}
		if err := json.Unmarshal(raw, &bySeason); err != nil {
			return nil
		}
		keys := make([]string, 0, len(bySeason))
		for k := range bySeason {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.Atoi(keys[i])
			b, errB := strconv.Atoi(keys[j])
			if errA != nil || errB != nil {
				return keys[i] < keys[j]
			}
			return a < b
		})
		for _, k := range keys {
			group := bySeason[k]
			// Fill in missing season numbers from the map key
			for i := range group {
				if group[i].Season == "" {
					group[i].Season = flexString(k)
				}
			}
			groups = append(groups, group)
		}
	} else if err := json.Unmarshal(raw, &groups); err != nil {
		return nil
	}

	var episodes []domain.Episode
	for _, group := range groups {
		for _, d := range group {
			ep := domain.Episode{
				Season:    d.Season.Int(),
				Episode:   d.EpisodeNum.Int(),
				ID:        d.ID.String(),
				Title:     d.Title,
				Extension: d.ContainerExtension,
			}
			if isObject(d.Info) {
				var ei episodeInfoDTO
				if err := json.Unmarshal(d.Info, &ei); err == nil {
					ep.Duration = ei.Duration
					ep.Background = ei.MovieImage
				}
			}
			episodes = append(episodes, ep)
		}
	}
	return episodes
}
