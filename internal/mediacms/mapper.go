package mediacms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

// UnknownTotal is reported when a list response carries no count.
const UnknownTotal = -1

// decodeList unwraps either list shape the server may return:
// a bare JSON array, or an object with "results" and "count".
// A response without a count reports UnknownTotal.
func decodeList[T any](body []byte) ([]T, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("empty list response")
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, fmt.Errorf("failed to parse list: %w", err)
		}
		return items, UnknownTotal, nil

	case '{':
		var env listEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, 0, fmt.Errorf("failed to parse paginated list: %w", err)
		}
		if len(env.Results) == 0 || bytes.Equal(env.Results, []byte("null")) {
			return nil, 0, errors.New("paginated response has no results field")
		}
		var items []T
		if err := json.Unmarshal(env.Results, &items); err != nil {
			return nil, 0, fmt.Errorf("failed to parse results: %w", err)
		}
		total := UnknownTotal
		if env.Count != nil {
			total = *env.Count
		}
		return items, total, nil

	default:
		return nil, 0, fmt.Errorf("unexpected list response starting with %q", trimmed[0])
	}
}

// MapVideos converts MediaCMS media entries to domain videos
func MapVideos(items []Media, serverURL string) []domain.Video {
	videos := make([]domain.Video, 0, len(items))
	for _, item := range items {
		videos = append(videos, MapVideo(item, serverURL))
	}
	return videos
}

// MapVideo converts a single media entry to a domain video
func MapVideo(item Media, serverURL string) domain.Video {
	return domain.Video{
		Token:            item.FriendlyToken,
		Title:            item.Title,
		Description:      item.Description,
		ThumbnailURL:     absoluteURL(serverURL, item.ThumbnailURL),
		URL:              item.URL,
		OriginalMediaURL: originalMediaURL(item.EncodingsInfo),
		Author:           firstNonEmpty(item.Author, item.AuthorName, item.User),
		Views:            item.Views,
		Duration:         time.Duration(item.Duration * float64(time.Second)),
		AddedAt:          parseTime(item.AddDate),
		EditedAt:         parseTime(item.EditDate),
		MediaType:        item.MediaType,
		State:            item.State,
	}
}

// MapUser converts a whoami response to a domain user
func MapUser(u User, serverURL string) *domain.User {
	return &domain.User{
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name,
		Description: u.Description,
		Thumbnail:   absoluteURL(serverURL, firstNonEmpty(u.Thumbnail, u.ThumbnailURL)),
	}
}

// MapPlaylists converts MediaCMS playlists to domain playlists
func MapPlaylists(items []Playlist, serverURL string) []domain.Playlist {
	playlists := make([]domain.Playlist, 0, len(items))
	for _, item := range items {
		playlists = append(playlists, MapPlaylist(item, serverURL))
	}
	return playlists
}

// MapPlaylist converts a single playlist, including its media when present
func MapPlaylist(p Playlist, serverURL string) domain.Playlist {
	pl := domain.Playlist{
		Token:       p.FriendlyToken,
		Title:       p.Title,
		Description: p.Description,
		MediaCount:  p.MediaCount,
		Thumbnail:   absoluteURL(serverURL, firstNonEmpty(p.Thumbnail, p.ThumbnailURL)),
	}
	if len(p.PlaylistMedia) > 0 {
		pl.Media = MapVideos(p.PlaylistMedia, serverURL)
		if pl.MediaCount == 0 {
			pl.MediaCount = len(pl.Media)
		}
	}
	return pl
}

// originalMediaURL extracts encodings_info.original_media_url.
// The field is an object on most servers but an empty array when a video has no encodings.
func originalMediaURL(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var info map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &info); err != nil {
		return ""
	}
	var u string
	if v, ok := info["original_media_url"]; ok {
		if err := json.Unmarshal(v, &u); err != nil {
			return ""
		}
	}
	return u
}

// absoluteURL joins server-relative paths ("/media/...") onto the base URL
func absoluteURL(serverURL, ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return serverURL + ref
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	// Naive timestamps without a zone
	if t, err := time.Parse("2006-01-02T15:04:05.999999", s); err == nil {
		return t
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
