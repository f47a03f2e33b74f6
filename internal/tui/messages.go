package tui

import (
	"github.com/mmcdole/reel/internal/domain"
)

// Every async result carries the sequence number of the request that
// produced it. Results whose Seq no longer matches the latest request for
// their tab (or the open detail pane) are dropped.

// ErrMsg represents a failed request
type ErrMsg struct {
	Err     error
	Context string
	Tab     Tab
	Seq     int
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// VideosLoadedMsg signals a page of the media listing arrived
type VideosLoadedMsg struct {
	Seq    int
	Offset int
	Videos []domain.Video
}

// SearchResultsMsg signals that search results are ready
type SearchResultsMsg struct {
	Seq     int
	Query   string
	Results []domain.Video
}

// PlaylistsLoadedMsg signals that playlists have been loaded
type PlaylistsLoadedMsg struct {
	Seq       int
	Playlists []domain.Playlist
}

// PlaylistLoadedMsg signals that a playlist's media has been loaded
type PlaylistLoadedMsg struct {
	Seq      int
	Playlist *domain.Playlist
}

// VideoLoadedMsg signals the detail pane's video arrived
type VideoLoadedMsg struct {
	Seq   int
	Video *domain.Video
}

// VideoFailedMsg signals the detail fetch failed; the pane offers a retry
type VideoFailedMsg struct {
	Seq int
	Err error
}

// PlaybackStartedMsg signals that the player was launched
type PlaybackStartedMsg struct {
	Video domain.Video
}

// UserRefreshedMsg signals the session user was refetched
type UserRefreshedMsg struct {
	User *domain.User
}
