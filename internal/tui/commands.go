package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/service"
)

// Command factories for async operations

// LoadVideosCmd loads one page of the media listing
func LoadVideosCmd(svc *service.LibraryService, timeout time.Duration, seq, limit, offset int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		videos, err := svc.ListVideos(ctx, limit, offset)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading videos", Tab: TabVideos, Seq: seq}
		}
		return VideosLoadedMsg{Seq: seq, Offset: offset, Videos: videos}
	}
}

// SearchCmd runs a server-side search
func SearchCmd(svc *service.SearchService, timeout time.Duration, seq int, query string, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		results, err := svc.Search(ctx, query, limit)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching", Tab: TabSearch, Seq: seq}
		}
		return SearchResultsMsg{Seq: seq, Query: query, Results: results}
	}
}

// LoadPlaylistsCmd loads all playlists
func LoadPlaylistsCmd(svc *service.PlaylistService, timeout time.Duration, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		playlists, err := svc.GetPlaylists(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlists", Tab: TabPlaylists, Seq: seq}
		}
		return PlaylistsLoadedMsg{Seq: seq, Playlists: playlists}
	}
}

// LoadPlaylistCmd loads one playlist with its media
func LoadPlaylistCmd(svc *service.PlaylistService, timeout time.Duration, seq int, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		playlist, err := svc.GetPlaylist(ctx, token)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading playlist", Tab: TabPlaylists, Seq: seq}
		}
		return PlaylistLoadedMsg{Seq: seq, Playlist: playlist}
	}
}

// LoadVideoCmd fetches a video's detail, which also records it in the watch history
func LoadVideoCmd(svc *service.LibraryService, timeout time.Duration, seq int, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		video, err := svc.GetVideo(ctx, token)
		if err != nil {
			return VideoFailedMsg{Seq: seq, Err: err}
		}
		return VideoLoadedMsg{Seq: seq, Video: video}
	}
}

// PlayCmd launches the player for video
func PlayCmd(svc *service.PlaybackService, video domain.Video) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Play(video); err != nil {
			return ErrMsg{Err: err, Context: "starting playback", Tab: -1}
		}
		return PlaybackStartedMsg{Video: video}
	}
}

// RefreshUserCmd refetches the session user for the active connection
func RefreshUserCmd(svc *service.SessionService, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		user, err := svc.RefreshUser(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "refreshing user", Tab: -1}
		}
		return UserRefreshedMsg{User: user}
	}
}
