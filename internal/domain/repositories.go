package domain

import (
	"context"
)

// VideoRepository provides access to the server's media listing
type VideoRepository interface {
	// ListVideos returns a page of videos, most recent first
	ListVideos(ctx context.Context, limit, offset int) ([]Video, error)

	// VideoPage returns a page of videos plus the server-reported total.
	// A negative total means the server did not report one.
	VideoPage(ctx context.Context, offset, limit int) ([]Video, int, error)

	// GetVideo returns a single video by friendly token
	GetVideo(ctx context.Context, token string) (*Video, error)

	// ResolveStreamURL returns an absolute playback URL for a video
	ResolveStreamURL(video Video) string
}

// SearchRepository provides server-side search
type SearchRepository interface {
	SearchVideos(ctx context.Context, query string, limit int) ([]Video, error)
}

// PlaylistRepository provides read access to playlists
type PlaylistRepository interface {
	ListPlaylists(ctx context.Context) ([]Playlist, error)
	GetPlaylist(ctx context.Context, token string) (*Playlist, error)
}

// IdentityRepository resolves the user behind the current bearer token
type IdentityRepository interface {
	GetCurrentUser(ctx context.Context) (*User, error)
}

// MediaSource combines every repository a MediaCMS client implements
type MediaSource interface {
	VideoRepository
	SearchRepository
	PlaylistRepository
	IdentityRepository
}

// SourceFactory builds a MediaSource bound to one connection's URL and token
type SourceFactory func(conn Connection) MediaSource
