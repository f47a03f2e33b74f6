package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

// PlaylistService provides read access to the active server's playlists
type PlaylistService struct {
	sources sourceResolver
	logger  *slog.Logger
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(sessions sessionStore, factory domain.SourceFactory, logger *slog.Logger) *PlaylistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistService{
		sources: sourceResolver{sessions: sessions, factory: factory},
		logger:  logger,
	}
}

// GetPlaylists returns all playlists
func (s *PlaylistService) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}
	playlists, err := src.ListPlaylists(ctx)
	if err != nil {
		s.logger.Error("failed to list playlists", "error", err)
		return nil, err
	}
	return playlists, nil
}

// GetPlaylist returns one playlist with its media
func (s *PlaylistService) GetPlaylist(ctx context.Context, token string) (*domain.Playlist, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}
	playlist, err := src.GetPlaylist(ctx, token)
	if err != nil {
		s.logger.Error("failed to get playlist", "error", err, "token", token)
		return nil, err
	}
	return playlist, nil
}
