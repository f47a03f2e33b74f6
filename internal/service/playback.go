package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

// launcher abstracts media player launching (consumer-defined interface)
type launcher interface {
	Launch(url string) error
}

// PlaybackService resolves stream URLs and hands them to the player
type PlaybackService struct {
	launcher launcher
	sources  sourceResolver
	sessions sessionStore
	logger   *slog.Logger
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(
	launcher launcher,
	sessions sessionStore,
	factory domain.SourceFactory,
	logger *slog.Logger,
) *PlaybackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaybackService{
		launcher: launcher,
		sources:  sourceResolver{sessions: sessions, factory: factory},
		sessions: sessions,
		logger:   logger,
	}
}

// StreamURL returns the absolute URL a player should open for video
func (s *PlaybackService) StreamURL(video domain.Video) (string, error) {
	src, err := s.sources.source()
	if err != nil {
		return "", err
	}
	return src.ResolveStreamURL(video), nil
}

// Play launches video in the player and records it in the watch history
func (s *PlaybackService) Play(video domain.Video) error {
	url, err := s.StreamURL(video)
	if err != nil {
		return err
	}

	s.logger.Info("launching playback", "title", video.Title, "token", video.Token, "url", url)
	if err := s.launcher.Launch(url); err != nil {
		s.logger.Error("failed to launch player", "error", err, "token", video.Token)
		return err
	}

	if err := s.sessions.RecordWatch(video); err != nil {
		s.logger.Warn("failed to record watch history", "error", err, "token", video.Token)
	}
	return nil
}

// PlayToken fetches the video detail first, then plays it
func (s *PlaybackService) PlayToken(ctx context.Context, token string) (*domain.Video, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}
	video, err := src.GetVideo(ctx, token)
	if err != nil {
		s.logger.Error("failed to get video for playback", "error", err, "token", token)
		return nil, err
	}
	return video, s.Play(*video)
}
