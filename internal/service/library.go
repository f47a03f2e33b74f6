package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

// LibraryService handles video listing and detail fetches for the active connection
type LibraryService struct {
	sources  sourceResolver
	sessions sessionStore
	logger   *slog.Logger
}

// NewLibraryService creates a new library service
func NewLibraryService(sessions sessionStore, factory domain.SourceFactory, logger *slog.Logger) *LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryService{
		sources:  sourceResolver{sessions: sessions, factory: factory},
		sessions: sessions,
		logger:   logger,
	}
}

// ListVideos returns one page of the server's media listing
func (s *LibraryService) ListVideos(ctx context.Context, limit, offset int) ([]domain.Video, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}
	videos, err := src.ListVideos(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list videos", "error", err, "limit", limit, "offset", offset)
		return nil, err
	}
	return videos, nil
}

// FetchAll walks every page of the media listing
func (s *LibraryService) FetchAll(ctx context.Context, pageSize int, onProgress func(loaded, total int)) ([]domain.Video, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}
	videos, err := fetchAll(ctx, src.VideoPage, pageSize, onProgress)
	if err != nil {
		s.logger.Error("failed to fetch all videos", "error", err)
		return nil, err
	}
	s.logger.Debug("fetched all videos", "count", len(videos))
	return videos, nil
}

// GetVideo fetches a video's detail and records it in the watch history.
// A failure to persist the history is logged; the video is still returned.
func (s *LibraryService) GetVideo(ctx context.Context, token string) (*domain.Video, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}
	video, err := src.GetVideo(ctx, token)
	if err != nil {
		s.logger.Error("failed to get video", "error", err, "token", token)
		return nil, err
	}
	if err := s.sessions.RecordWatch(*video); err != nil {
		s.logger.Warn("failed to record watch history", "error", err, "token", token)
	}
	return video, nil
}
