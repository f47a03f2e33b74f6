package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/reel/internal/domain"
)

// SearchService handles server-side search and offline search of the watch history
type SearchService struct {
	sources  sourceResolver
	sessions sessionStore
	logger   *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(sessions sessionStore, factory domain.SourceFactory, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		sources:  sourceResolver{sessions: sessions, factory: factory},
		sessions: sessions,
		logger:   logger,
	}
}

// Search queries the server. The query is passed through as typed; results keep server order.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.Video, error) {
	src, err := s.sources.source()
	if err != nil {
		return nil, err
	}

	s.logger.Debug("searching", "query", query, "limit", limit)
	results, err := src.SearchVideos(ctx, query, limit)
	if err != nil {
		s.logger.Error("search failed", "error", err, "query", query)
		return nil, err
	}
	s.logger.Debug("search complete", "query", query, "results", len(results))
	return results, nil
}

// SearchHistory ranks watch history entries whose title fuzzily contains
// query, closest first. Works without a connection.
func (s *SearchService) SearchHistory(query string) []domain.Video {
	history := s.sessions.WatchHistory()
	if query == "" {
		return history
	}

	titles := make([]string, len(history))
	for i, v := range history {
		titles[i] = v.Title
	}

	matches := fuzzy.RankFindFold(query, titles)

	// Sort by distance (lower is better), keeping recency order on ties
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	results := make([]domain.Video, 0, len(matches))
	for _, match := range matches {
		results = append(results, history[match.OriginalIndex])
	}
	return results
}
