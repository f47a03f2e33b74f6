package search

import (
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Result is one filtered item with match metadata for highlighting
type Result[T any] struct {
	Item           T
	Index          int   // Position in the input slice
	Title          string
	MatchedIndexes []int // Byte offsets in Title that matched
	Score          int   // Higher is better
}

// titleSource implements fuzzy.Source over pre-computed lowercase titles
type titleSource struct {
	lower []string
}

func (s titleSource) String(i int) string { return s.lower[i] }
func (s titleSource) Len() int            { return len(s.lower) }

// Filter fuzzy-matches query against the titles of items, best match first.
// An empty query returns every item in input order without match metadata.
func Filter[T any](query string, items []T, title func(T) string) []Result[T] {
	titles := make([]string, len(items))
	lower := make([]string, len(items))
	for i, item := range items {
		titles[i] = title(item)
		lower[i] = strings.ToLower(titles[i])
	}

	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]Result[T], len(items))
		for i, item := range items {
			results[i] = Result[T]{Item: item, Index: i, Title: titles[i]}
		}
		return results
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), titleSource{lower: lower})

	results := make([]Result[T], len(matches))
	for i, match := range matches {
		results[i] = Result[T]{
			Item:           items[match.Index],
			Index:          match.Index,
			Title:          titles[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	return results
}

// Videos filters videos by title
func Videos(query string, videos []domain.Video) []Result[domain.Video] {
	return Filter(query, videos, func(v domain.Video) string { return v.Title })
}

// Connections filters connections by display name and URL
func Connections(query string, conns []domain.Connection) []Result[domain.Connection] {
	return Filter(query, conns, ConnectionTitle)
}

// ConnectionTitle is the text connections are matched and displayed with
func ConnectionTitle(c domain.Connection) string {
	if c.Username != "" {
		return c.Username + "@" + c.DisplayName()
	}
	return c.DisplayName()
}

// Items returns just the matched items
func Items[T any](results []Result[T]) []T {
	items := make([]T, len(results))
	for i, r := range results {
		items[i] = r.Item
	}
	return items
}
