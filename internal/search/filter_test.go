package search

import (
	"testing"

	"github.com/mmcdole/reel/internal/domain"
)

func TestFilterVideos(t *testing.T) {
	videos := []domain.Video{
		{Token: "a", Title: "Cooking with Go"},
		{Token: "b", Title: "Goroutines Deep Dive"},
		{Token: "c", Title: "Holiday Recap"},
	}

	results := Videos("gorout", videos)
	if len(results) != 1 || results[0].Item.Token != "b" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Index != 1 {
		t.Fatalf("expected input index 1, got %d", results[0].Index)
	}
	want := []int{0, 1, 2, 3, 4, 5}
	if len(results[0].MatchedIndexes) != len(want) {
		t.Fatalf("unexpected matched indexes: %v", results[0].MatchedIndexes)
	}
	for i, idx := range want {
		if results[0].MatchedIndexes[i] != idx {
			t.Fatalf("unexpected matched indexes: %v", results[0].MatchedIndexes)
		}
	}
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	videos := []domain.Video{{Token: "a", Title: "MediaCMS Intro"}}
	if got := Videos("mediacms", videos); len(got) != 1 {
		t.Fatalf("expected case-insensitive match, got %+v", got)
	}
	if got := Videos("zzz", videos); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestFilterEmptyQueryKeepsOrder(t *testing.T) {
	videos := []domain.Video{{Token: "b"}, {Token: "a"}}
	items := Items(Videos("  ", videos))
	if len(items) != 2 || items[0].Token != "b" || items[1].Token != "a" {
		t.Fatalf("expected input order, got %+v", items)
	}
}

func TestFilterConnections(t *testing.T) {
	conns := []domain.Connection{
		{ID: "1", Name: "demo.mediacms.io", URL: "https://demo.mediacms.io"},
		{ID: "2", Name: "videos.example.org", URL: "https://videos.example.org", Username: "alice"},
	}

	results := Connections("alice", conns)
	if len(results) != 1 || results[0].Item.ID != "2" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Title != "alice@videos.example.org" {
		t.Fatalf("unexpected title: %q", results[0].Title)
	}
}
