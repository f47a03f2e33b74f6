package tui

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mediacms"
	"github.com/mmcdole/reel/internal/player"
	"github.com/mmcdole/reel/internal/service"
	"github.com/mmcdole/reel/internal/session"
	"github.com/mmcdole/reel/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestModel builds a model over an in-memory session holding conns.
// The first connection is made active when activate is set.
func newTestModel(t *testing.T, activate bool, conns ...domain.Connection) (Model, *session.Service) {
	t.Helper()
	logger := quietLogger()
	sessions := session.NewService(store.NewMemory(), nil, logger)
	for _, c := range conns {
		if err := sessions.AddConnection(c); err != nil {
			t.Fatalf("AddConnection: %v", err)
		}
	}
	if activate && len(conns) > 0 {
		if err := sessions.SetActiveConnection(&conns[0]); err != nil {
			t.Fatalf("SetActiveConnection: %v", err)
		}
	}

	factory := mediacms.NewFactory(logger)
	svc := Services{
		Sessions: sessions,
		Library:  service.NewLibraryService(sessions, factory, logger),
		Search:   service.NewSearchService(sessions, factory, logger),
		Playlist: service.NewPlaylistService(sessions, factory, logger),
		Playback: service.NewPlaybackService(player.NewLauncher("true", nil, logger), sessions, factory, logger),
		Session:  service.NewSessionService(sessions, factory, logger),
	}
	m := NewModel(svc, Options{PageSize: 2, SearchLimit: 5, Timeout: time.Second})
	return m, sessions
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	connA = domain.Connection{ID: "a", Name: "a.example", URL: "https://a.example"}
	connB = domain.Connection{ID: "b", Name: "b.example", URL: "https://b.example", Username: "bob", Token: "tok"}
)

func TestNewModelWithoutConnectionOpensConnections(t *testing.T) {
	m, _ := newTestModel(t, false, connA)
	if m.Tab != TabConnections {
		t.Fatalf("expected Connections tab, got %s", m.Tab)
	}
	if m.loading[TabVideos] {
		t.Fatal("nothing should load without a connection")
	}
}

func TestNewModelWithConnectionLoadsVideos(t *testing.T) {
	m, _ := newTestModel(t, true, connA)
	if m.Tab != TabVideos || !m.loading[TabVideos] || m.seq[TabVideos] != 1 {
		t.Fatalf("expected first video load in flight, got tab=%s loading=%v seq=%d", m.Tab, m.loading[TabVideos], m.seq[TabVideos])
	}
	if m.Init() == nil {
		t.Fatal("Init should return commands")
	}
}

func TestStaleVideosDropped(t *testing.T) {
	m, _ := newTestModel(t, true, connA)

	m, _ = update(t, m, VideosLoadedMsg{Seq: 0, Videos: []domain.Video{{Token: "old"}}})
	if m.videos != nil {
		t.Fatalf("stale result applied: %+v", m.videos)
	}

	m, _ = update(t, m, VideosLoadedMsg{Seq: 1, Videos: []domain.Video{{Token: "v1"}, {Token: "v2"}}})
	if len(m.videos) != 2 || m.loading[TabVideos] {
		t.Fatalf("expected 2 videos loaded, got %d (loading=%v)", len(m.videos), m.loading[TabVideos])
	}
	if !m.videosMore {
		t.Fatal("a full page should offer more")
	}
}

func TestNextPageAppends(t *testing.T) {
	m, _ := newTestModel(t, true, connA)
	m, _ = update(t, m, VideosLoadedMsg{Seq: 1, Videos: []domain.Video{{Token: "v1"}, {Token: "v2"}}})

	m, cmd := update(t, m, keyRunes("n"))
	if cmd == nil || !m.loading[TabVideos] || m.seq[TabVideos] != 2 {
		t.Fatalf("expected next page request, got loading=%v seq=%d", m.loading[TabVideos], m.seq[TabVideos])
	}

	m, _ = update(t, m, VideosLoadedMsg{Seq: 2, Offset: 2, Videos: []domain.Video{{Token: "v3"}}})
	if len(m.videos) != 3 || m.videos[2].Token != "v3" {
		t.Fatalf("expected appended page, got %+v", m.videos)
	}
	if m.videosMore {
		t.Fatal("a short page ends the listing")
	}

	if _, cmd := update(t, m, keyRunes("n")); cmd != nil {
		t.Fatal("no more pages should be requested")
	}
}

func TestErrMsgLeavesEmptyListAndNotice(t *testing.T) {
	m, _ := newTestModel(t, true, connA)

	m, _ = update(t, m, ErrMsg{Err: errors.New("boom"), Context: "loading videos", Tab: TabVideos, Seq: 0})
	if m.notice != "" {
		t.Fatalf("stale error shown: %q", m.notice)
	}

	m, _ = update(t, m, ErrMsg{Err: errors.New("boom"), Context: "loading videos", Tab: TabVideos, Seq: 1})
	if m.videos == nil || len(m.videos) != 0 {
		t.Fatalf("expected empty list, got %#v", m.videos)
	}
	if m.loading[TabVideos] {
		t.Fatal("loading should stop on error")
	}
	if !m.noticeIsErr || m.notice != "loading videos: boom" {
		t.Fatalf("unexpected notice %q", m.notice)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.notice != "" {
		t.Fatal("esc should dismiss the notice")
	}
}

func TestGlobalErrorIgnoresSeq(t *testing.T) {
	m, _ := newTestModel(t, true, connA)
	m, _ = update(t, m, ErrMsg{Err: player.ErrNoPlayer, Context: "starting playback", Tab: -1})
	if !strings.Contains(m.notice, "starting playback") {
		t.Fatalf("expected playback notice, got %q", m.notice)
	}
}

func TestTabSwitchingLoadsLazily(t *testing.T) {
	m, _ := newTestModel(t, true, connA)

	m, cmd := update(t, m, keyRunes("4"))
	if m.Tab != TabPlaylists {
		t.Fatalf("expected Playlists tab, got %s", m.Tab)
	}
	if cmd == nil || !m.loading[TabPlaylists] {
		t.Fatal("first visit should load playlists")
	}
	m, _ = update(t, m, PlaylistsLoadedMsg{Seq: m.seq[TabPlaylists], Playlists: []domain.Playlist{{Token: "pl1", Title: "Mix"}}})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Tab != TabConnections {
		t.Fatalf("expected Connections tab, got %s", m.Tab)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Tab != TabPlaylists || m.loading[TabPlaylists] {
		t.Fatalf("returning to a loaded tab should not refetch (tab=%s)", m.Tab)
	}
}

func TestPlaylistOpenAndBack(t *testing.T) {
	m, _ := newTestModel(t, true, connA)
	m, _ = update(t, m, keyRunes("4"))
	m, _ = update(t, m, PlaylistsLoadedMsg{Seq: m.seq[TabPlaylists], Playlists: []domain.Playlist{{Token: "pl1", Title: "Mix"}}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on a playlist should load it")
	}
	pl := &domain.Playlist{Token: "pl1", Title: "Mix", Media: []domain.Video{{Token: "v1", Title: "Video 1"}}}
	m, _ = update(t, m, PlaylistLoadedMsg{Seq: m.seq[TabPlaylists], Playlist: pl})

	rows := m.rows()
	if len(rows) != 1 || rows[0].video == nil || rows[0].video.Token != "v1" {
		t.Fatalf("expected playlist media rows, got %+v", rows)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.openPlaylist != nil {
		t.Fatal("esc should close the playlist")
	}
	if rows := m.rows(); len(rows) != 1 || rows[0].playlist == nil {
		t.Fatalf("expected playlist rows, got %+v", rows)
	}
}

func TestHistoryFilter(t *testing.T) {
	m, sessions := newTestModel(t, true, connA)
	for _, title := range []string{"Dogs", "Cat videos", "Cats playing"} {
		if err := sessions.RecordWatch(domain.Video{Token: title, Title: title}); err != nil {
			t.Fatalf("RecordWatch: %v", err)
		}
	}

	m, _ = update(t, m, keyRunes("3"))
	if n := len(m.rows()); n != 3 {
		t.Fatalf("expected 3 history rows, got %d", n)
	}

	m, _ = update(t, m, keyRunes("/"))
	if !m.filterInput.Focused() {
		t.Fatal("/ should focus the filter")
	}
	for _, r := range "cat" {
		m, _ = update(t, m, keyRunes(string(r)))
	}

	rows := m.rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(rows))
	}
	for _, r := range rows {
		if !strings.HasPrefix(r.title, "Cat") || len(r.matched) == 0 {
			t.Fatalf("unexpected row %+v", r)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterInput.Value() != "" || len(m.rows()) != 3 {
		t.Fatal("esc should clear the filter")
	}
}

func TestSearchSubmit(t *testing.T) {
	m, _ := newTestModel(t, true, connA)

	m, _ = update(t, m, keyRunes("2"))
	if !m.searchInput.Focused() {
		t.Fatal("an empty search tab should focus the input")
	}
	for _, r := range "cats" {
		m, _ = update(t, m, keyRunes(string(r)))
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.searchQuery != "cats" || !m.loading[TabSearch] {
		t.Fatalf("expected search for %q in flight", m.searchQuery)
	}

	seq := m.seq[TabSearch]
	m, _ = update(t, m, SearchResultsMsg{Seq: seq - 1, Results: []domain.Video{{Token: "stale"}}})
	if m.searchResults != nil {
		t.Fatal("stale search results applied")
	}
	m, _ = update(t, m, SearchResultsMsg{Seq: seq, Query: "cats", Results: nil})
	if m.searchResults == nil || len(m.searchResults) != 0 {
		t.Fatalf("expected empty results, got %#v", m.searchResults)
	}
}

func TestDetailDropsLateResults(t *testing.T) {
	m, _ := newTestModel(t, true, connA)
	m, _ = update(t, m, VideosLoadedMsg{Seq: 1, Videos: []domain.Video{{Token: "v1", Title: "One"}}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.detailOpen || !m.detailLoading {
		t.Fatal("enter on a video should open the detail pane")
	}
	seq := m.detailSeq

	m, _ = update(t, m, VideoFailedMsg{Seq: seq, Err: domain.ErrItemNotFound})
	if m.detailErr == nil {
		t.Fatal("expected detail error")
	}

	m, cmd = update(t, m, keyRunes("r"))
	if cmd == nil || m.detailSeq == seq || m.detailErr != nil {
		t.Fatal("r should retry the detail fetch")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.detailOpen {
		t.Fatal("esc should close the detail pane")
	}
	m, _ = update(t, m, VideoLoadedMsg{Seq: m.detailSeq - 1, Video: &domain.Video{Token: "v1"}})
	if m.detail != nil || m.detailOpen {
		t.Fatal("late detail result should be dropped")
	}
}

func TestSelectConnectionResetsData(t *testing.T) {
	m, sessions := newTestModel(t, true, connA, connB)
	m, _ = update(t, m, VideosLoadedMsg{Seq: 1, Videos: []domain.Video{{Token: "v1"}}})
	oldSeq := m.seq[TabVideos]

	m, _ = update(t, m, keyRunes("5"))
	m, _ = update(t, m, keyRunes("j"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("selecting a connection should start loading")
	}

	if active := sessions.ActiveConnection(); active == nil || active.ID != "b" {
		t.Fatalf("expected connection b active, got %+v", active)
	}
	if m.Tab != TabVideos {
		t.Fatalf("expected Videos tab, got %s", m.Tab)
	}
	if m.videos != nil || !m.loading[TabVideos] || m.seq[TabVideos] <= oldSeq {
		t.Fatal("previous connection's data should be discarded and reloaded")
	}

	m, _ = update(t, m, VideosLoadedMsg{Seq: oldSeq, Videos: []domain.Video{{Token: "from-a"}}})
	if m.videos != nil {
		t.Fatal("results for the previous connection should be dropped")
	}
}

func TestDeleteConnectionRequiresConfirm(t *testing.T) {
	m, sessions := newTestModel(t, true, connA, connB)
	m, _ = update(t, m, keyRunes("5"))

	m, _ = update(t, m, keyRunes("d"))
	if m.State != StateConfirmDelete {
		t.Fatal("d should ask for confirmation")
	}
	m, _ = update(t, m, keyRunes("n"))
	if len(sessions.Connections()) != 2 {
		t.Fatal("cancel should keep the connection")
	}

	m, _ = update(t, m, keyRunes("d"))
	m, _ = update(t, m, keyRunes("y"))
	if len(sessions.Connections()) != 1 || sessions.ActiveConnection() != nil {
		t.Fatal("removing the active connection should clear it")
	}
	if m.State != StateBrowsing {
		t.Fatal("expected browsing state")
	}
}

func TestLogoutFromConnections(t *testing.T) {
	m, sessions := newTestModel(t, true, connB)
	m, _ = update(t, m, keyRunes("5"))
	m, _ = update(t, m, keyRunes("o"))
	m, _ = update(t, m, keyRunes("y"))

	if sessions.ActiveConnection() != nil {
		t.Fatal("logout should clear the active connection")
	}
	if len(sessions.Connections()) != 1 {
		t.Fatal("logout keeps the stored connection")
	}
	if m.notice != "Logged out" {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}

func TestViewRendersStatus(t *testing.T) {
	m, _ := newTestModel(t, false, connA)
	if got := m.View(); got != "Loading..." {
		t.Fatalf("expected placeholder before size is known, got %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})
	view := m.View()
	for _, want := range []string{"Connections", "no connection", "a.example"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("the quick brown fox\n\njumps", 10)
	want := []string{"the quick", "brown fox", "", "jumps"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("wordWrap = %q, want %q", got, want)
	}
}
