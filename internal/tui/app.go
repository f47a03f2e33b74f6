package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/service"
	"github.com/mmcdole/reel/internal/session"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// Tab is one of the top-level views
type Tab int

const (
	TabVideos Tab = iota
	TabSearch
	TabHistory
	TabPlaylists
	TabConnections
	tabCount
)

var tabNames = [tabCount]string{"Videos", "Search", "History", "Playlists", "Connections"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return ""
	}
	return tabNames[t]
}

// ApplicationState represents the current modal state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmDelete
	StateConfirmLogout
)

// Services bundles everything the browser talks to
type Services struct {
	Sessions *session.Service
	Library  *service.LibraryService
	Search   *service.SearchService
	Playlist *service.PlaylistService
	Playback *service.PlaybackService
	Session  *service.SessionService
}

// Options holds paging and timeout settings
type Options struct {
	PageSize    int
	SearchLimit int
	Timeout     time.Duration
}

// Model is the main Bubble Tea model for the application
type Model struct {
	svc  Services
	opts Options

	State  ApplicationState
	Tab    Tab
	Ready  bool
	Width  int
	Height int

	cursor  [tabCount]int
	seq     [tabCount]int
	loading [tabCount]bool

	// Remote data for the active connection; nil means not loaded yet
	videos        []domain.Video
	videosMore    bool
	searchQuery   string
	searchResults []domain.Video
	playlists     []domain.Playlist
	openPlaylist  *domain.Playlist

	searchInput textinput.Model
	filterInput textinput.Model

	// Detail pane
	detailOpen    bool
	detailSeq     int
	detailToken   string
	detail        *domain.Video
	detailErr     error
	detailLoading bool

	notice      string
	noticeIsErr bool

	spinner spinner.Model
	help    help.Model
}

// NewModel creates a new application model. Without an active connection
// the browser opens on the Connections tab.
func NewModel(svc Services, opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	searchInput := textinput.New()
	searchInput.Prompt = "search: "
	searchInput.Placeholder = "type a query and press enter"
	searchInput.PromptStyle = styles.FilterStyle

	filterInput := textinput.New()
	filterInput.Prompt = "/"
	filterInput.PromptStyle = styles.FilterStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := Model{
		svc:         svc,
		opts:        opts,
		State:       StateBrowsing,
		searchInput: searchInput,
		filterInput: filterInput,
		spinner:     sp,
		help:        help.New(),
	}

	if svc.Sessions.ActiveConnection() == nil {
		m.Tab = TabConnections
	} else {
		m.Tab = TabVideos
		m.seq[TabVideos] = 1
		m.loading[TabVideos] = true
	}
	return m
}

// Init starts the spinner and the first load for the active connection
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if active := m.svc.Sessions.ActiveConnection(); active != nil {
		cmds = append(cmds, LoadVideosCmd(m.svc.Library, m.opts.Timeout, m.seq[TabVideos], m.opts.PageSize, 0))
		if active.Authenticated() {
			cmds = append(cmds, RefreshUserCmd(m.svc.Session, m.opts.Timeout))
		}
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case VideosLoadedMsg:
		if msg.Seq != m.seq[TabVideos] {
			return m, nil
		}
		m.loading[TabVideos] = false
		if msg.Offset == 0 || m.videos == nil {
			m.videos = msg.Videos
			m.cursor[TabVideos] = 0
		} else {
			m.videos = append(m.videos, msg.Videos...)
		}
		if m.videos == nil {
			m.videos = []domain.Video{}
		}
		m.videosMore = len(msg.Videos) >= m.opts.PageSize
		return m, nil

	case SearchResultsMsg:
		if msg.Seq != m.seq[TabSearch] {
			return m, nil
		}
		m.loading[TabSearch] = false
		m.searchResults = nonNil(msg.Results)
		m.cursor[TabSearch] = 0
		return m, nil

	case PlaylistsLoadedMsg:
		if msg.Seq != m.seq[TabPlaylists] {
			return m, nil
		}
		m.loading[TabPlaylists] = false
		m.playlists = nonNil(msg.Playlists)
		m.cursor[TabPlaylists] = 0
		return m, nil

	case PlaylistLoadedMsg:
		if msg.Seq != m.seq[TabPlaylists] {
			return m, nil
		}
		m.loading[TabPlaylists] = false
		m.openPlaylist = msg.Playlist
		m.cursor[TabPlaylists] = 0
		return m, nil

	case VideoLoadedMsg:
		if !m.detailOpen || msg.Seq != m.detailSeq {
			return m, nil
		}
		m.detailLoading = false
		m.detail = msg.Video
		m.detailErr = nil
		return m, nil

	case VideoFailedMsg:
		if !m.detailOpen || msg.Seq != m.detailSeq {
			return m, nil
		}
		m.detailLoading = false
		m.detailErr = msg.Err
		return m, nil

	case ErrMsg:
		if msg.Tab >= 0 && msg.Tab < tabCount {
			if msg.Seq != m.seq[msg.Tab] {
				return m, nil
			}
			m.loading[msg.Tab] = false
			m.clearTabData(msg.Tab)
		}
		m.setNotice(msg.Error(), true)
		return m, nil

	case PlaybackStartedMsg:
		m.setNotice(fmt.Sprintf("Playing %s", msg.Video.Title), false)
		return m, nil

	case UserRefreshedMsg:
		return m, nil
	}

	return m, nil
}

// clearTabData leaves a failed tab with an empty, loaded list
func (m *Model) clearTabData(tab Tab) {
	m.cursor[tab] = 0
	switch tab {
	case TabVideos:
		m.videos = []domain.Video{}
		m.videosMore = false
	case TabSearch:
		m.searchResults = []domain.Video{}
	case TabPlaylists:
		if m.openPlaylist == nil {
			m.playlists = []domain.Playlist{}
		}
	}
}

// resetRemote drops everything fetched from the previous connection and
// invalidates in-flight requests
func (m *Model) resetRemote() {
	m.videos = nil
	m.videosMore = false
	m.searchResults = nil
	m.searchQuery = ""
	m.playlists = nil
	m.openPlaylist = nil
	for t := range m.seq {
		m.seq[t]++
		m.loading[t] = false
		m.cursor[t] = 0
	}
	m.closeDetail()
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeIsErr = isErr
}

func (m *Model) closeDetail() {
	m.detailOpen = false
	m.detailSeq++
	m.detail = nil
	m.detailErr = nil
	m.detailLoading = false
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil
	case StateConfirmDelete, StateConfirmLogout:
		return m.handleConfirm(msg)
	}

	if m.searchInput.Focused() {
		return m.handleSearchInput(msg)
	}
	if m.filterInput.Focused() {
		return m.handleFilterInput(msg)
	}
	if m.detailOpen {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Back):
		return m.handleBack()

	case key.Matches(msg, Keys.NextTab):
		return m.switchTab((m.Tab + 1) % tabCount)

	case key.Matches(msg, Keys.PrevTab):
		return m.switchTab((m.Tab + tabCount - 1) % tabCount)

	case len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] < '1'+rune(tabCount):
		return m.switchTab(Tab(msg.Runes[0] - '1'))

	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, Keys.Home):
		m.cursor[m.Tab] = 0
	case key.Matches(msg, Keys.End):
		m.cursor[m.Tab] = max(len(m.rows())-1, 0)

	case key.Matches(msg, Keys.Filter):
		if m.Tab == TabSearch {
			m.searchInput.SetValue(m.searchQuery)
			cmd := m.searchInput.Focus()
			return m, cmd
		}
		cmd := m.filterInput.Focus()
		return m, cmd

	case key.Matches(msg, Keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, Keys.Refresh):
		cmd := m.loadTab(true)
		return m, cmd

	case key.Matches(msg, Keys.NextPage):
		cmd := m.loadNextPage()
		return m, cmd

	case key.Matches(msg, Keys.Play):
		if r, ok := m.selectedRow(); ok && r.video != nil {
			return m, PlayCmd(m.svc.Playback, *r.video)
		}

	case key.Matches(msg, Keys.Delete):
		if _, ok := m.selectedConnection(); ok {
			m.State = StateConfirmDelete
		}

	case key.Matches(msg, Keys.Logout):
		if m.Tab == TabConnections && m.svc.Sessions.ActiveConnection() != nil {
			m.State = StateConfirmLogout
		}
	}

	return m, nil
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		state := m.State
		m.State = StateBrowsing
		if state == StateConfirmDelete {
			return m.deleteSelectedConnection()
		}
		return m.logout()
	case "n", "N", "esc", "q":
		m.State = StateBrowsing
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchInput.Blur()
		m.searchQuery = m.searchInput.Value()
		cmd := m.runSearch()
		return m, cmd
	case "esc":
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterInput.Blur()
		return m, nil
	case "esc":
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.cursor[m.Tab] = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.cursor[m.Tab] = 0
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Back):
		m.closeDetail()
	case key.Matches(msg, Keys.Refresh):
		if m.detailErr != nil && !m.detailLoading {
			cmd := m.fetchDetail(m.detailToken)
			return m, cmd
		}
	case key.Matches(msg, Keys.Play):
		if m.detail != nil {
			return m, PlayCmd(m.svc.Playback, *m.detail)
		}
	}
	return m, nil
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	switch {
	case m.notice != "":
		m.notice = ""
	case m.filterInput.Value() != "":
		m.filterInput.SetValue("")
		m.cursor[m.Tab] = 0
	case m.Tab == TabPlaylists && m.openPlaylist != nil:
		m.openPlaylist = nil
		m.seq[TabPlaylists]++
		m.loading[TabPlaylists] = false
		m.cursor[TabPlaylists] = 0
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	r, ok := m.selectedRow()
	if !ok {
		if m.Tab == TabSearch {
			m.searchInput.SetValue(m.searchQuery)
			cmd := m.searchInput.Focus()
			return m, cmd
		}
		return m, nil
	}

	switch {
	case r.video != nil:
		m.detailOpen = true
		m.detail = nil
		cmd := m.fetchDetail(r.video.Token)
		return m, cmd

	case r.playlist != nil:
		m.seq[TabPlaylists]++
		m.loading[TabPlaylists] = true
		return m, LoadPlaylistCmd(m.svc.Playlist, m.opts.Timeout, m.seq[TabPlaylists], r.playlist.Token)

	case r.conn != nil:
		return m.selectConnection(*r.conn)
	}
	return m, nil
}

// fetchDetail starts (or retries) the detail fetch; stale replies are dropped by detailSeq
func (m *Model) fetchDetail(token string) tea.Cmd {
	m.detailSeq++
	m.detailToken = token
	m.detailErr = nil
	m.detailLoading = true
	return LoadVideoCmd(m.svc.Library, m.opts.Timeout, m.detailSeq, token)
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	if tab == m.Tab {
		return m, nil
	}
	m.Tab = tab
	m.filterInput.SetValue("")
	m.notice = ""
	if tab == TabSearch && m.searchQuery == "" {
		cmd := tea.Batch(m.loadTab(false), m.searchInput.Focus())
		return m, cmd
	}
	cmd := m.loadTab(false)
	return m, cmd
}

// loadTab fetches the current tab's data when it has not been loaded yet, or always when force is set
func (m *Model) loadTab(force bool) tea.Cmd {
	if m.svc.Sessions.ActiveConnection() == nil {
		if force && m.Tab != TabHistory && m.Tab != TabConnections {
			m.setNotice(domain.ErrNoActiveConnection.Error(), true)
		}
		return nil
	}

	switch m.Tab {
	case TabVideos:
		if force || (m.videos == nil && !m.loading[TabVideos]) {
			m.seq[TabVideos]++
			m.loading[TabVideos] = true
			return LoadVideosCmd(m.svc.Library, m.opts.Timeout, m.seq[TabVideos], m.opts.PageSize, 0)
		}
	case TabSearch:
		if force && m.searchQuery != "" {
			return m.runSearch()
		}
	case TabPlaylists:
		if m.openPlaylist != nil && force {
			m.seq[TabPlaylists]++
			m.loading[TabPlaylists] = true
			return LoadPlaylistCmd(m.svc.Playlist, m.opts.Timeout, m.seq[TabPlaylists], m.openPlaylist.Token)
		}
		if force || (m.playlists == nil && !m.loading[TabPlaylists]) {
			m.openPlaylist = nil
			m.seq[TabPlaylists]++
			m.loading[TabPlaylists] = true
			return LoadPlaylistsCmd(m.svc.Playlist, m.opts.Timeout, m.seq[TabPlaylists])
		}
	}
	return nil
}

func (m *Model) runSearch() tea.Cmd {
	m.seq[TabSearch]++
	m.loading[TabSearch] = true
	return SearchCmd(m.svc.Search, m.opts.Timeout, m.seq[TabSearch], m.searchQuery, m.opts.SearchLimit)
}

func (m *Model) loadNextPage() tea.Cmd {
	if m.Tab != TabVideos || !m.videosMore || m.loading[TabVideos] {
		return nil
	}
	m.seq[TabVideos]++
	m.loading[TabVideos] = true
	return LoadVideosCmd(m.svc.Library, m.opts.Timeout, m.seq[TabVideos], m.opts.PageSize, len(m.videos))
}

func (m *Model) moveCursor(delta int) {
	n := len(m.rows())
	if n == 0 {
		m.cursor[m.Tab] = 0
		return
	}
	m.cursor[m.Tab] = min(max(m.cursor[m.Tab]+delta, 0), n-1)
}

func (m Model) selectedRow() (row, bool) {
	rows := m.rows()
	c := m.cursor[m.Tab]
	if c < 0 || c >= len(rows) {
		return row{}, false
	}
	return rows[c], true
}

func (m Model) selectedConnection() (domain.Connection, bool) {
	if m.Tab != TabConnections {
		return domain.Connection{}, false
	}
	r, ok := m.selectedRow()
	if !ok || r.conn == nil {
		return domain.Connection{}, false
	}
	return *r.conn, true
}

func (m Model) selectConnection(conn domain.Connection) (tea.Model, tea.Cmd) {
	if err := m.svc.Sessions.SetActiveConnection(&conn); err != nil {
		m.setNotice("selecting connection: "+err.Error(), true)
		return m, nil
	}
	m.resetRemote()
	m.setNotice("Connected to "+conn.DisplayName(), false)
	m.Tab = TabVideos

	cmds := []tea.Cmd{m.loadTab(false)}
	if conn.Authenticated() {
		cmds = append(cmds, RefreshUserCmd(m.svc.Session, m.opts.Timeout))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) deleteSelectedConnection() (tea.Model, tea.Cmd) {
	conn, ok := m.selectedConnection()
	if !ok {
		return m, nil
	}
	wasActive := false
	if active := m.svc.Sessions.ActiveConnection(); active != nil && active.ID == conn.ID {
		wasActive = true
	}
	if err := m.svc.Sessions.RemoveConnection(conn.ID); err != nil {
		m.setNotice("removing connection: "+err.Error(), true)
		return m, nil
	}
	if wasActive {
		m.resetRemote()
	}
	m.moveCursor(0)
	m.setNotice("Removed "+conn.DisplayName(), false)
	return m, nil
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if err := m.svc.Session.Logout(); err != nil {
		m.setNotice("logging out: "+err.Error(), true)
		return m, nil
	}
	m.resetRemote()
	m.setNotice("Logged out", false)
	return m, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
