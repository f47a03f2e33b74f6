package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/session"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// row is one rendered list entry; exactly one of video, playlist or conn is set
type row struct {
	title    string
	matched  []int
	meta     string
	video    *domain.Video
	playlist *domain.Playlist
	conn     *domain.Connection
	active   bool
}

// rows builds the current tab's list with the local filter applied
func (m Model) rows() []row {
	query := m.filterInput.Value()

	switch m.Tab {
	case TabVideos:
		return videoRows(query, m.videos)
	case TabSearch:
		return videoRows(query, m.searchResults)
	case TabHistory:
		return videoRows(query, m.svc.Sessions.WatchHistory())
	case TabPlaylists:
		if m.openPlaylist != nil {
			return videoRows(query, m.openPlaylist.Media)
		}
		results := search.Filter(query, m.playlists, func(p domain.Playlist) string { return p.Title })
		out := make([]row, len(results))
		for i, r := range results {
			p := r.Item
			out[i] = row{
				title:    r.Title,
				matched:  r.MatchedIndexes,
				meta:     fmt.Sprintf("%d videos", p.MediaCount),
				playlist: &p,
			}
		}
		return out
	case TabConnections:
		var activeID string
		if active := m.svc.Sessions.ActiveConnection(); active != nil {
			activeID = active.ID
		}
		results := search.Connections(query, m.svc.Sessions.Connections())
		out := make([]row, len(results))
		for i, r := range results {
			c := r.Item
			meta := c.URL
			if !c.Authenticated() {
				meta += " · guest"
			}
			out[i] = row{
				title:   r.Title,
				matched: r.MatchedIndexes,
				meta:    meta,
				conn:    &c,
				active:  c.ID == activeID,
			}
		}
		return out
	}
	return nil
}

func videoRows(query string, videos []domain.Video) []row {
	results := search.Videos(query, videos)
	out := make([]row, len(results))
	for i, r := range results {
		v := r.Item
		out[i] = row{
			title:   r.Title,
			matched: r.MatchedIndexes,
			meta:    videoMeta(v),
			video:   &v,
		}
	}
	return out
}

func videoMeta(v domain.Video) string {
	parts := []string{v.FormattedDuration(), v.FormattedViews() + " views"}
	if v.Author != "" {
		parts = append(parts, v.Author)
	}
	if !v.AddedAt.IsZero() {
		parts = append(parts, humanize.Time(v.AddedAt))
	}
	return strings.Join(parts, " · ")
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(m.Height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	var body string
	switch {
	case m.State == StateHelp:
		body = m.renderModal(m.help.FullHelpView(Keys.FullHelp()), bodyHeight)
	case m.State == StateConfirmDelete:
		name := ""
		if conn, ok := m.selectedConnection(); ok {
			name = search.ConnectionTitle(conn)
		}
		body = m.renderModal(fmt.Sprintf("Remove %s?\n\n%s", name, styles.DimStyle.Render("y confirm · n cancel")), bodyHeight)
	case m.State == StateConfirmLogout:
		body = m.renderModal("Log out of the active connection?\n\n"+styles.DimStyle.Render("y confirm · n cancel"), bodyHeight)
	case m.detailOpen:
		body = m.renderDetail(bodyHeight)
	default:
		body = m.renderList(bodyHeight)
	}

	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.Tab {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	status := styles.DimStyle.Render(m.statusLine())
	gap := m.Width - lipgloss.Width(bar) - lipgloss.Width(status)
	if gap < 1 {
		return bar + "\n" + status
	}
	return bar + strings.Repeat(" ", gap) + status
}

// statusLine describes the session: who is logged in where
func (m Model) statusLine() string {
	snap := m.svc.Sessions.Snapshot()
	switch snap.Status() {
	case session.StatusConnecting:
		return "connecting..."
	case session.StatusNoConnection:
		return "no connection"
	case session.StatusAuthenticated:
		name := snap.Active.Username
		if snap.User != nil {
			name = snap.User.DisplayName()
		}
		return name + " @ " + snap.Active.DisplayName()
	default:
		return "guest @ " + snap.Active.DisplayName()
	}
}

func (m Model) renderList(height int) string {
	var lines []string

	if m.Tab == TabSearch {
		if m.searchInput.Focused() {
			lines = append(lines, m.searchInput.View())
		} else if m.searchQuery != "" {
			lines = append(lines, styles.FilterStyle.Render("search: ")+m.searchQuery)
		} else {
			lines = append(lines, styles.DimStyle.Render("press / to search"))
		}
	}
	if m.Tab == TabPlaylists && m.openPlaylist != nil {
		lines = append(lines, styles.TitleStyle.Render(m.openPlaylist.Title)+"  "+styles.DimStyle.Render("esc back"))
	}
	if m.filterInput.Focused() || m.filterInput.Value() != "" {
		lines = append(lines, m.filterInput.View())
	}

	rows := m.rows()
	switch {
	case m.loading[m.Tab] && len(rows) == 0:
		lines = append(lines, m.spinner.View()+" Loading...")
		return strings.Join(lines, "\n")
	case len(rows) == 0:
		lines = append(lines, styles.DimStyle.Render(m.emptyText()))
		return strings.Join(lines, "\n")
	}

	visible := max(height-len(lines)-1, 1)
	cursor := m.cursor[m.Tab]
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], i == cursor))
	}

	var more string
	switch {
	case m.Tab == TabVideos && m.loading[TabVideos]:
		more = m.spinner.View() + " loading more..."
	case m.Tab == TabVideos && m.videosMore && m.filterInput.Value() == "":
		more = "n load more"
	}
	if more != "" || end < len(rows) {
		pos := fmt.Sprintf("%d/%d", cursor+1, len(rows))
		lines = append(lines, styles.DimStyle.Render(strings.TrimSpace(pos+"  "+more)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, selected bool) string {
	marker := "  "
	if r.active {
		marker = styles.AccentStyle.Render("● ")
	}
	titleWidth := max(m.Width*3/5, 20)

	title := r.title
	matched := r.matched
	if lipgloss.Width(title) > titleWidth {
		title = styles.Truncate(title, titleWidth)
		matched = nil
	}
	rendered := styles.Highlight(title, matched, selected)
	pad := strings.Repeat(" ", max(titleWidth-lipgloss.Width(title), 0)+2)
	if selected {
		pad = styles.SelectedItemStyle.Render(pad)
	}

	metaWidth := max(m.Width-titleWidth-6, 0)
	return marker + rendered + pad + styles.DimStyle.Render(styles.Truncate(r.meta, metaWidth))
}

func (m Model) emptyText() string {
	if m.svc.Sessions.ActiveConnection() == nil && m.Tab != TabHistory && m.Tab != TabConnections {
		return "No active connection. Pick one on the Connections tab."
	}
	if m.filterInput.Value() != "" {
		return "Nothing matches the filter."
	}
	switch m.Tab {
	case TabSearch:
		if m.searchQuery == "" {
			return ""
		}
		return "No results."
	case TabHistory:
		return "Nothing watched yet."
	case TabPlaylists:
		if m.openPlaylist != nil {
			return "This playlist is empty."
		}
		return "No playlists."
	case TabConnections:
		return "No connections. Run `reel login <url>` to add one."
	}
	return "No videos."
}

func (m Model) renderDetail(height int) string {
	if m.detailLoading && m.detail == nil {
		return styles.DetailStyle.Render(m.spinner.View() + " Loading video...")
	}
	if m.detailErr != nil {
		return styles.DetailStyle.Render(
			styles.ErrorStyle.Render(m.detailErr.Error()) + "\n\n" +
				styles.DimStyle.Render("r retry · esc back"))
	}
	if m.detail == nil {
		return ""
	}

	v := m.detail
	width := max(m.Width-4, 20)
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(v.Title))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(videoMeta(*v)))
	b.WriteString("\n")
	if v.MediaType != "" || v.State != "" {
		b.WriteString(styles.DimStyle.Render(strings.TrimSpace(v.MediaType + " " + v.State)))
		b.WriteString("\n")
	}
	if v.Description != "" {
		b.WriteString("\n")
		for _, line := range wordWrap(v.Description, width) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("p play · esc back"))

	out := styles.DetailStyle.Render(b.String())
	lines := strings.Split(out, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderModal(content string, height int) string {
	modal := styles.ModalStyle.Render(content)
	return lipgloss.Place(m.Width, height, lipgloss.Center, lipgloss.Center, modal)
}

func (m Model) renderFooter() string {
	var lines []string
	if m.notice != "" {
		style := styles.SuccessStyle
		if m.noticeIsErr {
			style = styles.ErrorStyle
		}
		lines = append(lines, style.Render(styles.Truncate(m.notice, max(m.Width, 10))))
	}
	lines = append(lines, m.help.ShortHelpView(Keys.ShortHelp()))
	return strings.Join(lines, "\n")
}

// wordWrap wraps text to the given width, keeping paragraph breaks
func wordWrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if lipgloss.Width(current)+1+lipgloss.Width(word) > width {
				lines = append(lines, current)
				current = word
			} else {
				current += " " + word
			}
		}
		lines = append(lines, current)
	}
	return lines
}
