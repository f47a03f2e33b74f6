package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/tui/styles"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderHeading(title string, colorize bool) string {
	title = strings.TrimSpace(title)
	if !colorize {
		return title
	}
	return styles.TitleStyle.Render(title)
}

func renderNote(message string, colorize bool) string {
	if !colorize {
		return message
	}
	return styles.DimStyle.Render(message)
}

// relativeTime renders t as "3 days ago", or "-" when unknown
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func renderVideoTable(videos []domain.Video) string {
	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{
			v.Token,
			v.Title,
			v.FormattedDuration(),
			v.FormattedViews(),
			dash(v.Author),
			relativeTime(v.AddedAt),
		})
	}
	return renderTable(
		[]string{"Token", "Title", "Length", "Views", "Author", "Added"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}

func renderPlaylistTable(playlists []domain.Playlist) string {
	rows := make([][]string, 0, len(playlists))
	for _, p := range playlists {
		rows = append(rows, []string{p.Token, p.Title, strconv.Itoa(p.MediaCount)})
	}
	return renderTable(
		[]string{"Token", "Title", "Videos"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}

func renderConnectionTable(results []search.Result[domain.Connection], activeID string, colorize bool) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		c := r.Item
		marker := ""
		if c.ID == activeID {
			marker = "*"
		}
		title := r.Title
		if colorize && len(r.MatchedIndexes) > 0 {
			title = highlightMatches(title, r.MatchedIndexes)
		}
		rows = append(rows, []string{
			marker,
			c.ID,
			title,
			c.URL,
			yesNo(c.Authenticated()),
		})
	}
	return renderTable(
		[]string{"", "ID", "Name", "URL", "Signed in"},
		rows,
		nil,
	)
}

// highlightMatches emphasizes the matched byte offsets of s for terminal output
func highlightMatches(s string, matched []int) string {
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}
	emph := lipgloss.NewStyle().Bold(true).Underline(true)

	var b strings.Builder
	for i, r := range s {
		if set[i] {
			b.WriteString(emph.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func renderVideoDetail(v domain.Video, streamURL string, colorize bool) string {
	var b strings.Builder
	fmt.Fprintln(&b, renderHeading(v.Title, colorize))
	fields := []struct{ label, value string }{
		{"Token", v.Token},
		{"Author", dash(v.Author)},
		{"Length", v.FormattedDuration()},
		{"Views", v.FormattedViews()},
		{"Added", relativeTime(v.AddedAt)},
		{"Type", dash(v.MediaType)},
		{"State", dash(v.State)},
		{"Stream", dash(streamURL)},
	}
	for _, f := range fields {
		fmt.Fprintf(&b, "  %-8s %s\n", f.label+":", f.value)
	}
	if desc := strings.TrimSpace(v.Description); desc != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, desc)
	}
	return b.String()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
