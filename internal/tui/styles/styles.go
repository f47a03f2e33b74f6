package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Accent     = lipgloss.Color("#2E8BC0")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle     lipgloss.Style
	SubtitleStyle  lipgloss.Style
	DimStyle       lipgloss.Style
	AccentStyle    lipgloss.Style
	ErrorStyle     lipgloss.Style
	SuccessStyle   lipgloss.Style
	HighlightStyle lipgloss.Style
)

// Tab bar styles
var (
	ActiveTabStyle   lipgloss.Style
	InactiveTabStyle lipgloss.Style
)

// List item styles
var (
	SelectedItemStyle           lipgloss.Style
	NormalItemStyle             lipgloss.Style
	MatchHighlightStyle         lipgloss.Style
	MatchHighlightSelectedStyle lipgloss.Style
)

// Panel and notice styles
var (
	DetailStyle  lipgloss.Style
	ModalStyle   lipgloss.Style
	NoticeStyle  lipgloss.Style
	SpinnerStyle lipgloss.Style
	FilterStyle  lipgloss.Style
)

func init() {
	UseTheme("default")
}

// UseTheme rebuilds every style for the named theme.
// "mono" drops colors; anything else uses the default palette.
func UseTheme(name string) {
	accent, fg, dim, bg := lipgloss.TerminalColor(Accent), lipgloss.TerminalColor(LightGray), lipgloss.TerminalColor(DimGray), lipgloss.TerminalColor(SlateLight)
	errColor, okColor := lipgloss.TerminalColor(Red), lipgloss.TerminalColor(Green)
	if strings.EqualFold(name, "mono") {
		none := lipgloss.NoColor{}
		accent, fg, dim, bg, errColor, okColor = none, none, none, none, none, none
	}

	TitleStyle = lipgloss.NewStyle().Foreground(White).Bold(true)
	SubtitleStyle = lipgloss.NewStyle().Foreground(fg)
	DimStyle = lipgloss.NewStyle().Foreground(dim)
	AccentStyle = lipgloss.NewStyle().Foreground(accent)
	ErrorStyle = lipgloss.NewStyle().Foreground(errColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(okColor)
	HighlightStyle = lipgloss.NewStyle().Foreground(White).Background(accent).Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
		Foreground(White).
		Background(accent).
		Bold(true).
		Padding(0, 1)
	InactiveTabStyle = lipgloss.NewStyle().
		Foreground(dim).
		Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(White).
		Background(bg).
		Bold(strings.EqualFold(name, "mono"))
	NormalItemStyle = lipgloss.NewStyle().Foreground(fg)
	MatchHighlightStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	MatchHighlightSelectedStyle = lipgloss.NewStyle().Foreground(accent).Background(bg).Bold(true)

	DetailStyle = lipgloss.NewStyle().Padding(1, 2)
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	NoticeStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(errColor).
		Padding(0, 1)
	SpinnerStyle = lipgloss.NewStyle().Foreground(accent)
	FilterStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
}

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:min(width, len(runes))])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// Highlight renders text with the bytes at matchedIndexes emphasized.
// Consecutive characters with the same style are rendered together.
func Highlight(text string, matchedIndexes []int, selected bool) string {
	base, match := NormalItemStyle, MatchHighlightStyle
	if selected {
		base, match = SelectedItemStyle, MatchHighlightSelectedStyle
	}
	if len(matchedIndexes) == 0 {
		return base.Render(text)
	}

	matchSet := make(map[int]bool, len(matchedIndexes))
	for _, idx := range matchedIndexes {
		matchSet[idx] = true
	}

	var b, run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMatched {
			b.WriteString(match.Render(run.String()))
		} else {
			b.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}

	for i, r := range text {
		matched := matchSet[i]
		if matched != runMatched {
			flush()
			runMatched = matched
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}
