package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"personalens/pkg/report"
)

var (
	accent = lipgloss.Color("#00FFFF")
	frame  = lipgloss.Color("#FF00FF")
	value  = lipgloss.Color("#FFFF00")
	muted  = lipgloss.Color("#B0B0B0")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(frame).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(frame).
			Foreground(lipgloss.Color("#0A0E27")).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(value)

	bioStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true).
			Width(56)
)

// plain strips colors from a style when colors are disabled
func plain(s lipgloss.Style) lipgloss.Style {
	if ColorEnabled() {
		return s
	}
	return s.UnsetForeground().UnsetBackground().UnsetBorderForeground().UnsetBold().UnsetItalic()
}

// SummaryPanel renders an account summary as a bordered panel
func SummaryPanel(s report.Summary) string {
	row := func(label, val string) string {
		return plain(labelStyle).Render(label) + plain(valueStyle).Render(val)
	}

	title := "@" + s.Username
	if s.DisplayName != "" {
		title = s.DisplayName + " " + title
	}

	rows := []string{plain(titleStyle).Render(title), ""}
	if s.Bio != "" {
		rows = append(rows, plain(bioStyle).Render(s.Bio), "")
	}
	if s.Joined != "" {
		rows = append(rows, row("Joined", s.Joined))
	}
	rows = append(rows,
		row("Followers", fmt.Sprint(s.Followers)),
		row("Following", fmt.Sprint(s.Following)),
		row("Posts", fmt.Sprint(s.TweetsCount)),
		row("Parsed", fmt.Sprintf("%d (%d with media)", s.TweetsParsed, s.MediaPosts)),
		row("Peak day", s.PeakDay),
		row("Peak hours", s.PeakHourUTC+" UTC"),
	)

	if len(s.TopPosts) > 0 {
		rows = append(rows, "", plain(labelStyle).Render("Top posts"))
		for i, p := range s.TopPosts {
			rows = append(rows, fmt.Sprintf("%d. %s %s", i+1, truncate(p.Text, 44),
				Dim(fmt.Sprintf("(♥ %d, ↻ %d)", p.Likes, p.Retweets))))
		}
	}

	return plain(panelStyle).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func truncate(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}
