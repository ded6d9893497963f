package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"personalens/pkg/errors"
	"personalens/pkg/patterns"
)

// briefWidth caps post text in report tables.
const briefWidth = 80

// Markdown renders account summaries as a Markdown report.
func Markdown(summaries []Summary, generated time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Account Report\n\n*Generated %s*\n\n", generated.UTC().Format("2006-01-02"))

	if len(summaries) == 0 {
		b.WriteString("No accounts analyzed.\n")
		return b.String()
	}

	b.WriteString("## Per-Account Analysis\n\n")
	for _, s := range summaries {
		writeAccount(&b, s)
	}
	return b.String()
}

func writeAccount(b *strings.Builder, s Summary) {
	title := "@" + s.Username
	if s.Username == "" {
		title = "Unknown account"
	}
	fmt.Fprintf(b, "### %s\n\n", title)

	if s.DisplayName != "" {
		fmt.Fprintf(b, "- **Name**: %s\n", s.DisplayName)
	}
	if s.Bio != "" {
		fmt.Fprintf(b, "- **Bio**: %s\n", s.Bio)
	}
	if s.Joined != "" {
		fmt.Fprintf(b, "- **Joined**: %s\n", s.Joined)
	}
	fmt.Fprintf(b, "- **Followers**: %d · **Following**: %d · **Posts**: %d\n", s.Followers, s.Following, s.TweetsCount)
	fmt.Fprintf(b, "- **Posts parsed**: %d (%d with media)\n", s.TweetsParsed, s.MediaPosts)
	fmt.Fprintf(b, "- **Peak posting**: %s, %s UTC\n\n", s.PeakDay, s.PeakHourUTC)

	if s.Patterns.Total > 0 {
		b.WriteString("| Day | Posts |\n|---|---|\n")
		for _, d := range patterns.Days {
			if n := s.Patterns.Days[d]; n > 0 {
				fmt.Fprintf(b, "| %s | %d |\n", d, n)
			}
		}
		b.WriteString("\n| Slot (UTC) | Posts |\n|---|---|\n")
		for _, slot := range patterns.Slots {
			if n := s.Patterns.Slots[slot]; n > 0 {
				fmt.Fprintf(b, "| %s | %d |\n", slot, n)
			}
		}
		b.WriteString("\n")
	}

	if len(s.TopPosts) > 0 {
		b.WriteString("#### Top posts\n\n| Post | Likes | Retweets | Replies |\n|---|---|---|---|\n")
		for _, p := range s.TopPosts {
			fmt.Fprintf(b, "| %s | %d | %d | %d |\n", cell(p.Text), p.Likes, p.Retweets, p.Replies)
		}
		b.WriteString("\n")
	}
}

// cell shortens text for a table cell and escapes pipes.
func cell(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > briefWidth {
		text = string(r[:briefWidth-1]) + "…"
	}
	if text == "" {
		return "(no text)"
	}
	return strings.ReplaceAll(text, "|", `\|`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: .3rem .6rem; text-align: left; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders a Markdown report into a standalone HTML page.
func HTML(md, title string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return "", errors.Wrap(errors.ErrorTypeRender, err, "convert markdown")
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeRender, err, "execute page template")
	}
	return out.String(), nil
}
