package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"personalens/pkg/archive"
	"personalens/pkg/errors"
	"personalens/pkg/models"
	"personalens/pkg/ui"
)

// textWidth caps post text in table output.
const textWidth = 60

// printValue writes v as indented JSON or YAML.
func printValue(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrorTypeRender, err, "failed to encode yaml")
		}
		return enc.Close()
	case "json", "table", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrorTypeRender, err, "failed to encode json")
		}
		return nil
	default:
		return errors.New(errors.ErrorTypeInput, "unknown format %q (want json, yaml or table)", format)
	}
}

func newTable(headers ...string) *table.Table {
	border := lipgloss.NewStyle()
	if ui.ColorEnabled() {
		border = border.Foreground(lipgloss.Color("8"))
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers(headers...)
}

// recordsTable renders records one per row.
func recordsTable(records []models.TweetRecord) string {
	t := newTable("ID", "POSTED (UTC)", "AUTHOR", "LIKES", "RT", "REPLIES", "TEXT")
	for _, r := range records {
		posted := "-"
		if at := r.PostedAt(); !at.IsZero() {
			posted = at.Format("2006-01-02 15:04")
		}
		t.Row(
			r.ID,
			posted,
			r.AuthorHandle.OrElse("-"),
			strconv.FormatUint(uint64(r.Likes), 10),
			strconv.FormatUint(uint64(r.Retweets), 10),
			strconv.FormatUint(uint64(r.Replies), 10),
			clip(r.Text, textWidth),
		)
	}
	return t.Render()
}

// runsTable renders archived runs one per row.
func runsTable(runs []archive.Run) string {
	t := newTable("RUN", "CREATED", "HANDLE", "STRATEGY", "RECORDS", "SOURCE")
	for _, r := range runs {
		handle := r.Handle
		if handle == "" {
			handle = "-"
		}
		t.Row(
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			handle,
			string(r.Strategy),
			strconv.Itoa(r.Records),
			r.Source,
		)
	}
	return t.Render()
}

// printExtraction writes an extraction in the requested format.
func printExtraction(w io.Writer, format string, ext *models.Extraction) error {
	if strings.ToLower(format) != "table" {
		return printValue(w, format, ext)
	}
	if len(ext.Records) == 0 {
		_, err := fmt.Fprintln(w, "No posts found.")
		return err
	}
	_, err := fmt.Fprintln(w, recordsTable(ext.Records))
	return err
}

func clip(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}
