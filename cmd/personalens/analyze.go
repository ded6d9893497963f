package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"personalens/pkg/patterns"
	"personalens/pkg/report"
	"personalens/pkg/storage"
	"personalens/pkg/ui"
)

var (
	// Report command flags
	reportHTML bool
	reportOut  string
	topPosts   int
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile [file|-]",
	Short: "Print the profile header found in a snapshot",
	Long: `Print the account profile found in a snapshot: display name, bio, join
date and the follower, following and post counters. With --format table the
profile is shown as a summary panel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, _, _, _, err := extractSnapshot(args)
		if err != nil {
			return err
		}
		if strings.ToLower(cfg.Output.Format) == "table" {
			fmt.Println(ui.SummaryPanel(report.FromExtraction(ext, cfg.Extraction.OwnOnly, cfg.Extraction.TopPosts)))
			return nil
		}
		return printValue(os.Stdout, cfg.Output.Format, ext.Profile)
	},
}

// PatternsOutput is the patterns command payload.
type PatternsOutput struct {
	Handle      string `json:"handle" yaml:"handle"`
	Records     int    `json:"records" yaml:"records"`
	PeakDay     string `json:"peak_day" yaml:"peak_day"`
	PeakHourUTC string `json:"peak_hour_utc" yaml:"peak_hour_utc"`

	Days  map[string]int `json:"days" yaml:"days"`
	Slots map[string]int `json:"slots" yaml:"slots"`
}

// patternsCmd represents the patterns command
var patternsCmd = &cobra.Command{
	Use:   "patterns [file|-]",
	Short: "Show when an account posts",
	Long: `Count posts per UTC weekday and per 4-hour UTC slot, and report the
busiest of each. Posts without a decodable timestamp are not counted. Ties go
to the earlier day or slot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, _, _, _, err := extractSnapshot(args)
		if err != nil {
			return err
		}

		p := patterns.Aggregate(ext.Records)
		out := PatternsOutput{
			Handle:      ext.Profile.Handle,
			Records:     p.Total,
			PeakDay:     patterns.PeakDay(p),
			PeakHourUTC: patterns.PeakSlot(p),
			Days:        p.Days,
			Slots:       p.Slots,
		}

		if strings.ToLower(cfg.Output.Format) != "table" {
			return printValue(os.Stdout, cfg.Output.Format, out)
		}

		t := newTable("BUCKET", "POSTS")
		for _, day := range patterns.Days {
			t.Row(day, fmt.Sprint(p.Days[day]))
		}
		for _, slot := range patterns.Slots {
			t.Row(slot+" UTC", fmt.Sprint(p.Slots[slot]))
		}
		fmt.Println(t.Render())
		ui.PrintInfo("Peak day", out.PeakDay)
		ui.PrintInfo("Peak hours", out.PeakHourUTC+" UTC")
		return nil
	},
}

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [file...]",
	Short: "Render a Markdown or HTML account report",
	Long: `Render an account report from one or more snapshots, one section per
snapshot. The report lists the profile, posting patterns and the top posts
ranked by likes plus three times retweets.`,
	Example: `  # Markdown to stdout
  personalens report timeline.txt --handle karpathy

  # HTML report for two accounts
  personalens report a.txt b.txt --html -o report.html`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(profileCmd, patternsCmd, reportCmd)

	for _, cmd := range []*cobra.Command{profileCmd, patternsCmd, reportCmd} {
		addSnapshotFlags(cmd)
	}
	profileCmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml or table")
	patternsCmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml or table")

	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "render HTML instead of Markdown")
	reportCmd.Flags().StringVarP(&reportOut, "output", "o", "", "write the report to a file instead of stdout")
	reportCmd.Flags().IntVar(&topPosts, "top", 0, "number of top posts to rank")
}

func runReport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{stdinName}
	}

	summaries := make([]report.Summary, 0, len(args))
	for _, arg := range args {
		ext, _, _, _, err := extractSnapshot([]string{arg})
		if err != nil {
			return err
		}
		summaries = append(summaries, report.FromExtraction(ext, cfg.Extraction.OwnOnly, cfg.Extraction.TopPosts))
	}

	content := report.Markdown(summaries, time.Now())
	if reportHTML {
		var err error
		if content, err = report.HTML(content, "Account Report"); err != nil {
			return err
		}
	}

	if reportOut == "" {
		_, err := fmt.Fprint(os.Stdout, content)
		return err
	}

	if err := storage.WriteAtomic(reportOut, []byte(content)); err != nil {
		return err
	}
	if !quiet {
		ui.PrintSuccess("Report written to %s", reportOut)
	}
	return nil
}
