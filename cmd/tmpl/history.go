package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tmpl/pkg/history"
)

var historyLimit int

var errHistoryDisabled = errors.New("history is disabled (set history.enabled: true in the config)")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent installs, removals and runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer db.Close()

		events, err := db.Recent(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		printEvents(os.Stdout, events)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics",
	Example: `  tmpl stats            # Last 7 days
  tmpl stats --days 30  # Last 30 days`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		db, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(days)
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}

		fmt.Print(history.Summary(stats))
		insights := history.Insights(stats)
		if len(insights) > 0 {
			fmt.Println("\nInsights:")
			for _, i := range insights {
				fmt.Println("  " + history.FormatInsight(i))
			}
		}
		return nil
	},
}

func openHistoryDB() (*history.HistoryDB, error) {
	if !cfg.HistoryEnabled() {
		return nil, errHistoryDisabled
	}
	return history.NewHistoryDB(cfg.History.Path)
}

func printEvents(out io.Writer, events []history.Event) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tTEMPLATE\tRESULT\tDURATION\tDIRECTIVES\tDIAGNOSTICS")
	for _, e := range events {
		result := "ok"
		if !e.Success {
			result = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Kind, e.Template, result,
			e.Duration.Round(time.Millisecond), e.Directives, e.Diagnostics)
	}
	w.Flush()
}
