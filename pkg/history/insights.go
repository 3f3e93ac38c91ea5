package history

import (
	"fmt"
	"strings"
	"time"
)

// Insight is a short observation derived from Stats.
type Insight struct {
	Title       string
	Description string
	Severity    string
}

// Insights derives observations from stats. Fewer than five runs produce
// none.
func Insights(stats Stats) []Insight {
	var insights []Insight
	if stats.TotalRuns < 5 {
		return insights
	}

	if stats.SuccessRate < 80 {
		insights = append(insights, Insight{
			Title:       "Low Success Rate",
			Description: fmt.Sprintf("Only %.1f%% of runs finished without diagnostics. Check templates with 'tmpl <name> --verbose'.", stats.SuccessRate),
			Severity:    "high",
		})
	}

	if stats.AvgDuration > 30*time.Second {
		insights = append(insights, Insight{
			Title:       "Slow Runs",
			Description: fmt.Sprintf("Runs average %s. Long command blocks dominate run time.", stats.AvgDuration.Round(time.Second)),
			Severity:    "medium",
		})
	}

	if stats.SuccessRate >= 90 && stats.Diagnostics == 0 {
		insights = append(insights, Insight{
			Title:       "Clean Runs",
			Description: "No diagnostics reported in this period.",
			Severity:    "low",
		})
	}

	return insights
}

// FormatInsight formats an insight for display
func FormatInsight(insight Insight) string {
	return fmt.Sprintf("[%s] %s: %s", insight.Severity, insight.Title, insight.Description)
}

// Summary returns a text summary of statistics
func Summary(stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "History Summary (%s):\n", stats.Period)
	fmt.Fprintf(&b, "- Runs: %d\n", stats.TotalRuns)
	fmt.Fprintf(&b, "- Success Rate: %.1f%%\n", stats.SuccessRate)
	fmt.Fprintf(&b, "- Average Run Duration: %s\n", stats.AvgDuration)
	fmt.Fprintf(&b, "- Diagnostics: %d\n", stats.Diagnostics)
	fmt.Fprintf(&b, "- Installs: %d, Removals: %d\n", stats.Installs, stats.Removals)

	if len(stats.TopTemplates) > 0 {
		b.WriteString("\nTop Templates:\n")
		for i, t := range stats.TopTemplates {
			fmt.Fprintf(&b, "  %d. %s: %d runs\n", i+1, t.Name, t.Count)
		}
	}

	return b.String()
}
