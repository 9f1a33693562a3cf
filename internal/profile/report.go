package profile

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WriteReport renders one table per category with per-item request counts,
// total and average times, and a totals footer. Items appear in
// first-observed order so the same event stream always produces the same
// report.
func WriteReport(w io.Writer, a *Accumulator) {
	stats := a.Stats()
	for _, category := range a.Categories() {
		items := stats[category]
		fmt.Fprintf(w, "\n%s\n", category)

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Item", "Requests", "Total", "Average", "Summary"})
		table.SetAutoFormatHeaders(false)
		table.SetBorder(false)
		table.SetAutoWrapText(false)

		var totalCount int
		var totalTime time.Duration
		for _, item := range a.Items(category) {
			rec := items[item]
			totalCount += rec.Count
			totalTime += rec.Total
			table.Append([]string{
				item,
				fmt.Sprintf("%d", rec.Count),
				formatMillis(rec.Total),
				formatAverage(rec),
				humanizeDuration(rec.Total),
			})
		}
		table.SetFooter([]string{
			"total",
			fmt.Sprintf("%d", totalCount),
			formatMillis(totalTime),
			"",
			humanizeDuration(totalTime),
		})
		table.Render()
	}
}

func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%d ms", d.Milliseconds())
}

// formatAverage guards the zero-count case with a placeholder rather than
// propagating a division error.
func formatAverage(rec Record) string {
	if rec.Count == 0 {
		return "-"
	}
	avg := rec.Total / time.Duration(rec.Count)
	return fmt.Sprintf("%.1f ms", float64(avg.Microseconds())/1000)
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "under a second"
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
