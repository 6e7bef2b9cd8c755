package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/custodia-labs/curator/internal/core/domain"
)

// renderReport prints one row per list and a totals footer.
func renderReport(w io.Writer, report *domain.BuildReport) {
	title := lipgloss.NewStyle()
	if !noColour && isTerminal(w) {
		title = title.Bold(true).Foreground(defaultPalette().Accent)
	}
	fmt.Fprintln(w, title.Render("Build "+report.Number))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"List", "Sources", "Entries", "Resolved", "Distributed", "Filtered", "Changed", "Score"})
	for _, l := range report.Lists {
		label := l.ID
		if l.Carried {
			label += " (carried)"
		}
		tw.AppendRow(reportRow(label, l))
	}
	if len(report.Lists) > 1 {
		totals := report.Totals()
		row := reportRow("total", totals)
		row[len(row)-1] = ""
		tw.AppendFooter(row)
	}
	tw.Render()
}

func reportRow(label string, l domain.ListReport) table.Row {
	return table.Row{
		label,
		fmt.Sprintf("%d/%d", l.Stats.SourcesProcessed, l.Stats.SourcesTotal),
		l.Stats.EntriesTotal,
		l.Stats.EntriesResolved,
		l.Distributed,
		l.Filtered,
		l.Changed,
		l.Score,
	}
}
