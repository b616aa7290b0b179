package main

import (
	"fmt"
	"io"

	"AlgoReport/internal/domain/models"
	"AlgoReport/internal/service/report"

	"github.com/olekukonko/tablewriter"
)

var summaryHeader = []string{"Symbol", "Signal", "Close", "Entry", "Exit", "Stop", "Conclusion"}

// writeSummary prints one row per symbol followed by the report path.
func writeSummary(w io.Writer, s *models.RunSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(summaryHeader)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range s.Results {
		table.Append(summaryRow(r))
	}
	table.Render()

	fmt.Fprintf(w, "run %s: %d symbols\n", s.RunID, len(s.Results))
	if s.Report != "" {
		fmt.Fprintf(w, "report: %s\n", s.Report)
	}
}

func summaryRow(r models.SignalRecord) []string {
	if r.Error != "" {
		return []string{r.Symbol, "ERROR", "-", "-", "-", "-", r.Error}
	}
	return []string{
		r.Symbol,
		r.Traffic,
		price(r.Close),
		price(r.Entry),
		price(r.Exit),
		price(r.Stop),
		r.Conclusion,
	}
}

func price(p *float64) string {
	return report.FormatPrice(models.FromFloat(p))
}
