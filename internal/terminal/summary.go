package terminal

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Summary describes a finished run.
type Summary struct {
	Elements     int
	Snapshots    int
	Placements   int
	HistoryBytes uint64
	TraceBytes   uint64
	Retained     bool
	Duration     time.Duration
	Output       string
}

// WriteSummary prints s as a table.
func WriteSummary(w io.Writer, s Summary) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("Merge sort run")
	tbl.AppendHeader(table.Row{"Metric", "Value"})

	retained := "no (streamed)"
	if s.Retained {
		retained = "yes"
	}

	tbl.AppendRows([]table.Row{
		{"Elements", humanize.Comma(int64(s.Elements))},
		{"Snapshots", humanize.Comma(int64(s.Snapshots))},
		{"Placements", humanize.Comma(int64(s.Placements))},
		{"History retained", retained},
		{"Full history size", humanize.Bytes(s.HistoryBytes)},
		{"Compact trace size", humanize.Bytes(s.TraceBytes) + " (" + Ratio(s.TraceBytes, s.HistoryBytes) + ")"},
		{"Duration", s.Duration.Round(time.Microsecond).String()},
	})

	if s.Output != "" {
		tbl.AppendRow(table.Row{"Output", s.Output})
	}

	_, err := io.WriteString(w, tbl.Render()+"\n")
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// Ratio formats part/whole as a percentage, e.g. "12.5%".
func Ratio(part, whole uint64) string {
	if whole == 0 {
		return "0%"
	}

	return strconv.FormatFloat(float64(part)*100/float64(whole), 'f', 1, 64) + "%"
}
