// Package observability provides formatted output utilities for run
// reporting.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/cmorand/tmharvest/internal/harvest"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted run output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunHeader announces a starting run: which strategy, which range,
// where the output goes.
func (p *Printer) PrintRunHeader(runID, strategy string, start, end int, outDir string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", runID))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", strategy))
	sb.WriteString(fmt.Sprintf("Range:    %d..%d (inclusive)\n", start, end))
	sb.WriteString(fmt.Sprintf("Output:   %s", outDir))
	p.printBox("HARVEST RUN", sb.String())
}

// PrintSummary reports the four run counters.
func (p *Printer) PrintSummary(stats harvest.Stats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Saved:    %d\n", stats.Ok))
	sb.WriteString(fmt.Sprintf("Missing:  %d\n", stats.Missing))
	sb.WriteString(fmt.Sprintf("Skipped:  %d\n", stats.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:   %d\n", stats.Failed))
	sb.WriteString(fmt.Sprintf("Total:    %d", stats.Total()))
	p.printBox("RUN SUMMARY", sb.String())
}
