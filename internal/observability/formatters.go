// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/richtext"
	"github.com/jonathan/resume-editor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
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

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMigration outputs a summary of a migrated document and the steps that produced it.
func (p *Printer) PrintMigration(doc *types.Document, report migration.Report) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From:     %s\n", report.From))
	sb.WriteString(fmt.Sprintf("Steps:    %s\n", strings.Join(report.Steps, " → ")))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(doc.Basics.Name)))
	sb.WriteString(fmt.Sprintf("Label:    %s\n", orDash(doc.Basics.Label)))
	sb.WriteString("\n")

	counts := []struct {
		label string
		n     int
	}{
		{"Work", len(doc.Work)},
		{"Volunteer", len(doc.Volunteer)},
		{"Education", len(doc.Education)},
		{"Projects", len(doc.Projects)},
		{"Skills", len(doc.Skills)},
		{"Profiles", len(doc.Basics.Profiles)},
	}
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("%-10s %d\n", c.label+":", c.n))
	}

	if len(doc.Basics.Profiles) > 0 {
		sb.WriteString("\nProfiles:\n")
		count := min(len(doc.Basics.Profiles), maxItemsToShow)
		for i := 0; i < count; i++ {
			prof := doc.Basics.Profiles[i]
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", prof.Network, prof.Username))
		}
		if len(doc.Basics.Profiles) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Basics.Profiles)-maxItemsToShow))
		}
	}

	if len(doc.Work) > 0 {
		sb.WriteString("\nWork:\n")
		count := min(len(doc.Work), maxItemsToShow)
		for i := 0; i < count; i++ {
			w := doc.Work[i]
			sb.WriteString(fmt.Sprintf("  • %s", orDash(w.Name)))
			if lead := firstLine(richtext.PlainText(w.Description)); lead != "" {
				sb.WriteString(": " + lead)
			}
			sb.WriteString("\n")
		}
		if len(doc.Work) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Work)-maxItemsToShow))
		}
	}

	p.printBox("MIGRATED DOCUMENT", sb.String())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// PrintLayout outputs the pages and corrective margins of a layout pass.
func (p *Printer) PrintLayout(layout types.Layout) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Capacity:   %.0fpx\n", layout.Capacity))
	sb.WriteString(fmt.Sprintf("Height:     %.0fpx\n", layout.ContentHeight))
	sb.WriteString(fmt.Sprintf("Pages:      %d\n", layout.PageCount))
	status := "converged"
	if !layout.Converged {
		status = "iteration cap reached"
	}
	sb.WriteString(fmt.Sprintf("Iterations: %d (%s)\n", layout.Iterations, status))

	if len(layout.Corrections) > 0 {
		ordinals := make([]int, 0, len(layout.Corrections))
		for ord := range layout.Corrections {
			ordinals = append(ordinals, ord)
		}
		sort.Ints(ordinals)

		sb.WriteString("\nCorrections:\n")
		count := min(len(ordinals), maxItemsToShow)
		for _, ord := range ordinals[:count] {
			sb.WriteString(fmt.Sprintf("  • block %d: +%.1fpx\n", ord, layout.Corrections[ord]))
		}
		if len(ordinals) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(ordinals)-maxItemsToShow))
		}
	}

	p.printBox("PAGE LAYOUT", sb.String())
}

// PrintBatchSummary outputs the result of migrating several files.
func (p *Printer) PrintBatchSummary(total int, byVersion map[migration.Version]int, failed []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Files:         %d\n", total))
	for _, v := range []migration.Version{migration.VersionLegacy, migration.VersionIntermediate, migration.VersionCurrent} {
		sb.WriteString(fmt.Sprintf("%-14s %d\n", v.String()+":", byVersion[v]))
	}
	sb.WriteString(fmt.Sprintf("Failed:        %d\n", len(failed)))
	count := min(len(failed), maxItemsToShow)
	for _, name := range failed[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", name))
	}
	if len(failed) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxItemsToShow))
	}

	p.printBox("BATCH MIGRATION", sb.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
