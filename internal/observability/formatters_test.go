package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-editor/internal/migration"
	"github.com/jonathan/resume-editor/internal/types"
)

func TestPrintMigration(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := types.NewDocument()
	doc.Basics.Name = "Jane Doe"
	doc.Basics.Profiles = []types.Profile{{Network: "GitHub", Username: "janedoe"}}
	doc.Work = []types.Work{
		{Name: "Acme", Description: "<p>Led   team</p><ul><li>Shipped X</li></ul>"},
		{Name: "Globex"},
	}

	p.PrintMigration(doc, migration.Report{From: migration.VersionLegacy, Steps: []string{"lift-legacy", "normalize"}})
	output := buf.String()

	assert.Contains(t, output, "MIGRATED DOCUMENT")
	assert.Contains(t, output, "legacy")
	assert.Contains(t, output, "lift-legacy → normalize")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "Work:      2")
	assert.Contains(t, output, "GitHub: janedoe")
	assert.Contains(t, output, "• Acme: Led team")
	assert.NotContains(t, output, "<p>")
	assert.Contains(t, output, "• Globex")
	assert.NotContains(t, output, "Globex:")
}

func TestPrintMigration_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMigration(nil, migration.Report{})
	assert.Empty(t, buf.String())
}

func TestPrintLayout(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLayout(types.Layout{
		Capacity:      1043,
		ContentHeight: 2200,
		PageCount:     3,
		Corrections:   map[int]float64{4: 20, 1: 143},
		Iterations:    3,
		Converged:     true,
	})
	output := buf.String()

	assert.Contains(t, output, "PAGE LAYOUT")
	assert.Contains(t, output, "Pages:      3")
	assert.Contains(t, output, "converged")
	assert.Less(t, strings.Index(output, "block 1: +143.0px"), strings.Index(output, "block 4: +20.0px"))
}

func TestPrintLayout_CapReached(t *testing.T) {
	var buf bytes.Buffer
	corrections := map[int]float64{}
	for i := 0; i < 8; i++ {
		corrections[i] = 10
	}
	NewPrinter(&buf).PrintLayout(types.Layout{Capacity: 100, PageCount: 1, Corrections: corrections, Iterations: 15})

	output := buf.String()
	assert.Contains(t, output, "iteration cap reached")
	assert.Contains(t, output, "... and 3 more")
}

func TestPrintBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintBatchSummary(4, map[migration.Version]int{
		migration.VersionLegacy:  2,
		migration.VersionCurrent: 1,
	}, []string{"broken.json"})

	output := buf.String()
	assert.Contains(t, output, "BATCH MIGRATION")
	assert.Contains(t, output, "legacy:")
	assert.Contains(t, output, "Failed:        1")
	assert.Contains(t, output, "broken.json")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("TITLE", strings.Repeat("x", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
