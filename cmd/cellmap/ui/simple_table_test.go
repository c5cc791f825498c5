package ui

import (
	"strings"
	"testing"

	"cellmapper/internal/mapping"
)

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Test Table", []string{"Col1", "Col2"})
	table.AddRow("Row1Col1", "Row1Col2")

	view := table.View(NewStyles(LightTheme()))

	if !strings.Contains(view, "Test Table") {
		t.Error("View missing title")
	}
	if !strings.Contains(view, "Row1Col1") {
		t.Error("View missing cell content")
	}
}

func TestSimpleTable_Empty(t *testing.T) {
	table := NewSimpleTable("Empty", []string{"A"})
	if got := table.View(NewStyles(LightTheme())); got != "" {
		t.Errorf("expected empty view, got %q", got)
	}
	if got := table.Markdown(); got != "" {
		t.Errorf("expected empty markdown, got %q", got)
	}
}

func TestEntriesTable_Markdown(t *testing.T) {
	table := EntriesTable([]mapping.CellEntry{
		{Series: 1, ParallelGroup: 5, X: 1, Y: 1},
		{Series: 2, ParallelGroup: 2, X: 1, Y: 2},
	})

	want := "| Series | Group | X | Y |\n" +
		"| --- | --- | --- | --- |\n" +
		"| 1 | 5 | 1 | 1 |\n" +
		"| 2 | 2 | 1 | 2 |\n"
	if got := table.Markdown(); got != want {
		t.Errorf("Markdown() =\n%s\nwant\n%s", got, want)
	}
}
