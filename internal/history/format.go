package history

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// FormatTable renders records as a bordered table with a header row.
// An empty slice renders the header only.
func FormatTable(records []Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Fields())
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Header...).
		Rows(rows...)

	return t.String()
}
