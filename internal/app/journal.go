package app

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dshills/calcshell/internal/dispatcher/handler"
)

const defaultJournalLines = 10

// journalLine records every dispatched line. Journal failures are logged
// and never block the command.
func (app *Application) journalLine(cmd *handler.Command) bool {
	if _, err := app.journal.Add(cmd.Line); err != nil {
		app.logger.Warn("journal: %v", err)
	}
	return true
}

func (app *Application) cmdJournal(cmd handler.Command) handler.Result {
	n := defaultJournalLines
	if len(cmd.Args) > 1 {
		return handler.Errorf("usage: journal [n]")
	}
	if len(cmd.Args) == 1 {
		v, err := strconv.Atoi(cmd.Args[0])
		if err != nil || v <= 0 {
			return handler.Errorf("journal: %q is not a positive count", cmd.Args[0])
		}
		n = v
	}

	// The journal command itself is the newest entry; skip it.
	entries, err := app.journal.Recent(n + 1)
	if err != nil {
		return handler.Error(err)
	}
	if len(entries) > 0 {
		entries = entries[:len(entries)-1]
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		session := "earlier"
		if e.Session == app.session {
			session = "current"
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Seq),
			e.Time.Format("2006-01-02 15:04:05"),
			session,
			e.Line,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "time", "session", "line").
		Rows(rows...)
	return handler.SuccessWithMessage(t.String())
}
