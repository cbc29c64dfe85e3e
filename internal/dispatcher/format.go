package dispatcher

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dshills/calcshell/internal/calc"
	"github.com/dshills/calcshell/internal/dispatcher/handler"
)

// Message renders a result as the text shown to the user. It returns ""
// for results with nothing to show.
func Message(r handler.Result) string {
	switch r.Status {
	case handler.StatusError:
		return ErrorMessage(r.Error)
	case handler.StatusNoOp:
		return ""
	}

	if r.Calculation != nil {
		msg := "Result: " + calc.FormatResult(r.Calculation.Value)
		if r.Message != "" {
			msg += "\n" + r.Message
		}
		return msg
	}
	return r.Message
}

// ErrorMessage renders err for display.
func ErrorMessage(err error) string {
	if err == nil {
		return "Error: unknown error"
	}

	var loadErr *LoadError
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return err.Error() + ". Type 'menu' to see available commands."
	case errors.As(err, &loadErr):
		return loadErr.Error()
	default:
		return "Error: " + err.Error()
	}
}

// renderTable renders rows under headers with a plain border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}
