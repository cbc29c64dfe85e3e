package app

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/calcshell/internal/dispatcher"
	"github.com/dshills/calcshell/internal/dispatcher/handler"
)

const banner = "Calculator ready. Type 'menu' to see available commands."

// styles colors REPL output. The renderer drops colors when the output is
// not a terminal.
type styles struct {
	result lipgloss.Style
	err    lipgloss.Style
	prompt lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		result: r.NewStyle().Bold(true),
		err:    r.NewStyle().Foreground(lipgloss.Color("9")),
		prompt: r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// Run reads lines until quit or end of input. Command failures are
// printed and the loop continues; only a read error is returned.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	showPrompt := app.interactive || app.cfg.REPL.ForcePrompt
	if app.interactive {
		fmt.Fprintln(app.out, banner)
	}

	app.logger.Info("session started")
	scanner := bufio.NewScanner(app.in)
	for {
		if showPrompt {
			fmt.Fprint(app.out, app.styles.prompt.Render(app.cfg.REPL.Prompt))
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			if showPrompt {
				fmt.Fprintln(app.out)
			}
			app.logger.Info("session ended: end of input")
			return nil
		}

		result := app.dispatcher.Execute(scanner.Text())
		app.print(result)

		if result.IsQuit() {
			app.logger.Info("session ended: quit")
			return nil
		}
	}
}

// print writes the rendered result, if any.
func (app *Application) print(r handler.Result) {
	msg := dispatcher.Message(r)
	if msg == "" {
		return
	}

	switch {
	case r.IsError():
		msg = app.styles.err.Render(msg)
	case r.Calculation != nil:
		first, rest, _ := strings.Cut(msg, "\n")
		msg = app.styles.result.Render(first)
		if rest != "" {
			msg += "\n" + rest
		}
	}
	fmt.Fprintln(app.out, msg)
}
