package dispatcher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/calcshell/internal/calc"
	"github.com/dshills/calcshell/internal/dispatcher/handler"
	"github.com/dshills/calcshell/internal/plugin"
)

// Arithmetic returns the built-in two-operand operations.
func Arithmetic() []plugin.Operation {
	total := func(fn func(a, b float64) float64) plugin.Func {
		return func(args ...float64) (float64, error) {
			return fn(args[0], args[1]), nil
		}
	}
	partial := func(fn func(a, b float64) (float64, error)) plugin.Func {
		return func(args ...float64) (float64, error) {
			return fn(args[0], args[1])
		}
	}

	return []plugin.Operation{
		{Name: "add", Description: "add <a> <b>: a + b", Arity: 2, Fn: total(calc.Add)},
		{Name: "subtract", Description: "subtract <a> <b>: a - b", Arity: 2, Fn: total(calc.Subtract)},
		{Name: "multiply", Description: "multiply <a> <b>: a * b", Arity: 2, Fn: total(calc.Multiply)},
		{Name: "divide", Description: "divide <a> <b>: a / b", Arity: 2, Fn: partial(calc.Divide)},
		{Name: "power", Description: "power <base> <exponent>: base raised to exponent", Arity: 2, Fn: partial(calc.Power)},
	}
}

// registerBuiltins populates the command table at construction.
func (d *Dispatcher) registerBuiltins() {
	for _, op := range Arithmetic() {
		d.registry.Register(op.Name, NewOperationHandler(op))
	}

	builtins := []struct {
		name  string
		usage string
		fn    func(handler.Command) handler.Result
	}{
		{"history", "history: show recorded calculations", d.cmdHistory},
		{"clear_history", "clear_history: delete all recorded calculations", d.cmdClearHistory},
		{"load_plugin", "load_plugin <name>: load a plugin and register its operations", d.cmdLoadPlugin},
		{"plugins", "plugins: list available and loaded plugins", d.cmdPlugins},
		{"menu", "menu: list available commands", d.cmdMenu},
		{"help", "help <command>: describe a command", d.cmdHelp},
		{"stats", "stats: show command usage", d.cmdStats},
		{"quit", "quit: exit the calculator", d.cmdQuit},
	}
	for _, b := range builtins {
		d.registry.Register(b.name, handler.NewSimpleHandler(b.usage, b.fn))
	}
}

func (d *Dispatcher) cmdHistory(cmd handler.Command) handler.Result {
	msg := d.store.Format()
	if d.store.Degraded() {
		msg += "\n(history is not being saved to disk: " + d.store.LastError().Error() + ")"
	}
	return handler.SuccessWithMessage(msg)
}

func (d *Dispatcher) cmdClearHistory(cmd handler.Command) handler.Result {
	d.store.Clear()
	return handler.SuccessWithMessage("History cleared.")
}

func (d *Dispatcher) cmdLoadPlugin(cmd handler.Command) handler.Result {
	if len(cmd.Args) != 1 {
		return handler.Errorf("usage: load_plugin <name>")
	}
	name := cmd.Args[0]

	loaded, overridden, err := d.LoadPlugin(name)
	if err != nil {
		return handler.Error(&LoadError{Name: name, Err: err})
	}

	ops := make([]string, len(loaded.Operations))
	for i, op := range loaded.Operations {
		ops[i] = normalize(op.Name)
	}

	msg := fmt.Sprintf("Plugin '%s' loaded: %s", name, strings.Join(ops, ", "))
	if len(overridden) > 0 {
		msg += fmt.Sprintf(" (replaces %s)", strings.Join(overridden, ", "))
	}
	return handler.SuccessWithMessage(msg)
}

func (d *Dispatcher) cmdPlugins(cmd handler.Command) handler.Result {
	if d.loader == nil {
		return handler.Error(ErrNoLoader)
	}

	available, err := d.loader.Discover()
	if err != nil {
		return handler.Error(err)
	}

	rows := make([][]string, 0, len(available))
	for _, name := range available {
		status := "available"
		if loaded, ok := d.loader.Get(name); ok {
			status = "loaded (" + loaded.Source.String() + ")"
		}
		rows = append(rows, []string{name, status})
	}
	return handler.SuccessWithMessage(renderTable([]string{"plugin", "status"}, rows))
}

func (d *Dispatcher) cmdMenu(cmd handler.Command) handler.Result {
	names := d.registry.List()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, handler.Describe(d.registry.Get(name))})
	}
	return handler.SuccessWithMessage("Available Commands:\n" + renderTable([]string{"command", "usage"}, rows))
}

func (d *Dispatcher) cmdHelp(cmd handler.Command) handler.Result {
	if len(cmd.Args) != 1 {
		return handler.Errorf("usage: help <command>")
	}
	name := normalize(cmd.Args[0])

	h := d.registry.Get(name)
	if h == nil {
		return handler.Error(fmt.Errorf("%w: %s", ErrUnknownCommand, name))
	}
	if desc := handler.Describe(h); desc != "" {
		return handler.SuccessWithMessage(desc)
	}
	return handler.SuccessWithMessage(name + ": no description")
}

func (d *Dispatcher) cmdStats(cmd handler.Command) handler.Result {
	if d.metrics == nil {
		return handler.Error(errors.New("metrics are disabled"))
	}

	usage := d.metrics.ByCalls(-1)
	rows := make([][]string, 0, len(usage))
	for _, u := range usage {
		rows = append(rows, []string{
			u.Name,
			strconv.FormatUint(u.Calls, 10),
			strconv.FormatUint(u.Errors, 10),
			strconv.FormatUint(u.Recorded, 10),
			u.Average().Round(time.Microsecond).String(),
		})
	}

	sum := d.metrics.Summary()
	summary := fmt.Sprintf("%d commands, %d errors, %d panics recovered, %d calculations recorded",
		sum.Commands, sum.Errors, sum.Panics, sum.Recorded)
	if sum.Unrecorded > 0 {
		summary += fmt.Sprintf(" (%d not recorded)", sum.Unrecorded)
	}
	return handler.SuccessWithMessage(renderTable([]string{"command", "calls", "errors", "recorded", "avg"}, rows) + "\n" + summary)
}

func (d *Dispatcher) cmdQuit(cmd handler.Command) handler.Result {
	return handler.Quit("Goodbye!")
}
