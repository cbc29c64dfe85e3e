package dispatcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/calcshell/internal/calc"
	"github.com/dshills/calcshell/internal/dispatcher/handler"
	"github.com/dshills/calcshell/internal/history"
	"github.com/dshills/calcshell/internal/plugin"
	"github.com/dshills/calcshell/internal/plugin/builtin"
)

type fixture struct {
	d          *Dispatcher
	store      *history.Store
	pluginsDir string
}

func newFixture(t *testing.T, config Config) *fixture {
	t.Helper()
	dir := t.TempDir()

	catalog := plugin.NewCatalog()
	if err := builtin.Register(catalog); err != nil {
		t.Fatalf("builtin.Register() error = %v", err)
	}

	pluginsDir := filepath.Join(dir, "plugins")
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	loader := plugin.NewLoader(plugin.WithCatalog(catalog), plugin.WithDir(pluginsDir))
	t.Cleanup(func() { loader.Close() })

	store := history.Open(filepath.Join(dir, "history.csv"))
	return &fixture{
		d:          New(config, store, WithLoader(loader)),
		store:      store,
		pluginsDir: pluginsDir,
	}
}

func (f *fixture) run(line string) string {
	return Message(f.d.Execute(line))
}

func TestScenarioAddAndHistory(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	if got := f.run("add 10 5"); got != "Result: 15.0" {
		t.Errorf("add 10 5 = %q, want %q", got, "Result: 15.0")
	}

	out := f.run("history")
	for _, want := range []string{"add", "10", "5", "15.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}

	records := f.store.All()
	if len(records) != 1 || !records[0].Equal(history.NewRecord("add", 10, 5, 15)) {
		t.Errorf("store = %v, want [add 10 5 = 15.0]", records)
	}
}

func TestScenarioDivideByZero(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	r := f.d.Execute("divide 10 0")
	if !errors.Is(r.Error, calc.ErrDivisionByZero) {
		t.Errorf("divide 10 0 error = %v, want ErrDivisionByZero", r.Error)
	}
	if got := Message(r); !strings.Contains(got, "Cannot divide by zero") {
		t.Errorf("message = %q", got)
	}
	if f.store.Len() != 0 {
		t.Errorf("store has %d records, want 0", f.store.Len())
	}
	if f.d.State() != StateIdle {
		t.Errorf("State() = %v, want idle", f.d.State())
	}
}

func TestScenarioLoadSquareRoot(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	if got := f.run("load_plugin square_root"); !strings.HasPrefix(got, "Plugin 'square_root' loaded") {
		t.Errorf("load_plugin = %q", got)
	}
	if got := f.run("square_root 16"); got != "Result: 4.0" {
		t.Errorf("square_root 16 = %q, want Result: 4.0", got)
	}

	records := f.store.All()
	if len(records) != 1 {
		t.Fatalf("store has %d records, want 1", len(records))
	}
	want := history.NewUnaryRecord("square_root", 16, 4)
	if !records[0].Equal(want) {
		t.Errorf("record = %v, want %v", records[0], want)
	}
}

func TestScenarioClearHistory(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	f.run("add 1 2")
	f.run("multiply 3 4")
	if got := f.run("clear_history"); got != "History cleared." {
		t.Errorf("clear_history = %q", got)
	}
	if f.store.Len() != 0 {
		t.Errorf("store has %d records after clear", f.store.Len())
	}

	out := f.run("history")
	if strings.Contains(out, "multiply") || !strings.Contains(out, "operation") {
		t.Errorf("history after clear should show an empty table:\n%s", out)
	}
}

func TestScenarioUnknownCommand(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	before := f.d.Registry().List()

	r := f.d.Execute("foo 1 2")
	if !errors.Is(r.Error, ErrUnknownCommand) {
		t.Errorf("foo error = %v, want ErrUnknownCommand", r.Error)
	}
	if got := Message(r); !strings.HasPrefix(got, "Unknown command: foo") {
		t.Errorf("message = %q", got)
	}

	if after := f.d.Registry().List(); strings.Join(after, ",") != strings.Join(before, ",") {
		t.Errorf("command table changed: %v -> %v", before, after)
	}
	if got := f.run("subtract 5 3"); got != "Result: 2.0" {
		t.Errorf("subtract 5 3 = %q after unknown command", got)
	}
}

func TestScenarioUnresolvablePlugin(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	before := f.d.Registry().Count()

	r := f.d.Execute("load_plugin nonexistent")
	if !errors.Is(r.Error, plugin.ErrPluginNotFound) {
		t.Errorf("error = %v, want ErrPluginNotFound", r.Error)
	}
	if got := Message(r); !strings.HasPrefix(got, "Error loading plugin 'nonexistent'") {
		t.Errorf("message = %q", got)
	}
	if after := f.d.Registry().Count(); after != before {
		t.Errorf("command count = %d, want %d", after, before)
	}
}

func TestPluginOverridesBuiltin(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	script := `return { add = function(a, b) return a + b + 100 end }`
	if err := os.WriteFile(filepath.Join(f.pluginsDir, "shifted.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := f.run("load_plugin shifted"); !strings.Contains(got, "replaces add") {
		t.Errorf("load_plugin = %q, want override notice", got)
	}
	if got := f.run("add 1 2"); got != "Result: 103.0" {
		t.Errorf("add 1 2 = %q, want Result: 103.0", got)
	}
}

func TestLuaPluginOperation(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	script := `
local M = {}
function M.sq(x) return x * x end
function M._unused() return 0 end
return M
`
	if err := os.WriteFile(filepath.Join(f.pluginsDir, "squares.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	f.run("load_plugin squares")
	if got := f.run("sq 12"); got != "Result: 144.0" {
		t.Errorf("sq 12 = %q", got)
	}
	if f.d.Registry().Has("_unused") {
		t.Error("underscore function should not be registered")
	}
}

func TestReloadDropsRemovedOperations(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	path := filepath.Join(f.pluginsDir, "pair.lua")
	write := func(script string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write(`return { first = function(x) return x end, second = function(x) return x * 2 end }`)
	f.run("load_plugin pair")
	if got := f.run("second 4"); got != "Result: 8.0" {
		t.Fatalf("second 4 = %q", got)
	}

	write(`return { first = function(x) return x + 1 end }`)
	f.run("load_plugin pair")

	if got := f.run("first 4"); got != "Result: 5.0" {
		t.Errorf("first 4 after reload = %q, want Result: 5.0", got)
	}
	if got := f.run("second 4"); !strings.HasPrefix(got, "Unknown command: second") {
		t.Errorf("second 4 after reload = %q, want unknown command", got)
	}
}

func TestFactorialCoercion(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.run("load_plugin factorial")

	if got := f.run("factorial 5"); got != "Result: 120.0" {
		t.Errorf("factorial 5 = %q", got)
	}
	for _, line := range []string{"factorial 5.0", "factorial 3.5", "factorial x", "factorial -1"} {
		r := f.d.Execute(line)
		if !errors.Is(r.Error, calc.ErrInvalidArgument) {
			t.Errorf("%s error = %v, want ErrInvalidArgument", line, r.Error)
		}
	}
	if f.store.Len() != 1 {
		t.Errorf("store has %d records, want 1", f.store.Len())
	}
}

func TestOperationArgumentErrors(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	tests := []struct {
		line string
		want string
	}{
		{"add 1", "expects 2 operand(s), got 1"},
		{"add 1 2 3", "expects 2 operand(s), got 3"},
		{"add x 1", `"x" is not a number`},
		{"power -8 0.5", "not a real number"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := f.run(tt.line)
			if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, tt.want) {
				t.Errorf("%s = %q, want error containing %q", tt.line, got, tt.want)
			}
		})
	}

	if f.store.Len() != 0 {
		t.Errorf("failed operations recorded %d rows", f.store.Len())
	}
}

func TestExecuteNormalization(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	if r := f.d.Execute("   "); r.Status != handler.StatusNoOp || Message(r) != "" {
		t.Errorf("blank line = %+v, want no-op", r)
	}
	if got := f.run("  ADD   2   3  "); got != "Result: 5.0" {
		t.Errorf("ADD 2 3 = %q", got)
	}
	if got := f.run("power 2 10"); got != "Result: 1024.0" {
		t.Errorf("power 2 10 = %q", got)
	}
}

func TestQuit(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	r := f.d.Execute("quit")
	if !r.IsQuit() {
		t.Fatalf("quit status = %v", r.Status)
	}
	if f.d.State() != StateTerminated {
		t.Errorf("State() = %v, want terminated", f.d.State())
	}
	if r := f.d.Execute("add 1 2"); !errors.Is(r.Error, ErrTerminated) {
		t.Errorf("Execute after quit error = %v, want ErrTerminated", r.Error)
	}
}

func TestPanicRecovery(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.d.Register("boom", handler.HandlerFunc(func(handler.Command) handler.Result {
		panic("kaboom")
	}))

	r := f.d.Execute("boom")
	if !errors.Is(r.Error, ErrPanic) {
		t.Errorf("error = %v, want ErrPanic", r.Error)
	}
	if f.d.State() != StateIdle {
		t.Errorf("State() = %v, want idle", f.d.State())
	}
	if got := f.d.Metrics().Summary().Panics; got != 1 {
		t.Errorf("Summary().Panics = %d, want 1", got)
	}
}

func TestInvalidRecordPolicy(t *testing.T) {
	zero := plugin.Operation{
		Name:  "zero",
		Arity: 0,
		Fn:    func(...float64) (float64, error) { return 0, nil },
	}

	t.Run("drop", func(t *testing.T) {
		f := newFixture(t, DefaultConfig())
		f.d.RegisterOperation(zero)

		if got := f.run("zero"); got != "Result: 0.0" {
			t.Errorf("zero = %q, want Result: 0.0", got)
		}
		if f.store.Len() != 0 {
			t.Errorf("invalid record was stored")
		}
	})

	t.Run("warn", func(t *testing.T) {
		f := newFixture(t, DefaultConfig().WithInvalidRecords(PolicyWarn))
		f.d.RegisterOperation(zero)

		got := f.run("zero")
		if !strings.HasPrefix(got, "Result: 0.0\nWarning: calculation not recorded") {
			t.Errorf("zero = %q, want result with warning", got)
		}
		if f.store.Len() != 0 {
			t.Errorf("invalid record was stored")
		}
	})
}

func TestParseInvalidRecordPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    InvalidRecordPolicy
		wantErr bool
	}{
		{"", PolicyDrop, false},
		{"drop", PolicyDrop, false},
		{"warn", PolicyWarn, false},
		{"shout", PolicyDrop, true},
	}
	for _, tt := range tests {
		got, err := ParseInvalidRecordPolicy(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseInvalidRecordPolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestDegradedStoreKeepsWorking(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	store := history.Open(filepath.Join(blocker, "history.csv"))
	d := New(DefaultConfig(), store)

	if got := Message(d.Execute("add 2 2")); got != "Result: 4.0" {
		t.Errorf("add 2 2 = %q", got)
	}
	if got := Message(d.Execute("add 3 3")); got != "Result: 6.0" {
		t.Errorf("add 3 3 = %q", got)
	}
	if store.Len() != 2 {
		t.Errorf("in-memory store has %d records, want 2", store.Len())
	}
	if out := Message(d.Execute("history")); !strings.Contains(out, "not being saved") {
		t.Errorf("history should report degraded mode:\n%s", out)
	}
}

func TestHooks(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	var seen []string
	f.d.RegisterPostHook(PostDispatchFunc(func(cmd *handler.Command, r *handler.Result) {
		seen = append(seen, cmd.Name+":"+r.Status.String())
	}))
	f.d.RegisterPreHook(PreDispatchFunc(func(cmd *handler.Command) bool {
		return cmd.Name != "multiply"
	}))

	f.run("add 1 1")
	f.run("divide 1 0")
	f.run("nope")
	if r := f.d.Execute("multiply 2 2"); r.Status != handler.StatusNoOp {
		t.Errorf("cancelled command status = %v, want no-op", r.Status)
	}

	want := "add:ok,divide:error,nope:error"
	if got := strings.Join(seen, ","); got != want {
		t.Errorf("post hooks saw %s, want %s", got, want)
	}
	if f.store.Len() != 1 {
		t.Errorf("store has %d records, want 1", f.store.Len())
	}
}

func TestInformationalCommands(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.run("add 1 2")
	f.run("divide 1 0")
	f.run("load_plugin trig")

	stats := f.run("stats")
	if !strings.Contains(stats, "divide") || !strings.Contains(stats, "3 commands, 1 errors") {
		t.Errorf("stats output:\n%s", stats)
	}

	menu := f.run("menu")
	for _, want := range []string{"Available Commands", "add", "load_plugin", "tangent", "quit"} {
		if !strings.Contains(menu, want) {
			t.Errorf("menu missing %q:\n%s", want, menu)
		}
	}

	if got := f.run("help add"); got != "add <a> <b>: a + b" {
		t.Errorf("help add = %q", got)
	}
	if got := f.run("help nope"); !strings.HasPrefix(got, "Unknown command: nope") {
		t.Errorf("help nope = %q", got)
	}

	plugins := f.run("plugins")
	for _, want := range []string{"factorial", "square_root", "trig", "loaded (builtin)"} {
		if !strings.Contains(plugins, want) {
			t.Errorf("plugins missing %q:\n%s", want, plugins)
		}
	}
}

func TestTangentUndefined(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.run("load_plugin trig")

	if r := f.d.Execute("tangent 90"); !errors.Is(r.Error, calc.ErrUndefined) {
		t.Errorf("tangent 90 error = %v, want ErrUndefined", r.Error)
	}
	if got := f.run("tangent 45"); got != "Result: 1.0" && !strings.HasPrefix(got, "Result: 0.9999") {
		t.Errorf("tangent 45 = %q, want about 1", got)
	}
}

func TestLoadPowerAndSquarePlugins(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	if got := f.run("load_plugin power"); got != "Plugin 'power' loaded: power (replaces power)" {
		t.Errorf("load_plugin power = %q", got)
	}
	if got := f.run("power 2 -2"); got != "Result: 0.25" {
		t.Errorf("power 2 -2 = %q, want Result: 0.25", got)
	}

	if got := f.run("load_plugin square"); got != "Plugin 'square' loaded: square" {
		t.Errorf("load_plugin square = %q", got)
	}
	if got := f.run("square -2.5"); got != "Result: 6.25" {
		t.Errorf("square -2.5 = %q, want Result: 6.25", got)
	}
	if got := f.run("square x"); !strings.HasPrefix(got, "Error: ") {
		t.Errorf("square x = %q, want an error", got)
	}
	if f.store.Len() != 2 {
		t.Errorf("store has %d records, want 2", f.store.Len())
	}
}
