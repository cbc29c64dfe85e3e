package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/calcshell/internal/plugin/lua"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func doubleUnit() *Unit {
	return &Unit{
		UnitName: "double",
		Ops: []Operation{
			{Name: "double", Arity: 1, Fn: func(args ...float64) (float64, error) { return args[0] * 2, nil }},
			{Name: "_internal", Arity: 0, Fn: func(args ...float64) (float64, error) { return 0, nil }},
		},
	}
}

func TestLoaderCatalogUnit(t *testing.T) {
	catalog := NewCatalog()
	if err := catalog.Register(doubleUnit()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	l := NewLoader(WithCatalog(catalog), WithDir(t.TempDir()))
	defer l.Close()

	loaded, err := l.Load("double")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Source != SourceCatalog {
		t.Errorf("Source = %v, want builtin", loaded.Source)
	}
	if len(loaded.Operations) != 1 || loaded.Operations[0].Name != "double" {
		t.Fatalf("Operations = %+v, want only double", loaded.Operations)
	}
	if got, _ := loaded.Operations[0].Fn(4); got != 8 {
		t.Errorf("double(4) = %v, want 8", got)
	}
}

func TestLoaderCatalogWinsOverScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "double.lua"), `return { triple = function(x) return x * 3 end }`)

	catalog := NewCatalog()
	catalog.Register(doubleUnit())

	l := NewLoader(WithCatalog(catalog), WithDir(dir))
	defer l.Close()

	loaded, err := l.Load("double")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Source != SourceCatalog {
		t.Errorf("Source = %v, want builtin", loaded.Source)
	}
}

func TestLoaderScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "square.lua"), `
local M = {}
function M.square(x) return x * x end
function M._check(x) return x end
return M
`)

	l := NewLoader(WithDir(dir))
	defer l.Close()

	loaded, err := l.Load("square")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Source != SourceScript || loaded.Path != filepath.Join(dir, "square.lua") {
		t.Errorf("Source, Path = %v, %q", loaded.Source, loaded.Path)
	}
	if len(loaded.Operations) != 1 {
		t.Fatalf("Operations = %+v, want one", loaded.Operations)
	}

	op := loaded.Operations[0]
	if op.Name != "square" || op.Arity != Variadic {
		t.Errorf("op = %s arity %d, want square variadic", op.Name, op.Arity)
	}
	if got, err := op.Fn(9); err != nil || got != 81 {
		t.Errorf("square(9) = %v, %v; want 81", got, err)
	}
}

func TestLoaderInitScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "geometry", "init.lua"), `
return {
  hypot = function(a, b) return math.sqrt(a * a + b * b) end,
}
`)

	l := NewLoader(WithDir(dir))
	defer l.Close()

	loaded, err := l.Load("geometry")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, _ := loaded.Operations[0].Fn(3, 4); got != 5 {
		t.Errorf("hypot(3, 4) = %v, want 5", got)
	}
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.lua"), `return {`)
	writeFile(t, filepath.Join(dir, "number.lua"), `return 1`)
	writeFile(t, filepath.Join(dir, "empty.lua"), `return { _hidden = function() return 1 end, x = 2 }`)
	writeFile(t, filepath.Join(dir, "boom.lua"), `error("bad plugin")`)

	l := NewLoader(WithDir(dir))
	defer l.Close()

	tests := []struct {
		name string
		want error
	}{
		{"missing", ErrPluginNotFound},
		{"broken", ErrInvalidPlugin},
		{"number", ErrInvalidPlugin},
		{"empty", ErrInvalidPlugin},
		{"boom", ErrInvalidPlugin},
		{"", ErrInvalidName},
		{"../etc", ErrInvalidName},
		{"a/b", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Load(tt.name)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load(%q) error = %v, want %v", tt.name, err, tt.want)
			}
		})
	}

	if names := l.Names(); len(names) != 0 {
		t.Errorf("Names() = %v after failed loads, want none", names)
	}
}

func TestLoaderReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "k.lua")
	writeFile(t, path, `return { k = function() return 1 end }`)

	l := NewLoader(WithDir(dir))
	defer l.Close()

	first, err := l.Load("k")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	writeFile(t, path, `return { k = function() return 2 end }`)
	second, err := l.Load("k")
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if got, _ := second.Operations[0].Fn(); got != 2 {
		t.Errorf("reloaded k() = %v, want 2", got)
	}
	if _, err := first.Operations[0].Fn(); !errors.Is(err, lua.ErrStateClosed) {
		t.Errorf("first k() error = %v, want the replaced state closed", err)
	}

	got, ok := l.Get("k")
	if !ok || got != second {
		t.Error("Get(k) should return the latest load")
	}
	if names := l.Names(); len(names) != 1 || names[0] != "k" {
		t.Errorf("Names() = %v, want [k]", names)
	}
}

func TestLoaderDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "square.lua"), `return {}`)
	writeFile(t, filepath.Join(dir, "geometry", "init.lua"), `return {}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `ignored`)
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}

	catalog := NewCatalog()
	catalog.Register(doubleUnit())

	l := NewLoader(WithCatalog(catalog), WithDir(dir))

	names, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got := strings.Join(names, ","); got != "double,geometry,square" {
		t.Errorf("Discover() = %s, want double,geometry,square", got)
	}
}

func TestLoaderDiscoverMissingDir(t *testing.T) {
	l := NewLoader(WithDir(filepath.Join(t.TempDir(), "none")))

	names, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Discover() = %v, want empty", names)
	}
}

func TestCatalogRegister(t *testing.T) {
	c := NewCatalog()

	if err := c.Register(&Unit{}); !errors.Is(err, ErrInvalidPlugin) {
		t.Errorf("Register(unnamed) error = %v, want ErrInvalidPlugin", err)
	}
	if err := c.Register(doubleUnit()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := c.Register(doubleUnit()); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate Register() error = %v, want ErrAlreadyRegistered", err)
	}
	if _, ok := c.Lookup("double"); !ok {
		t.Error("Lookup(double) = false")
	}
}

func TestUnitOperationsCopy(t *testing.T) {
	u := doubleUnit()
	ops := u.Operations()
	ops[0].Name = "changed"

	if u.Ops[0].Name != "double" {
		t.Error("Operations() should return a copy")
	}
}

func TestLoaderReloadKeepsStateOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "k.lua")
	writeFile(t, path, `return { k = function() return 1 end }`)

	l := NewLoader(WithDir(dir))
	defer l.Close()

	first, err := l.Load("k")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	writeFile(t, path, `return { _hidden = function() return 2 end }`)
	if _, err := l.Load("k"); !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("second Load() error = %v, want ErrInvalidPlugin", err)
	}

	if got, err := first.Operations[0].Fn(); err != nil || got != 1 {
		t.Errorf("k() after failed reload = %v, %v; want 1", got, err)
	}
}
