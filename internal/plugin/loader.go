package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dshills/calcshell/internal/logging"
	"github.com/dshills/calcshell/internal/plugin/lua"
)

// DefaultDir is the default plugins directory.
const DefaultDir = "plugins"

// Source identifies where a loaded plugin came from.
type Source int

const (
	// SourceCatalog is a compiled-in unit.
	SourceCatalog Source = iota
	// SourceScript is a Lua script in the plugins directory.
	SourceScript
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceCatalog:
		return "builtin"
	case SourceScript:
		return "script"
	default:
		return "unknown"
	}
}

// Loaded describes a plugin that has been loaded.
type Loaded struct {
	Name       string
	Source     Source
	Path       string
	Operations []Operation
	LoadedAt   time.Time
}

// Loader resolves plugin names and loads their operations.
type Loader struct {
	mu sync.Mutex

	catalog *Catalog
	dir     string
	timeout time.Duration
	logger  *logging.Logger

	loaded  map[string]*Loaded
	scripts map[string]*lua.Script
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCatalog sets the compiled-in units consulted before scripts.
func WithCatalog(c *Catalog) LoaderOption {
	return func(l *Loader) {
		l.catalog = c
	}
}

// WithDir sets the plugins directory.
func WithDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.dir = dir
	}
}

// WithTimeout sets the execution timeout for script plugins.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *logging.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a new plugin loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		catalog: NewCatalog(),
		dir:     DefaultDir,
		timeout: lua.DefaultExecutionTimeout,
		logger:  logging.Discard,
		loaded:  make(map[string]*Loaded),
		scripts: make(map[string]*lua.Script),
	}

	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent("plugin")

	return l
}

// Dir returns the plugins directory.
func (l *Loader) Dir() string {
	return l.dir
}

// Load resolves name and returns its operations. Catalog units take
// precedence over <dir>/<name>.lua, which takes precedence over
// <dir>/<name>/init.lua. Loading a name again replaces the earlier entry
// and closes the script state behind it, so operations returned by the
// earlier load fail with lua.ErrStateClosed.
func (l *Loader) Load(name string) (*Loaded, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		loaded *Loaded
		script *lua.Script
		err    error
	)
	if unit, ok := l.catalog.Lookup(name); ok {
		loaded = &Loaded{Name: name, Source: SourceCatalog, Operations: unit.Operations()}
	} else {
		loaded, script, err = l.loadScript(name)
		if err != nil {
			return nil, err
		}
	}

	loaded.Operations = publicOperations(loaded.Operations)
	if len(loaded.Operations) == 0 {
		if script != nil {
			_ = script.Close()
		}
		return nil, fmt.Errorf("%w: %s exposes no operations", ErrInvalidPlugin, name)
	}
	loaded.LoadedAt = time.Now()

	if _, again := l.loaded[name]; again {
		l.logger.Debug("reloading plugin %s", name)
	}
	if old := l.scripts[name]; old != nil {
		if err := old.Close(); err != nil {
			l.logger.Warn("closing previous state of %s: %v", name, err)
		}
		delete(l.scripts, name)
	}
	if script != nil {
		l.scripts[name] = script
	}
	l.loaded[name] = loaded

	l.logger.WithFields(map[string]any{
		"plugin": name,
		"source": loaded.Source.String(),
		"ops":    len(loaded.Operations),
	}).Info("plugin loaded")

	return loaded, nil
}

// loadScript locates and evaluates a Lua plugin. Caller must hold l.mu
// and owns the returned script.
func (l *Loader) loadScript(name string) (*Loaded, *lua.Script, error) {
	path, err := l.FindScript(name)
	if err != nil {
		return nil, nil, err
	}

	printLog := l.logger.WithField("plugin", name)
	script, err := lua.LoadScript(path,
		lua.WithExecutionTimeout(l.timeout),
		lua.WithPrint(func(s string) { printLog.Info("%s", s) }),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidPlugin, name, err)
	}

	ops := make([]Operation, 0, len(script.Functions))
	for _, fn := range script.Functions {
		ops = append(ops, Operation{
			Name:        fn.Name,
			Description: fmt.Sprintf("%s from %s", fn.Name, filepath.Base(path)),
			Arity:       Variadic,
			Fn:          fn.Call,
		})
	}

	return &Loaded{Name: name, Source: SourceScript, Path: path, Operations: ops}, script, nil
}

// FindScript returns the script path for name in the plugins directory.
func (l *Loader) FindScript(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(l.dir, name+".lua"),
		filepath.Join(l.dir, name, "init.lua"),
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrPluginNotFound, name)
}

// validateName rejects names that are empty or could leave the plugins
// directory.
func validateName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// publicOperations drops unnamed, unbound and underscore-prefixed
// operations.
func publicOperations(ops []Operation) []Operation {
	out := ops[:0:0]
	for _, op := range ops {
		if op.Name == "" || op.Fn == nil || strings.HasPrefix(op.Name, "_") {
			continue
		}
		out = append(out, op)
	}
	return out
}

// Get returns the loaded plugin registered under name.
func (l *Loader) Get(name string) (*Loaded, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	loaded, ok := l.loaded[name]
	return loaded, ok
}

// Names returns the names of loaded plugins, sorted.
func (l *Loader) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.loaded))
	for name := range l.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Discover returns the names of all loadable plugins: catalog units plus
// scripts in the plugins directory. A missing directory is not an error.
func (l *Loader) Discover() ([]string, error) {
	seen := make(map[string]bool)
	for _, name := range l.catalog.Names() {
		seen[name] = true
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading plugins directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			if filepath.Ext(entry.Name()) == ".lua" {
				seen[strings.TrimSuffix(entry.Name(), ".lua")] = true
			}
			continue
		}
		if _, err := os.Stat(filepath.Join(l.dir, entry.Name(), "init.lua")); err == nil {
			seen[entry.Name()] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close releases all script states. Operations from script plugins fail
// after Close.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for _, s := range l.scripts {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.scripts = make(map[string]*lua.Script)
	return errors.Join(errs...)
}
