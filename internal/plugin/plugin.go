package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Variadic is the Arity of operations accepting any number of operands.
const Variadic = -1

// Func computes an operation result from its operands.
type Func func(args ...float64) (float64, error)

// Operation is a named computation contributed by a plugin.
type Operation struct {
	// Name is the command the operation is bound to.
	Name string

	// Description is shown by the help and menu commands.
	Description string

	// Arity is the exact operand count, or Variadic.
	Arity int

	// Integer requests integer-literal parsing of every operand.
	Integer bool

	// Fn performs the computation.
	Fn Func
}

// Plugin is a loadable unit of operations.
type Plugin interface {
	// Name returns the name the plugin is loaded by.
	Name() string

	// Operations returns the operations the plugin contributes.
	Operations() []Operation
}

// Unit is a Plugin built from a fixed operation list.
type Unit struct {
	UnitName string
	Ops      []Operation
}

// Name implements Plugin.
func (u *Unit) Name() string { return u.UnitName }

// Operations implements Plugin.
func (u *Unit) Operations() []Operation {
	ops := make([]Operation, len(u.Ops))
	copy(ops, u.Ops)
	return ops
}

// Catalog holds compiled-in plugins. It is thread-safe.
type Catalog struct {
	mu    sync.RWMutex
	units map[string]Plugin
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{units: make(map[string]Plugin)}
}

// Register adds p to the catalog.
func (c *Catalog) Register(p Plugin) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPlugin)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.units[p.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, p.Name())
	}
	c.units[p.Name()] = p
	return nil
}

// Lookup returns the unit registered under name.
func (c *Catalog) Lookup(name string) (Plugin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.units[name]
	return p, ok
}

// Names returns all unit names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.units))
	for name := range c.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
