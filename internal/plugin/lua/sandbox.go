package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts what a plugin script can reach.
type Sandbox struct {
	L        *lua.LState
	printFn  func(string)
	requires map[string]bool
}

// NewSandbox creates a sandbox for L. printFn receives print output;
// nil discards it.
func NewSandbox(L *lua.LState, printFn func(string)) *Sandbox {
	return &Sandbox{
		L:       L,
		printFn: printFn,
		requires: map[string]bool{
			"string": true,
			"table":  true,
			"math":   true,
		},
	}
}

// Install applies the sandbox restrictions to the Lua state.
func (sb *Sandbox) Install() {
	L := sb.L

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "package", "module", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("require", L.NewFunction(sb.require))
	L.SetGlobal("print", L.NewFunction(sb.print))
}

// AllowsModule reports whether require(name) resolves inside the sandbox.
func (sb *Sandbox) AllowsModule(name string) bool {
	return sb.requires[name]
}

// require resolves only the whitelisted standard library tables.
func (sb *Sandbox) require(L *lua.LState) int {
	name := L.CheckString(1)
	if !sb.requires[name] {
		L.RaiseError("module '%s' is not available in plugins", name)
		return 0
	}
	L.Push(L.GetGlobal(name))
	return 1
}

func (sb *Sandbox) print(L *lua.LState) int {
	if sb.printFn == nil {
		return 0
	}
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	sb.printFn(strings.Join(parts, "\t"))
	return 0
}
