package lua

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Function is one exported function of a plugin script.
type Function struct {
	Name string
	fn   *lua.LFunction
	s    *State
}

// Call invokes the Lua function with numeric arguments.
func (f Function) Call(args ...float64) (float64, error) {
	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = lua.LNumber(a)
	}

	ret, err := f.s.CallFunction(f.fn, largs...)
	if err != nil {
		return 0, err
	}

	switch v := ret.(type) {
	case lua.LNumber:
		return float64(v), nil
	case lua.LString:
		// Lua coerces numeric strings in arithmetic; accept them here too.
		if n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s returned %s", ErrNotNumber, f.Name, ret.Type().String())
}

// Script is a loaded plugin script and the state that owns it.
type Script struct {
	Path      string
	Functions []Function

	state *State
}

// LoadScript evaluates the script at path in a fresh sandboxed state and
// collects the functions of the table it returns, sorted by name.
func LoadScript(path string, opts ...StateOption) (*Script, error) {
	state := NewState(opts...)

	ret, err := state.DoFile(path)
	if err != nil {
		state.Close()
		return nil, err
	}

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		state.Close()
		return nil, fmt.Errorf("%w, got %s", ErrNotTable, ret.Type().String())
	}

	script := &Script{Path: path, state: state}
	tbl.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || strings.HasPrefix(string(name), "_") {
			return
		}
		fn, ok := v.(*lua.LFunction)
		if !ok {
			return
		}
		script.Functions = append(script.Functions, Function{Name: string(name), fn: fn, s: state})
	})

	sort.Slice(script.Functions, func(i, j int) bool {
		return script.Functions[i].Name < script.Functions[j].Name
	})

	return script, nil
}

// Close releases the script's Lua state.
func (s *Script) Close() error {
	return s.state.Close()
}
