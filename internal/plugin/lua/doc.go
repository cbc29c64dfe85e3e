// Package lua runs calculator plugins written in Lua.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management
//   - Execution timeouts enforced through the state's context
//   - Loading of script plugins that return a table of functions
//
// # Script contract
//
// A plugin script is evaluated once and must return a table. Every entry
// whose key is a string not starting with "_" and whose value is a function
// becomes an operation:
//
//	local M = {}
//
//	local function clamp(x) return math.max(x, 0) end
//
//	function M.square(x)
//	    return x * x
//	end
//
//	M._scale = 2 -- internal, not exported
//
//	return M
//
// Operations receive their operands as numbers and must return one number.
// Calling error("message") reports message to the user.
//
// # Sandbox
//
// Scripts run without the io, os, debug and package libraries. dofile,
// loadfile, load and loadstring are removed, and require only resolves the
// string, table and math modules.
package lua
