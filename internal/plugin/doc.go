// Package plugin defines how calculator operations are contributed at
// runtime and resolves plugin names to loadable units.
//
// A plugin is a named unit with a single registration function that
// returns the operations it contributes. Two kinds exist:
//
//   - Compiled-in units, registered in a Catalog by the entry point.
//   - Lua scripts found in the plugins directory, either <name>.lua or
//     <name>/init.lua, run in the sandbox provided by package lua.
//
// Loading is idempotent: loading a name again re-resolves it and returns a
// fresh set of operations. Plugins are never unloaded within a session.
package plugin
