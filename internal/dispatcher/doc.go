// Package dispatcher routes input lines to command handlers and records
// computed values in history.
//
// The dispatcher is the core of the calculator's read-eval-print loop. It
// owns the command table (Registry) and the history store, and it merges
// operations contributed by plugins into the table at runtime.
//
// # Dispatch
//
// Each call to Execute runs one line to completion:
//
//  1. Blank lines return a no-op result
//  2. The line is split on whitespace; the first token, lower-cased, is the
//     command name and the rest are raw arguments
//  3. Pre-dispatch hooks are called (can modify or cancel the command)
//  4. The handler is looked up; a missing name yields ErrUnknownCommand
//  5. The handler is executed (with optional panic recovery)
//  6. A calculation in the result is recorded in history
//  7. Post-dispatch hooks are called
//  8. Metrics are recorded (if enabled)
//
// Errors never escape Execute. They are returned in the result and the
// dispatcher returns to StateIdle. Only quit moves it to StateTerminated.
//
// # Operations
//
// Arithmetic built-ins and every plugin operation go through
// OperationHandler, which checks the operand count, parses each token and
// reports the value as a handler.Calculation.
//
// # Command table
//
// Names are case-insensitive and unique. Registering a taken name replaces
// the earlier binding, so a plugin may override a built-in:
//
//	d := dispatcher.New(dispatcher.DefaultConfig(), store,
//	    dispatcher.WithLoader(loader))
//	d.Execute("load_plugin square_root")
//	r := d.Execute("square_root 16") // r.Calculation.Value == 4
package dispatcher
